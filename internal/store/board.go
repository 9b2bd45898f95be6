package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wolfiez/wallpaper/types"
)

// BoardRepository handles persistence for boards.
type BoardRepository struct {
	db *sql.DB
}

func NewBoardRepository(db *sql.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

const boardColumns = `id, name, description, private, image, user_id, created_at`

func (r *BoardRepository) GetByID(ctx context.Context, id int) (types.Board, error) {
	const query = `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE id = $1`
	return r.scanBoard(r.db.QueryRowContext(ctx, query, id))
}

func (r *BoardRepository) Create(ctx context.Context, board types.Board) (types.Board, error) {
	board.CreatedAt = time.Now()

	const query = `
		INSERT INTO boards (name, description, private, image, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		board.Name,
		board.Description,
		board.Private,
		board.Image,
		board.UserID,
		board.CreatedAt,
	).Scan(&board.ID); err != nil {
		return types.Board{}, err
	}
	return board, nil
}

// Update replaces the mutable fields of a board. The owner, image, and
// creation timestamp are not touched.
func (r *BoardRepository) Update(ctx context.Context, board types.Board) (types.Board, error) {
	const query = `
		UPDATE boards
		SET name = $1,
			description = $2,
			private = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, board.Name, board.Description, board.Private, board.ID)
	if err != nil {
		return types.Board{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Board{}, err
	}
	if affected == 0 {
		return types.Board{}, ErrNotFound
	}
	return r.GetByID(ctx, board.ID)
}

func (r *BoardRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM boards WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BoardRepository) ListByUser(ctx context.Context, userID int) ([]types.Board, error) {
	const query = `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryBoards(ctx, query, userID)
}

func (r *BoardRepository) ListPublic(ctx context.Context) ([]types.Board, error) {
	const query = `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE private = FALSE
		ORDER BY created_at DESC, id DESC`
	return r.queryBoards(ctx, query)
}

func (r *BoardRepository) SearchByUser(ctx context.Context, userID int, keyword string) ([]types.Board, error) {
	const query = `
		SELECT ` + boardColumns + `
		FROM boards
		WHERE user_id = $1
		  AND (name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC`
	return r.queryBoards(ctx, query, userID, keyword)
}

// SetImage stores the Base64 image payload for the board. An empty string
// clears the image.
func (r *BoardRepository) SetImage(ctx context.Context, id int, encoded string) error {
	const query = `UPDATE boards SET image = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, encoded, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BoardRepository) queryBoards(ctx context.Context, query string, args ...any) ([]types.Board, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []types.Board{}
	for rows.Next() {
		board, err := r.scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, board)
	}
	return boards, rows.Err()
}

func (r *BoardRepository) scanBoard(row rowScanner) (types.Board, error) {
	var board types.Board
	err := row.Scan(
		&board.ID,
		&board.Name,
		&board.Description,
		&board.Private,
		&board.Image,
		&board.UserID,
		&board.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Board{}, ErrNotFound
		}
		return types.Board{}, err
	}
	board.HasImage = board.Image != ""
	return board, nil
}
