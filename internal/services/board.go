package services

import (
	"context"
	"errors"

	"github.com/wolfiez/wallpaper/internal/image"
	"github.com/wolfiez/wallpaper/internal/store"
	"github.com/wolfiez/wallpaper/types"
)

// BoardRepository defines persistence operations for boards.
type BoardRepository interface {
	GetByID(ctx context.Context, id int) (types.Board, error)
	Create(ctx context.Context, board types.Board) (types.Board, error)
	Update(ctx context.Context, board types.Board) (types.Board, error)
	Delete(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID int) ([]types.Board, error)
	ListPublic(ctx context.Context) ([]types.Board, error)
	SearchByUser(ctx context.Context, userID int, keyword string) ([]types.Board, error)
	SetImage(ctx context.Context, id int, encoded string) error
}

// BoardInput carries the client-editable fields of a board. A nil Private
// means "not supplied": boards default to private on creation, and an
// update leaves the current flag alone.
type BoardInput struct {
	Name        string
	Description string
	Private     *bool
}

// BoardService encapsulates board use-cases. Mutations take the acting
// user's id and enforce that only the owner may change a board.
type BoardService struct {
	boards BoardRepository
	users  UserRepository
}

func NewBoardService(boards BoardRepository, users UserRepository) *BoardService {
	return &BoardService{boards: boards, users: users}
}

// Create makes a new board owned by userID. The board starts without an
// image; the creation timestamp is set by the store layer.
func (s *BoardService) Create(ctx context.Context, userID int, in BoardInput) (types.Board, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Board{}, ErrUnknownUser
		}
		return types.Board{}, err
	}

	private := true
	if in.Private != nil {
		private = *in.Private
	}

	return s.boards.Create(ctx, types.Board{
		Name:        in.Name,
		Description: in.Description,
		Private:     private,
		UserID:      userID,
	})
}

func (s *BoardService) Get(ctx context.Context, id int) (types.Board, error) {
	return s.boards.GetByID(ctx, id)
}

// Update replaces name, description, and the private flag. Only the
// board's owner may update it; owner and image are never touched.
func (s *BoardService) Update(ctx context.Context, boardID, actorID int, in BoardInput) (types.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return types.Board{}, err
	}

	if board.UserID != actorID {
		return types.Board{}, ErrNotOwner
	}

	board.Name = in.Name
	board.Description = in.Description
	if in.Private != nil {
		board.Private = *in.Private
	}

	return s.boards.Update(ctx, board)
}

// Delete removes the board and its image payload with it.
func (s *BoardService) Delete(ctx context.Context, boardID, actorID int) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board.UserID != actorID {
		return ErrNotOwner
	}
	return s.boards.Delete(ctx, boardID)
}

func (s *BoardService) ListForUser(ctx context.Context, userID int) ([]types.Board, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.boards.ListByUser(ctx, userID)
}

func (s *BoardService) ListPublic(ctx context.Context) ([]types.Board, error) {
	return s.boards.ListPublic(ctx)
}

func (s *BoardService) SearchForUser(ctx context.Context, userID int, keyword string) ([]types.Board, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.boards.SearchByUser(ctx, userID, keyword)
}

// SetImage validates, encodes, and stores the upload as the board image.
func (s *BoardService) SetImage(ctx context.Context, boardID, actorID int, upload image.Upload) (types.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return types.Board{}, err
	}
	if board.UserID != actorID {
		return types.Board{}, ErrNotOwner
	}

	encoded, err := image.ProcessForStorage(upload)
	if err != nil {
		return types.Board{}, err
	}

	if err := s.boards.SetImage(ctx, boardID, encoded); err != nil {
		return types.Board{}, err
	}
	board.Image = encoded
	board.HasImage = true
	return board, nil
}

// Image returns the decoded image bytes, or nil when the board has no
// image. A missing image is not an error.
func (s *BoardService) Image(ctx context.Context, boardID int) ([]byte, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return image.Decode(board.Image)
}

func (s *BoardService) RemoveImage(ctx context.Context, boardID, actorID int) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if board.UserID != actorID {
		return ErrNotOwner
	}
	return s.boards.SetImage(ctx, boardID, "")
}
