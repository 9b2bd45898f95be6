package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/wolfiez/wallpaper/internal/image"
	"github.com/wolfiez/wallpaper/internal/store"
	"github.com/wolfiez/wallpaper/types"
)

type fakeBoardRepo struct {
	boards map[int]types.Board
	nextID int
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{boards: map[int]types.Board{}, nextID: 1}
}

func (r *fakeBoardRepo) GetByID(_ context.Context, id int) (types.Board, error) {
	board, ok := r.boards[id]
	if !ok {
		return types.Board{}, store.ErrNotFound
	}
	return board, nil
}

func (r *fakeBoardRepo) Create(_ context.Context, board types.Board) (types.Board, error) {
	board.ID = r.nextID
	r.nextID++
	board.CreatedAt = time.Now()
	r.boards[board.ID] = board
	return board, nil
}

func (r *fakeBoardRepo) Update(_ context.Context, board types.Board) (types.Board, error) {
	existing, ok := r.boards[board.ID]
	if !ok {
		return types.Board{}, store.ErrNotFound
	}
	existing.Name = board.Name
	existing.Description = board.Description
	existing.Private = board.Private
	r.boards[board.ID] = existing
	return existing, nil
}

func (r *fakeBoardRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.boards[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.boards, id)
	return nil
}

func (r *fakeBoardRepo) ListByUser(_ context.Context, userID int) ([]types.Board, error) {
	matches := []types.Board{}
	for _, board := range r.boards {
		if board.UserID == userID {
			matches = append(matches, board)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeBoardRepo) ListPublic(_ context.Context) ([]types.Board, error) {
	matches := []types.Board{}
	for _, board := range r.boards {
		if !board.Private {
			matches = append(matches, board)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeBoardRepo) SearchByUser(_ context.Context, userID int, keyword string) ([]types.Board, error) {
	keyword = strings.ToLower(keyword)
	matches := []types.Board{}
	for _, board := range r.boards {
		if board.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(board.Name), keyword) ||
			strings.Contains(strings.ToLower(board.Description), keyword) {
			matches = append(matches, board)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *fakeBoardRepo) SetImage(_ context.Context, id int, encoded string) error {
	board, ok := r.boards[id]
	if !ok {
		return store.ErrNotFound
	}
	board.Image = encoded
	board.HasImage = encoded != ""
	r.boards[id] = board
	return nil
}

func boolPtr(b bool) *bool { return &b }

func newBoardFixture(t *testing.T) (*BoardService, *UserService, types.User) {
	t.Helper()
	userRepo := newFakeUserRepo()
	users := NewUserService(userRepo)
	boards := NewBoardService(newFakeBoardRepo(), userRepo)

	owner, err := users.Register(context.Background(), "Luis", "luis@example.com", "pw")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return boards, users, owner
}

func TestCreateBoardUnknownUser(t *testing.T) {
	boards := NewBoardService(newFakeBoardRepo(), newFakeUserRepo())

	_, err := boards.Create(context.Background(), 99, BoardInput{Name: "walls"})
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestCreateBoardDefaultsToPrivateWithoutImage(t *testing.T) {
	boards, _, owner := newBoardFixture(t)

	board, err := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls", Description: "desk"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !board.Private {
		t.Fatal("new board should default to private")
	}
	if board.HasImage || board.Image != "" {
		t.Fatal("new board should have no image")
	}
	if board.UserID != owner.ID {
		t.Fatalf("board owner mismatch: %d != %d", board.UserID, owner.ID)
	}
	if board.CreatedAt.IsZero() {
		t.Fatal("creation timestamp not set")
	}
}

func TestCreateBoardExplicitlyPublic(t *testing.T) {
	boards, _, owner := newBoardFixture(t)

	board, err := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls", Private: boolPtr(false)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if board.Private {
		t.Fatal("explicitly public board stored as private")
	}
}

func TestUpdateBoardByNonOwnerLeavesBoardUnchanged(t *testing.T) {
	boards, users, owner := newBoardFixture(t)
	intruder, err := users.Register(context.Background(), "Ana", "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	board, err := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls", Description: "desk"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = boards.Update(context.Background(), board.ID, intruder.ID, BoardInput{Name: "stolen", Description: "gone"})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	stored, err := boards.Get(context.Background(), board.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Name != "walls" || stored.Description != "desk" {
		t.Fatalf("board mutated by non-owner: %+v", stored)
	}
}

func TestUpdateBoardReplacesEditableFieldsOnly(t *testing.T) {
	boards, _, owner := newBoardFixture(t)

	board, _ := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls"})
	if _, err := boards.SetImage(context.Background(), board.ID, owner.ID, pngUpload([]byte{1})); err != nil {
		t.Fatalf("set image failed: %v", err)
	}

	updated, err := boards.Update(context.Background(), board.ID, owner.ID, BoardInput{
		Name:        "desk setups",
		Description: "minimal",
		Private:     boolPtr(false),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "desk setups" || updated.Description != "minimal" || updated.Private {
		t.Fatalf("fields not replaced: %+v", updated)
	}
	if updated.UserID != owner.ID {
		t.Fatal("owner changed on update")
	}

	data, err := boards.Image(context.Background(), board.ID)
	if err != nil || data == nil {
		t.Fatalf("image lost on update: %v, %v", data, err)
	}
}

func TestUpdateBoardKeepsPrivateFlagWhenNotSupplied(t *testing.T) {
	boards, _, owner := newBoardFixture(t)

	board, _ := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls", Private: boolPtr(false)})

	updated, err := boards.Update(context.Background(), board.ID, owner.ID, BoardInput{Name: "renamed"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Private {
		t.Fatal("private flag flipped by update that did not supply it")
	}
}

func TestUpdateBoardNotFound(t *testing.T) {
	boards, _, owner := newBoardFixture(t)

	_, err := boards.Update(context.Background(), 404, owner.ID, BoardInput{Name: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBoardOwnershipAndNotFound(t *testing.T) {
	boards, users, owner := newBoardFixture(t)
	intruder, _ := users.Register(context.Background(), "Ana", "ana@example.com", "pw")

	board, _ := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls"})

	if err := boards.Delete(context.Background(), board.ID, intruder.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := boards.Delete(context.Background(), board.ID, owner.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := boards.Delete(context.Background(), board.ID, owner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBoardImageLifecycle(t *testing.T) {
	boards, _, owner := newBoardFixture(t)
	board, _ := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls"})

	// No image yet: absent, not an error.
	data, err := boards.Image(context.Background(), board.ID)
	if err != nil || data != nil {
		t.Fatalf("absent image: got %v, %v", data, err)
	}

	payload := []byte{0xff, 0xd8, 0xff}
	if _, err := boards.SetImage(context.Background(), board.ID, owner.ID, pngUpload(payload)); err != nil {
		t.Fatalf("set image failed: %v", err)
	}

	data, err = boards.Image(context.Background(), board.ID)
	if err != nil {
		t.Fatalf("get image failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("image bytes do not round-trip")
	}

	if err := boards.RemoveImage(context.Background(), board.ID, owner.ID); err != nil {
		t.Fatalf("remove image failed: %v", err)
	}
	data, err = boards.Image(context.Background(), board.ID)
	if err != nil || data != nil {
		t.Fatalf("image survived removal: %v, %v", data, err)
	}
}

func TestSetImageRejectsNonOwnerAndBadUpload(t *testing.T) {
	boards, users, owner := newBoardFixture(t)
	intruder, _ := users.Register(context.Background(), "Ana", "ana@example.com", "pw")
	board, _ := boards.Create(context.Background(), owner.ID, BoardInput{Name: "walls"})

	if _, err := boards.SetImage(context.Background(), board.ID, intruder.ID, pngUpload([]byte{1})); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	bad := image.Upload{Filename: "x.txt", ContentType: "text/plain", Data: []byte("x")}
	if _, err := boards.SetImage(context.Background(), board.ID, owner.ID, bad); !errors.Is(err, image.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestListAndSearch(t *testing.T) {
	boards, users, owner := newBoardFixture(t)
	other, _ := users.Register(context.Background(), "Ana", "ana@example.com", "pw")

	boards.Create(context.Background(), owner.ID, BoardInput{Name: "mountain walls", Private: boolPtr(false)})
	boards.Create(context.Background(), owner.ID, BoardInput{Name: "city walls"})
	boards.Create(context.Background(), other.ID, BoardInput{Name: "mountain views", Private: boolPtr(false)})

	mine, err := boards.ListForUser(context.Background(), owner.ID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected 2 boards for owner, got %d (%v)", len(mine), err)
	}

	public, err := boards.ListPublic(context.Background())
	if err != nil || len(public) != 2 {
		t.Fatalf("expected 2 public boards, got %d (%v)", len(public), err)
	}

	found, err := boards.SearchForUser(context.Background(), owner.ID, "mountain")
	if err != nil || len(found) != 1 {
		t.Fatalf("expected 1 match for owner, got %d (%v)", len(found), err)
	}

	if _, err := boards.ListForUser(context.Background(), 999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
	if _, err := boards.SearchForUser(context.Background(), 999, "x"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}
