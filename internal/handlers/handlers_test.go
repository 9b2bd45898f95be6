package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wolfiez/wallpaper/internal/services"
	"github.com/wolfiez/wallpaper/internal/store"
	"github.com/wolfiez/wallpaper/types"
)

const testJWTSecret = "test-secret"

// In-memory repositories backing the services under test.

type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User, roleName string) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	if roleName != "" {
		user.Roles = []string{roleName}
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.HasProfileImage = user.ProfileImage != ""
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) Search(_ context.Context, keyword string) ([]types.User, error) {
	matches := []types.User{}
	for _, user := range r.users {
		if strings.Contains(user.Name, keyword) || strings.Contains(user.Email, keyword) {
			matches = append(matches, user)
		}
	}
	return matches, nil
}

func (r *memUserRepo) ListByRole(_ context.Context, roleName string) ([]types.User, error) {
	matches := []types.User{}
	for _, user := range r.users {
		for _, role := range user.Roles {
			if role == roleName {
				matches = append(matches, user)
			}
		}
	}
	return matches, nil
}

type memBoardRepo struct {
	boards map[int]types.Board
	nextID int
}

func (r *memBoardRepo) GetByID(_ context.Context, id int) (types.Board, error) {
	board, ok := r.boards[id]
	if !ok {
		return types.Board{}, store.ErrNotFound
	}
	return board, nil
}

func (r *memBoardRepo) Create(_ context.Context, board types.Board) (types.Board, error) {
	board.ID = r.nextID
	r.nextID++
	board.CreatedAt = time.Now()
	r.boards[board.ID] = board
	return board, nil
}

func (r *memBoardRepo) Update(_ context.Context, board types.Board) (types.Board, error) {
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

func (r *memBoardRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.boards[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.boards, id)
	return nil
}

func (r *memBoardRepo) ListByUser(_ context.Context, userID int) ([]types.Board, error) {
	matches := []types.Board{}
	for _, board := range r.boards {
		if board.UserID == userID {
			matches = append(matches, board)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (r *memBoardRepo) ListPublic(_ context.Context) ([]types.Board, error) {
	matches := []types.Board{}
	for _, board := range r.boards {
		if !board.Private {
			matches = append(matches, board)
		}
	}
	return matches, nil
}

func (r *memBoardRepo) SearchByUser(_ context.Context, userID int, keyword string) ([]types.Board, error) {
	matches := []types.Board{}
	for _, board := range r.boards {
		if board.UserID == userID && strings.Contains(board.Name, keyword) {
			matches = append(matches, board)
		}
	}
	return matches, nil
}

func (r *memBoardRepo) SetImage(_ context.Context, id int, encoded string) error {
	board, ok := r.boards[id]
	if !ok {
		return store.ErrNotFound
	}
	board.Image = encoded
	board.HasImage = encoded != ""
	r.boards[id] = board
	return nil
}

type memSessionRepo struct {
	sessions map[string]types.Session
}

func (r *memSessionRepo) Replace(_ context.Context, session types.Session) error {
	for token, existing := range r.sessions {
		if existing.UserID == session.UserID {
			delete(r.sessions, token)
		}
	}
	r.sessions[session.Token] = session
	return nil
}

func (r *memSessionRepo) GetValid(_ context.Context, token string) (types.Session, error) {
	session, ok := r.sessions[token]
	if !ok || session.Expired(time.Now()) {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (r *memSessionRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.sessions[token]; !ok {
		return store.ErrNotFound
	}
	delete(r.sessions, token)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// newTestRouter wires the full route tree over in-memory repositories,
// mirroring the server assembly.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	userRepo := &memUserRepo{users: map[int]types.User{}, nextID: 1}
	boardRepo := &memBoardRepo{boards: map[int]types.Board{}, nextID: 1}
	userService := services.NewUserService(userRepo)
	boardService := services.NewBoardService(boardRepo, userRepo)
	authService := services.NewAuthService(userService, &memSessionRepo{sessions: map[string]types.Session{}}, time.Hour)

	authMiddleware := RequireAuth(authService, testJWTSecret)
	pages := NewPageHandler(authService, userService, boardService, false)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	router.Get("/login", pages.LoginPage)
	router.Post("/login", pages.LoginSubmit)
	router.Post("/register", pages.RegisterSubmit)
	router.Post("/logout", pages.Logout)
	router.With(authMiddleware).Get("/dashboard", pages.Dashboard)
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, authService, userService, testJWTSecret, authMiddleware)
	})
	router.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		UserRouter(r, userService)
	})
	router.Route("/api/boards", func(r chi.Router) {
		BoardRouter(r, boardService, authMiddleware)
	})
	return router
}

func registerAndToken(t *testing.T, router *chi.Mux, name, email string) (types.User, string) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name, "email": email, "password": "pw12345"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad register response: %v", err)
	}
	return resp.User, resp.Token
}
