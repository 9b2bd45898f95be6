package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfiez/wallpaper/internal/services"
)

// BoardHandler provides HTTP handlers for boards under /api/boards.
type BoardHandler struct {
	boards *services.BoardService
}

func NewBoardHandler(boards *services.BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

// BoardRouter registers board routes on the given router. The public board
// listing stays open; everything else requires authentication.
func BoardRouter(r chi.Router, boards *services.BoardService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewBoardHandler(boards)

	r.Get("/public-boards", handler.ListPublicBoards)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", handler.CreateBoard)
		r.Get("/search", handler.SearchBoards)
		r.Get("/user/{userID}", handler.ListUserBoards)
		r.Route("/{boardID}", func(r chi.Router) {
			r.Get("/", handler.GetBoard)
			r.Get("/details", handler.GetBoardDetails)
			r.Put("/", handler.UpdateBoard)
			r.Delete("/", handler.DeleteBoard)
			r.Post("/image", handler.UploadBoardImage)
			r.Get("/image", handler.GetBoardImage)
			r.Delete("/image", handler.DeleteBoardImage)
		})
	})
}

// BoardUpsertRequest is the JSON payload for creating or updating a board.
type BoardUpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     *bool  `json:"private"`
}

func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, fieldErrors, err := parseBoardBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		writeValidationError(w, fieldErrors)
		return
	}

	board, err := h.boards.Create(r.Context(), actorID, services.BoardInput{
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
	})
	if err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	writeJSON(w, http.StatusCreated, board)
}

func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	board, err := h.boards.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// GetBoardDetails mirrors GetBoard; kept as a separate route for API
// compatibility with older clients.
func (h *BoardHandler) GetBoardDetails(w http.ResponseWriter, r *http.Request) {
	h.GetBoard(w, r)
}

func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, fieldErrors, err := parseBoardBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		writeValidationError(w, fieldErrors)
		return
	}

	board, err := h.boards.Update(r.Context(), id, actorID, services.BoardInput{
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
	})
	if err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.boards.Delete(r.Context(), id, actorID); err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) ListUserBoards(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	boards, err := h.boards.ListForUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) ListPublicBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.ListPublic(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list boards")
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

// SearchBoards searches the authenticated user's boards. The identity comes
// from the session, never from a client-supplied header.
func (h *BoardHandler) SearchBoards(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	boards, err := h.boards.SearchForUser(r.Context(), actorID, keyword)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

func (h *BoardHandler) UploadBoardImage(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	upload, err := requiredImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	board, err := h.boards.SetImage(r.Context(), id, actorID, upload)
	if err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	writeJSON(w, http.StatusOK, board)
}

func (h *BoardHandler) GetBoardImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imageBytes, err := h.boards.Image(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "board not found")
		return
	}
	if imageBytes == nil {
		writeError(w, http.StatusNotFound, "board has no image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(imageBytes)
}

func (h *BoardHandler) DeleteBoardImage(w http.ResponseWriter, r *http.Request) {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBoardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.boards.RemoveImage(r.Context(), id, actorID); err != nil {
		writeServiceError(w, err, "board not found")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func parseBoardID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "boardID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid board id")
	}
	return id, nil
}

func parseBoardBody(r *http.Request) (BoardUpsertRequest, []string, error) {
	var req BoardUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BoardUpsertRequest{}, nil, errors.New("invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return BoardUpsertRequest{}, []string{"name is required"}, nil
	}
	return req, nil, nil
}
