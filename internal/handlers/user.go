package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfiez/wallpaper/internal/services"
	"github.com/wolfiez/wallpaper/internal/store"
)

const adminRole = "ADMIN"

// UserHandler provides HTTP handlers for user management under /api/users.
// The whole subtree requires authentication; mutations additionally require
// the actor to be the target user or an admin.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user routes on the given router. The caller is
// expected to have applied the auth middleware already.
func UserRouter(r chi.Router, users *services.UserService) {
	handler := NewUserHandler(users)

	r.Get("/search", handler.SearchUsers)
	r.Get("/role/{roleName}", handler.ListUsersByRole)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.GetUser)
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
		r.Post("/profile-image", handler.UploadProfileImage)
		r.Get("/profile-image", handler.GetProfileImage)
		r.Delete("/profile-image", handler.DeleteProfileImage)
	})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.canManage(w, r, id) {
		return
	}

	update, fieldErrors, err := parseProfileForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		writeValidationError(w, fieldErrors)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.canManage(w, r, id) {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	users, err := h.users.Search(r.Context(), keyword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) ListUsersByRole(w http.ResponseWriter, r *http.Request) {
	roleName := chi.URLParam(r, "roleName")

	users, err := h.users.ListByRole(r.Context(), roleName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.canManage(w, r, id) {
		return
	}

	upload, err := requiredImageUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.SetProfileImage(r.Context(), id, upload)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imageBytes, err := h.users.ProfileImage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "user not found")
		return
	}
	if imageBytes == nil {
		writeError(w, http.StatusNotFound, "user has no profile image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(imageBytes)
}

func (h *UserHandler) DeleteProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.canManage(w, r, id) {
		return
	}

	if err := h.users.RemoveProfileImage(r.Context(), id); err != nil {
		writeServiceError(w, err, "user not found")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// canManage enforces that the acting user is the target user or an admin.
// Writes the error response and returns false when not allowed.
func (h *UserHandler) canManage(w http.ResponseWriter, r *http.Request, targetID int) bool {
	actorID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if actorID == targetID {
		return true
	}

	actor, err := h.users.GetByID(r.Context(), actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return false
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return false
	}
	for _, role := range actor.Roles {
		if role == adminRole {
			return true
		}
	}

	writeError(w, http.StatusBadRequest, "user does not have permission to modify this profile")
	return false
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

// parseProfileForm reads the profile update fields from a multipart (or
// urlencoded) form: name, email, newPassword, and an optional profileImage
// file.
func parseProfileForm(r *http.Request) (services.ProfileUpdate, []string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return services.ProfileUpdate{}, nil, errors.New("invalid multipart form")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return services.ProfileUpdate{}, nil, errors.New("invalid form")
		}
	}

	update := services.ProfileUpdate{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		NewPassword: r.FormValue("newPassword"),
	}

	fieldErrors := []string{}
	if update.Name == "" {
		fieldErrors = append(fieldErrors, "name is required")
	}
	if update.Email == "" {
		fieldErrors = append(fieldErrors, "email is required")
	}
	if len(fieldErrors) > 0 {
		return services.ProfileUpdate{}, fieldErrors, nil
	}

	upload, err := imageUploadFromForm(r.MultipartForm, "profileImage", false)
	if err != nil {
		return services.ProfileUpdate{}, nil, err
	}
	update.Image = upload

	return update, nil, nil
}
