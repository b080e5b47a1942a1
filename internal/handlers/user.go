package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uppath-hq/apiserver/internal/services"
	"github.com/uppath-hq/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRequest is the JSON body for creating or updating a user. The
// plaintext password is digested before it reaches the service layer; it
// is never stored or logged. On update, an omitted password keeps the
// current one.
type UserRequest struct {
	CompanyID   *int   `json:"company_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CareerLevel string `json:"career_level"`
	Occupation  string `json:"occupation"`
	Gender      string `json:"gender"`
	BirthDate   string `json:"birth_date"`
	IsAdmin     bool   `json:"is_admin"`
}

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. Mutating routes
// require an authenticated administrator.
func UserRouter(
	r chi.Router,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewUserHandler(userService)
	adminOnly := RequireAdmin(userService)

	r.With(authMiddleware, adminOnly).Get("/", handler.ListUsers)
	r.With(authMiddleware, adminOnly).Post("/", handler.CreateUser)
	r.Route("/{userID}", func(r chi.Router) {
		r.With(authMiddleware).Get("/", handler.GetUser)
		r.With(authMiddleware, adminOnly).Put("/", handler.UpdateUser)
		r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteUser)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, err, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	if err := h.userService.Update(r.Context(), id, in); err != nil {
		writeStoreError(w, err, "failed to update user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req UserRequest) toInput() (types.UserInput, error) {
	in := types.UserInput{
		CompanyID:   req.CompanyID,
		FullName:    req.FullName,
		Email:       req.Email,
		CareerLevel: req.CareerLevel,
		Occupation:  req.Occupation,
		Gender:      req.Gender,
		BirthDate:   req.BirthDate,
		IsAdmin:     req.IsAdmin,
	}
	if req.Password != "" {
		digest, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return types.UserInput{}, err
		}
		in.PasswordDigest = string(digest)
	}
	return in, nil
}
