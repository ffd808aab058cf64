package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/user"
	"liftingLadsAPI/middleware"
	"liftingLadsAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SaveUser creates the user on first sign-in and returns the stored record.
func (h *UserHandler) SaveUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.SaveUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A verified token supplies the subject when the payload omits it.
	if clerkID, ok := middleware.GetClerkID(ctx); ok && req.UserInfo != nil && req.UserInfo.Sub == "" {
		req.UserInfo.Sub = clerkID
	}

	u, created, err := h.userService.UpsertUser(ctx, req.UserInfo)
	if err != nil {
		respondWithAppError(w, "SaveUser", err)
		return
	}

	if created {
		log.Printf("SaveUser Handler: new user %s", u.Nickname)
		respondWithJSON(w, http.StatusCreated, u)
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	query := r.URL.Query().Get("query")

	users, err := h.userService.SearchUsers(ctx, query)
	if err != nil {
		respondWithAppError(w, "SearchUsers", err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := mux.Vars(r)["userId"]

	profile, err := h.userService.GetUserWithPosts(ctx, userID)
	if err != nil {
		respondWithAppError(w, "GetUser", err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) GetProfileQR(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := mux.Vars(r)["userId"]

	qr, err := h.userService.ProfileQR(ctx, userID)
	if err != nil {
		respondWithAppError(w, "GetProfileQR", err)
		return
	}

	respondWithJSON(w, http.StatusOK, qr)
}

func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.RegisterDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.RegisterDevice(ctx, &req); err != nil {
		respondWithAppError(w, "RegisterDevice", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
