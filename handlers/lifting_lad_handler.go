package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/services"
)

type LiftingLadHandler struct {
	liftingLadService *services.LiftingLadService
}

func NewLiftingLadHandler(liftingLadService *services.LiftingLadService) *LiftingLadHandler {
	return &LiftingLadHandler{
		liftingLadService: liftingLadService,
	}
}

func (h *LiftingLadHandler) AddLiftingLad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req liftinglad.SendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	request, err := h.liftingLadService.SendRequest(ctx, &req)
	if err != nil {
		respondWithAppError(w, "AddLiftingLad", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Lifting Lad request sent",
		"request": request,
	})
}

func (h *LiftingLadHandler) AcceptLiftingLad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req liftinglad.AcceptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.liftingLadService.AcceptRequest(ctx, &req); err != nil {
		respondWithAppError(w, "AcceptLiftingLad", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Lifting Lad request accepted"})
}

func (h *LiftingLadHandler) IgnoreLiftingLad(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req liftinglad.IgnoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.liftingLadService.IgnoreRequest(ctx, &req); err != nil {
		respondWithAppError(w, "IgnoreLiftingLad", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Lifting Lad request ignored"})
}

func (h *LiftingLadHandler) GetLiftingLadRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	nickname := mux.Vars(r)["nickname"]

	requests, err := h.liftingLadService.ListRequests(ctx, nickname)
	if err != nil {
		respondWithAppError(w, "GetLiftingLadRequests", err)
		return
	}
	if len(requests) == 0 {
		respondWithError(w, http.StatusNotFound, "No Lifting Lad requests found")
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

func (h *LiftingLadHandler) GetLiftingLads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	nickname := mux.Vars(r)["nickname"]

	lads, err := h.liftingLadService.ListLads(ctx, nickname)
	if err != nil {
		respondWithAppError(w, "GetLiftingLads", err)
		return
	}
	if len(lads) == 0 {
		respondWithError(w, http.StatusNotFound, "No Lifting Lads found")
		return
	}

	respondWithJSON(w, http.StatusOK, lads)
}
