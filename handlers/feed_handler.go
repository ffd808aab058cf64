package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"liftingLadsAPI/services"
)

type FeedHandler struct {
	feedService *services.FeedService
}

func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) GetFriendsPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	nickname := mux.Vars(r)["nickname"]

	feed, err := h.feedService.GetFriendsFeed(ctx, nickname)
	if err != nil {
		respondWithAppError(w, "GetFriendsPosts", err)
		return
	}

	respondWithJSON(w, http.StatusOK, feed)
}
