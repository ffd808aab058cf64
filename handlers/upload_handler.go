package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/media"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/user"
	"liftingLadsAPI/services"
)

const multipartMemory = 32 << 20

type UploadHandler struct {
	uploadService  *services.UploadService
	postService    *services.PostService
	maxUploadBytes int64
	uploadTimeout  time.Duration
}

func NewUploadHandler(uploadService *services.UploadService, postService *services.PostService, maxUploadBytes int64, uploadTimeout time.Duration) *UploadHandler {
	return &UploadHandler{
		uploadService:  uploadService,
		postService:    postService,
		maxUploadBytes: maxUploadBytes,
		uploadTimeout:  uploadTimeout,
	}
}

func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	url, ok := h.upload(w, r, media.KindImage, "image")
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusCreated, post.UploadImageResponse{ImageURL: url})
}

func (h *UploadHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	url, ok := h.upload(w, r, media.KindVideo, "video")
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusCreated, post.UploadVideoResponse{VideoURL: url})
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request, kind media.Kind, field string) (string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout)
	defer cancel()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusBadRequest, "File too large")
			return "", false
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No "+field+" file uploaded")
		return "", false
	}
	defer file.Close()

	info, err := user.ParseUserInfo(r.FormValue("userInfo"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid userInfo")
		return "", false
	}
	if info == nil && r.FormValue("nickname") != "" {
		info = &user.UserInfo{Nickname: strings.TrimSpace(r.FormValue("nickname"))}
	}

	log.Printf("Upload Handler: %s upload %s (%d bytes)", kind, header.Filename, header.Size)

	url, err := h.uploadService.UploadMedia(ctx, services.UploadRequest{
		Kind:        kind,
		File:        file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		UserInfo:    info,
		Description: r.FormValue("description"),
		PostType:    r.FormValue("postType"),
		Tags:        parseTags(r.FormValue("tags")),
	})
	if err != nil {
		respondWithAppError(w, "Upload", err)
		return "", false
	}
	return url, true
}

func (h *UploadHandler) AddPost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req post.AddPostRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.postService.LogLift(ctx, &req)
	if err != nil {
		respondWithAppError(w, "AddPost", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

// parseTags accepts a JSON array or a comma separated list.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	return strings.Split(raw, ",")
}
