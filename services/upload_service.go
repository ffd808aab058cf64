package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/media"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/user"
)

const mediaFolder = "lifting-lads"

type UploadRequest struct {
	Kind        media.Kind
	File        io.Reader
	Filename    string
	ContentType string
	UserInfo    *user.UserInfo
	Description string
	PostType    string
	Tags        []string
}

// UploadService stages an uploaded file on disk, hands it to the media store
// and records the resulting post.
type UploadService struct {
	media   media.Store
	posts   *PostService
	tempDir string
}

// NewUploadService stages files in tempDir, or the OS default when empty.
func NewUploadService(store media.Store, posts *PostService, tempDir string) *UploadService {
	return &UploadService{media: store, posts: posts, tempDir: tempDir}
}

// UploadMedia returns the hosted media URL. The staged file is removed on
// every path.
func (s *UploadService) UploadMedia(ctx context.Context, req UploadRequest) (string, error) {
	if req.File == nil {
		return "", apperr.Validation("No %s file uploaded", req.Kind)
	}
	if req.UserInfo == nil || req.UserInfo.Nickname == "" {
		return "", apperr.Validation("userInfo with nickname is required")
	}
	postType, ok := post.ParseType(req.PostType)
	if !ok {
		return "", apperr.Validation("invalid postType %q", req.PostType)
	}

	owner, err := resolveUser(ctx, s.posts.users, req.UserInfo.Nickname)
	if err != nil {
		return "", err
	}

	localPath, err := s.stage(req.File, req.Filename)
	if localPath != "" {
		defer func() {
			if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Printf("Upload Service: failed to remove temp file %s: %v", localPath, rmErr)
			}
		}()
	}
	if err != nil {
		mediaUploads.WithLabelValues(string(req.Kind), "error").Inc()
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}

	url, err := s.media.Upload(ctx, localPath, media.UploadOptions{
		Kind:        req.Kind,
		Folder:      mediaFolder + "/" + owner.Nickname,
		ContentType: req.ContentType,
	})
	if err != nil {
		mediaUploads.WithLabelValues(string(req.Kind), "error").Inc()
		return "", apperr.Upstream("failed to upload media", err)
	}
	mediaUploads.WithLabelValues(string(req.Kind), "ok").Inc()

	mediaKind := post.MediaImage
	if req.Kind == media.KindVideo {
		mediaKind = post.MediaVideo
	}

	_, err = s.posts.insert(ctx, owner, postType, post.NewPost{
		MediaURL:    url,
		MediaKind:   mediaKind,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

// stage copies r into a temp file. The returned path is set whenever a file
// was created, even on error, so the caller can remove it.
func (s *UploadService) stage(r io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, err := os.CreateTemp(s.tempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return f.Name(), err
	}
	if err := f.Close(); err != nil {
		return f.Name(), err
	}
	return f.Name(), nil
}
