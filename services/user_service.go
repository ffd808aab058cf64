package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,32}$`)

// ValidateNickname checks the nickname format. Nicknames are user facing
// handles and key every per-user lookup.
func ValidateNickname(nickname string) error {
	if nickname == "" {
		return apperr.Validation("nickname is required")
	}
	if !nicknamePattern.MatchString(nickname) {
		return apperr.Validation("invalid nickname %q: use 2-32 letters, digits, '_', '.' or '-'", nickname)
	}
	return nil
}

type UserWithPosts struct {
	*user.Profile
	Posts []*post.Post `json:"posts"`
}

type UserService struct {
	users store.UserStore
	posts store.PostStore
}

func NewUserService(users store.UserStore, posts store.PostStore) *UserService {
	return &UserService{users: users, posts: posts}
}

// UpsertUser returns the user for info.Sub, creating it on first sign-in.
// Existing users are returned unchanged.
func (s *UserService) UpsertUser(ctx context.Context, info *user.UserInfo) (*user.User, bool, error) {
	if info == nil {
		return nil, false, apperr.Validation("userInfo is required")
	}
	if info.Sub == "" {
		return nil, false, apperr.Validation("userInfo.sub is required")
	}

	existing, err := s.users.GetUserBySub(ctx, info.Sub)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, apperr.Store("failed to look up user", err)
	}

	if err := ValidateNickname(info.Nickname); err != nil {
		return nil, false, err
	}

	u, created, err := s.users.CreateUser(ctx, &user.User{
		Sub:      info.Sub,
		Nickname: info.Nickname,
		Name:     info.Name,
		Email:    info.Email,
		Picture:  info.Picture,
		Bio:      info.Bio,
	})
	switch {
	case errors.Is(err, store.ErrNicknameTaken):
		return nil, false, apperr.Conflict("nickname %s is already taken", info.Nickname)
	case err != nil:
		return nil, false, apperr.Store("failed to save user", err)
	}

	if created {
		usersCreated.Inc()
		log.Printf("User Service: created user %s (%s)", u.Nickname, u.ID)
	}
	return u, created, nil
}

// SearchUsers returns public profiles whose nickname contains query.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]*user.Profile, error) {
	users, err := s.users.SearchUsers(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, apperr.Store("failed to search users", err)
	}

	profiles := make([]*user.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Store("failed to get user", err)
	}
	return u, nil
}

func (s *UserService) GetUserByNickname(ctx context.Context, nickname string) (*user.User, error) {
	return resolveUser(ctx, s.users, nickname)
}

// GetUserWithPosts returns the user and their posts, newest first.
func (s *UserService) GetUserWithPosts(ctx context.Context, userID string) (*UserWithPosts, error) {
	u, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListPostsByOwner(ctx, u.ID)
	if err != nil {
		return nil, apperr.Store("failed to list posts", err)
	}
	sortNewestFirst(posts)

	return &UserWithPosts{Profile: u.Profile(), Posts: posts}, nil
}

func (s *UserService) RegisterDevice(ctx context.Context, req *user.RegisterDeviceRequest) error {
	if req.Token == "" {
		return apperr.Validation("token is required")
	}
	platform := strings.ToLower(req.Platform)
	switch platform {
	case "ios", "android", "web":
	case "":
		platform = "android"
	default:
		return apperr.Validation("unsupported platform %q", req.Platform)
	}

	u, err := resolveUser(ctx, s.users, req.Nickname)
	if err != nil {
		return err
	}

	err = s.users.UpsertDeviceToken(ctx, &user.DeviceToken{
		UserID:   u.ID,
		Token:    req.Token,
		Platform: platform,
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Store("failed to register device", err)
	}
	return nil
}

func resolveUser(ctx context.Context, users store.UserStore, nickname string) (*user.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperr.Validation("nickname is required")
	}
	u, err := users.GetUserByNickname(ctx, nickname)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User %s not found", nickname)
	}
	if err != nil {
		return nil, apperr.Store("failed to get user", err)
	}
	return u, nil
}
