package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

type PostService struct {
	users store.UserStore
	posts store.PostStore
	now   func() time.Time
}

func NewPostService(users store.UserStore, posts store.PostStore) *PostService {
	return &PostService{
		users: users,
		posts: posts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AppendPost adds a post to the owner's ledger and returns it with its id.
func (s *PostService) AppendPost(ctx context.Context, ownerNickname string, np post.NewPost) (*post.Post, error) {
	postType, ok := post.ParseType(np.PostType)
	if !ok {
		return nil, apperr.Validation("invalid postType %q", np.PostType)
	}

	owner, err := resolveUser(ctx, s.users, ownerNickname)
	if err != nil {
		return nil, err
	}

	return s.insert(ctx, owner, postType, np)
}

func (s *PostService) insert(ctx context.Context, owner *user.User, postType post.PostType, np post.NewPost) (*post.Post, error) {
	mediaKind := np.MediaKind
	if mediaKind == "" {
		mediaKind = post.MediaNone
	}

	p := &post.Post{
		OwnerID:     owner.ID,
		ImageURL:    np.MediaURL,
		MediaKind:   mediaKind,
		Description: np.Description,
		PostType:    postType,
		Tags:        NormalizeTags(np.Tags),
		CreatedAt:   s.now(),
		Author:      owner.Author(),
	}

	err := s.posts.InsertPost(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User %s not found", owner.Nickname)
	}
	if err != nil {
		return nil, apperr.Store("failed to save post", err)
	}

	postsCreated.WithLabelValues(string(p.PostType), string(p.MediaKind)).Inc()
	return p, nil
}

// ListPosts returns the owner's posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, ownerNickname string) ([]*post.Post, error) {
	owner, err := resolveUser(ctx, s.users, ownerNickname)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListPostsByOwner(ctx, owner.ID)
	if err != nil {
		return nil, apperr.Store("failed to list posts", err)
	}
	sortNewestFirst(posts)
	return posts, nil
}

// LogLift records a post without media, such as a lift or a PR.
func (s *PostService) LogLift(ctx context.Context, req *post.AddPostRequest) (*post.Post, error) {
	nickname := req.Nickname
	if req.UserInfo != nil && req.UserInfo.Nickname != "" {
		nickname = req.UserInfo.Nickname
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperr.Validation("description is required")
	}

	postType := req.PostType
	if postType == "" {
		postType = string(post.TypeLift)
	}

	return s.AppendPost(ctx, nickname, post.NewPost{
		MediaKind:   post.MediaNone,
		Description: req.Description,
		PostType:    postType,
		Tags:        req.Tags,
	})
}

// NormalizeTags trims tags and drops empties and repeats, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sortNewestFirst(posts []*post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
