package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
)

const feedFanOut = 4

// ErrNoFriends is returned when the user has no lifting lads. It is distinct
// from an empty feed.
var ErrNoFriends = &apperr.Error{Kind: apperr.KindNotFound, Message: "No friends found"}

type FeedService struct {
	users store.UserStore
	lads  store.LiftingLadStore
	posts store.PostStore
}

func NewFeedService(users store.UserStore, lads store.LiftingLadStore, posts store.PostStore) *FeedService {
	return &FeedService{users: users, lads: lads, posts: posts}
}

// GetFriendsFeed merges the posts of every lad of nickname, newest first.
func (s *FeedService) GetFriendsFeed(ctx context.Context, nickname string) ([]post.PostView, error) {
	u, err := resolveUser(ctx, s.users, nickname)
	if err != nil {
		return nil, err
	}

	lads, err := s.lads.ListLads(ctx, u.ID)
	if err != nil {
		return nil, apperr.Store("failed to list lifting lads", err)
	}
	if len(lads) == 0 {
		return nil, ErrNoFriends
	}

	ledgers := make([][]*post.Post, len(lads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedFanOut)
	for i, lad := range lads {
		g.Go(func() error {
			posts, err := s.posts.ListPostsByOwner(gctx, lad.LadID)
			if err != nil {
				return err
			}
			ledgers[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.Store("failed to load friends' posts", err)
	}

	feed := []post.PostView{}
	for _, ledger := range ledgers {
		for _, p := range ledger {
			feed = append(feed, p.View())
		}
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed, nil
}
