// Package store defines the persistence interfaces consumed by the services.
// Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"

	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/user"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("record already exists")
	ErrNicknameTaken = errors.New("nickname already taken")
)

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	GetUserBySub(ctx context.Context, sub string) (*user.User, error)
	// GetUserByNickname matches case-insensitively.
	GetUserByNickname(ctx context.Context, nickname string) (*user.User, error)

	// CreateUser inserts u unless a user with the same sub exists, in which
	// case the stored user is returned with created=false. A nickname held by
	// a different sub yields ErrNicknameTaken.
	CreateUser(ctx context.Context, u *user.User) (stored *user.User, created bool, err error)

	// SearchUsers returns users whose nickname contains query, ignoring case,
	// ordered by nickname. An empty query matches every user.
	SearchUsers(ctx context.Context, query string) ([]*user.User, error)

	UpsertDeviceToken(ctx context.Context, token *user.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID string) ([]user.DeviceToken, error)
}

type PostStore interface {
	// InsertPost assigns ID and CreatedAt when unset.
	InsertPost(ctx context.Context, p *post.Post) error
	// ListPostsByOwner returns posts newest first.
	ListPostsByOwner(ctx context.Context, ownerID string) ([]*post.Post, error)
}

type LiftingLadStore interface {
	GetPendingRequest(ctx context.Context, requesterID, requestedID string) (*liftinglad.Request, error)
	// InsertRequest returns ErrDuplicate when the pair already has a pending request.
	InsertRequest(ctx context.Context, req *liftinglad.Request) error
	// DeleteRequest returns ErrNotFound when no pending request matched.
	DeleteRequest(ctx context.Context, requesterID, requestedID string) error
	ListRequestsFor(ctx context.Context, requestedID string) ([]*liftinglad.Request, error)

	// AcceptRequest stores both edges and removes the pending request, plus
	// any pending request in the opposite direction, as one unit. It returns
	// ErrNotFound, and writes nothing, when the pending request is already
	// gone. An edge that already existed keeps an empty ID.
	AcceptRequest(ctx context.Context, requesterID, requestedID string, toRequested, toRequester *liftinglad.Lad) error

	ListLads(ctx context.Context, ownerID string) ([]*liftinglad.Lad, error)
	AreLads(ctx context.Context, userID, otherID string) (bool, error)
}

type Store interface {
	UserStore
	PostStore
	LiftingLadStore
	Ping(ctx context.Context) error
	Close()
}
