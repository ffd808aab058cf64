package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

// Store is an in-memory implementation of store.Store. It is safe for
// concurrent use and is intended for tests and local development.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]user.User
	posts    map[string][]post.Post
	requests map[pair]liftinglad.Request
	lads     map[pair]liftinglad.Lad
	devices  map[string]user.DeviceToken
}

// pair is (requester, requested) for requests and (owner, lad) for edges.
type pair struct {
	a, b string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[string]user.User),
		posts:    make(map[string][]post.Post),
		requests: make(map[pair]liftinglad.Request),
		lads:     make(map[pair]liftinglad.Lad),
		devices:  make(map[string]user.DeviceToken),
	}
}

// WithClock replaces the time source used to stamp new records.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// User store ------------------------------------------------------------------

func (s *Store) GetUserByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserBySub(_ context.Context, sub string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Sub == sub {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByNickname(_ context.Context, nickname string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.findByNicknameLocked(nickname)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) findByNicknameLocked(nickname string) (user.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Nickname, nickname) {
			return u, true
		}
	}
	return user.User{}, false
}

func (s *Store) CreateUser(_ context.Context, u *user.User) (*user.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Sub == u.Sub {
			return &existing, false, nil
		}
	}
	if _, taken := s.findByNicknameLocked(u.Nickname); taken {
		return nil, false, store.ErrNicknameTaken
	}

	created := *u
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}
	s.users[created.ID] = created
	return &created, true, nil
}

func (s *Store) SearchUsers(_ context.Context, query string) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	users := []*user.User{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Nickname), needle) {
			match := u
			users = append(users, &match)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Nickname) < strings.ToLower(users[j].Nickname)
	})
	return users, nil
}

func (s *Store) UpsertDeviceToken(_ context.Context, token *user.DeviceToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[token.UserID]; !ok {
		return store.ErrNotFound
	}
	t := *token
	t.UpdatedAt = s.now()
	s.devices[t.Token] = t
	return nil
}

func (s *Store) ListDeviceTokens(_ context.Context, userID string) ([]user.DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tokens []user.DeviceToken
	for _, t := range s.devices {
		if t.UserID == userID {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

// Post store ------------------------------------------------------------------

func (s *Store) InsertPost(_ context.Context, p *post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[p.OwnerID]; !ok {
		return store.ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.MediaKind == "" {
		p.MediaKind = post.MediaNone
	}

	stored := *p
	stored.Tags = append([]string(nil), p.Tags...)
	s.posts[p.OwnerID] = append(s.posts[p.OwnerID], stored)
	return nil
}

func (s *Store) ListPostsByOwner(_ context.Context, ownerID string) ([]*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.posts[ownerID]
	posts := make([]*post.Post, 0, len(ledger))
	for i := len(ledger) - 1; i >= 0; i-- {
		p := ledger[i]
		p.Tags = append([]string{}, p.Tags...)
		posts = append(posts, &p)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Lifting lad store -----------------------------------------------------------

func (s *Store) GetPendingRequest(_ context.Context, requesterID, requestedID string) (*liftinglad.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[pair{requesterID, requestedID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.decorateRequestLocked(req), nil
}

func (s *Store) decorateRequestLocked(req liftinglad.Request) *liftinglad.Request {
	if u, ok := s.users[req.RequesterID]; ok {
		req.RequesterName = u.Nickname
	}
	if u, ok := s.users[req.RequestedID]; ok {
		req.RequestedName = u.Nickname
	}
	return &req
}

func (s *Store) InsertRequest(_ context.Context, req *liftinglad.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.RequesterID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.users[req.RequestedID]; !ok {
		return store.ErrNotFound
	}
	key := pair{req.RequesterID, req.RequestedID}
	if _, exists := s.requests[key]; exists {
		return store.ErrDuplicate
	}

	req.ID = uuid.New().String()
	req.Status = liftinglad.StatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}
	s.requests[key] = *req
	return nil
}

func (s *Store) DeleteRequest(_ context.Context, requesterID, requestedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{requesterID, requestedID}
	if _, ok := s.requests[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.requests, key)
	return nil
}

func (s *Store) ListRequestsFor(_ context.Context, requestedID string) ([]*liftinglad.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requests := []*liftinglad.Request{}
	for key, req := range s.requests {
		if key.b == requestedID {
			requests = append(requests, s.decorateRequestLocked(req))
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (s *Store) AcceptRequest(_ context.Context, requesterID, requestedID string, toRequested, toRequester *liftinglad.Lad) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{requesterID, requestedID}
	if _, ok := s.requests[key]; !ok {
		return store.ErrNotFound
	}

	now := s.now()
	s.addLadLocked(requestedID, requesterID, toRequested, now)
	s.addLadLocked(requesterID, requestedID, toRequester, now)
	delete(s.requests, key)
	delete(s.requests, pair{requestedID, requesterID})
	return nil
}

func (s *Store) addLadLocked(ownerID, ladID string, l *liftinglad.Lad, now time.Time) {
	key := pair{ownerID, ladID}
	if _, exists := s.lads[key]; exists {
		return
	}
	l.ID = uuid.New().String()
	l.OwnerID = ownerID
	l.LadID = ladID
	if l.AddedAt.IsZero() {
		l.AddedAt = now
	}
	s.lads[key] = *l
}

func (s *Store) ListLads(_ context.Context, ownerID string) ([]*liftinglad.Lad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lads := []*liftinglad.Lad{}
	for key, l := range s.lads {
		if key.a != ownerID {
			continue
		}
		if u, ok := s.users[l.OwnerID]; ok {
			l.OwnerName = u.Nickname
		}
		if u, ok := s.users[l.LadID]; ok {
			l.LadName = u.Nickname
		}
		edge := l
		lads = append(lads, &edge)
	}
	sort.Slice(lads, func(i, j int) bool {
		return lads[i].AddedAt.After(lads[j].AddedAt)
	})
	return lads, nil
}

func (s *Store) AreLads(_ context.Context, userID, otherID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, forward := s.lads[pair{userID, otherID}]
	_, backward := s.lads[pair{otherID, userID}]
	return forward || backward, nil
}
