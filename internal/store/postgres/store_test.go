package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/post"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

// setupTestDB connects to TEST_DATABASE_URL and applies migrations. Tests
// are skipped when no database is configured.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, RunMigrations(dbURL))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := Connect(ctx, dbURL, Options{MaxConns: 4})
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		for _, table := range []string{"device_tokens", "lifting_lads", "lifting_lad_requests", "posts", "users"} {
			if _, err := s.db.Exec(ctx, "DELETE FROM "+table); err != nil {
				t.Logf("Warning: failed to cleanup %s: %v", table, err)
			}
		}
		s.Close()
	})
	return s
}

func createUser(t *testing.T, s *Store, nickname string) *user.User {
	t.Helper()
	u, created, err := s.CreateUser(context.Background(), &user.User{
		Sub:      "auth0|" + uuid.NewString(),
		Nickname: nickname,
		Picture:  "https://example.com/" + nickname + ".jpg",
	})
	require.NoError(t, err)
	require.True(t, created)
	return u
}

func TestCreateUser_Idempotent(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	first, created, err := s.CreateUser(ctx, &user.User{Sub: "auth0|same", Nickname: "bobby", Bio: "squats"})
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := s.CreateUser(ctx, &user.User{Sub: "auth0|same", Nickname: "bobby2", Bio: "changed"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "squats", again.Bio)

	_, _, err = s.CreateUser(ctx, &user.User{Sub: "auth0|other", Nickname: "BOBBY"})
	assert.ErrorIs(t, err, store.ErrNicknameTaken)
}

func TestSearchUsers_CaseInsensitiveSubstring(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	createUser(t, s, "bobby")
	createUser(t, s, "alice")
	createUser(t, s, "bobcat")
	createUser(t, s, "under_score")

	users, err := s.SearchUsers(ctx, "BOB")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bobby", users[0].Nickname)
	assert.Equal(t, "bobcat", users[1].Nickname)

	literal, err := s.SearchUsers(ctx, "_")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "under_score", literal[0].Nickname)

	all, err := s.SearchUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPosts_RoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")

	p := &post.Post{
		OwnerID:     alice.ID,
		ImageURL:    "https://cdn.example.com/squat.jpg",
		MediaKind:   post.MediaImage,
		Description: "140kg squat",
		PostType:    post.TypePR,
		Tags:        []string{"squat", "pr"},
		Author:      alice.Author(),
	}
	require.NoError(t, s.InsertPost(ctx, p))

	posts, err := s.ListPostsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, p.ID, posts[0].ID)
	assert.Equal(t, post.TypePR, posts[0].PostType)
	assert.Equal(t, []string{"squat", "pr"}, posts[0].Tags)
	assert.Equal(t, "alice", posts[0].Author.Nickname)
}

func TestAcceptRequest_Transactional(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: alice.ID, RequestedID: bob.ID, FriendType: "gym"}))
	err := s.InsertRequest(ctx, &liftinglad.Request{RequesterID: alice.ID, RequestedID: bob.ID})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	var wg sync.WaitGroup
	results := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.AcceptRequest(ctx, alice.ID, bob.ID,
				&liftinglad.Lad{RequesterName: "alice", RequestedName: "bob"},
				&liftinglad.Lad{RequesterName: "alice", RequestedName: "bob"},
			)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, store.ErrNotFound)
		}
	}
	assert.Equal(t, 1, successes)

	bobLads, err := s.ListLads(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobLads, 1)
	assert.Equal(t, "alice", bobLads[0].LadName)

	aliceLads, err := s.ListLads(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceLads, 1)

	_, err = s.GetPendingRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAcceptRequest_ClearsCrossedRequest(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: alice.ID, RequestedID: bob.ID}))
	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: bob.ID, RequestedID: alice.ID}))

	toBob, toAlice := &liftinglad.Lad{}, &liftinglad.Lad{}
	require.NoError(t, s.AcceptRequest(ctx, alice.ID, bob.ID, toBob, toAlice))
	assert.NotEmpty(t, toBob.ID)
	assert.NotEmpty(t, toAlice.ID)

	pending, err := s.ListRequestsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = s.AcceptRequest(ctx, bob.ID, alice.ID, &liftinglad.Lad{}, &liftinglad.Lad{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAcceptRequest_ExistingEdgesKeepEmptyID(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")

	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: alice.ID, RequestedID: bob.ID}))
	require.NoError(t, s.AcceptRequest(ctx, alice.ID, bob.ID, &liftinglad.Lad{}, &liftinglad.Lad{}))

	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: bob.ID, RequestedID: alice.ID}))
	toAlice, toBob := &liftinglad.Lad{}, &liftinglad.Lad{}
	require.NoError(t, s.AcceptRequest(ctx, bob.ID, alice.ID, toAlice, toBob))
	assert.Empty(t, toAlice.ID)
	assert.Empty(t, toBob.ID)

	lads, err := s.ListLads(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, lads, 1)
}
