package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"liftingLadsAPI/internal/media"
	"liftingLadsAPI/internal/notification"
	"liftingLadsAPI/internal/store/memory"
	"liftingLadsAPI/internal/user"
)

type fakeMedia struct {
	url       string
	err       error
	paths     []string
	sawFile   bool
	lastOpts  media.UploadOptions
	lastBytes []byte
}

func (f *fakeMedia) Upload(_ context.Context, localPath string, opts media.UploadOptions) (string, error) {
	f.paths = append(f.paths, localPath)
	f.lastOpts = opts
	if data, err := os.ReadFile(localPath); err == nil {
		f.sawFile = true
		f.lastBytes = data
	}
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakePusher struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (f *fakePusher) SendPush(_ context.Context, tokens []user.DeviceToken, msg notification.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for range tokens {
		f.sent = append(f.sent, msg)
	}
	return nil
}

var errUpstream = errors.New("upstream unavailable")

// clock hands out strictly increasing timestamps.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New().WithClock(newClock().Now)
}

func seedUser(t *testing.T, s *memory.Store, nickname string) *user.User {
	t.Helper()
	u, _, err := NewUserService(s, s).UpsertUser(context.Background(), &user.UserInfo{
		Sub:      "auth0|" + nickname,
		Nickname: nickname,
		Picture:  "https://img.example.com/" + nickname + ".png",
	})
	require.NoError(t, err)
	return u
}
