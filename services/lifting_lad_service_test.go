package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/notification"
	"liftingLadsAPI/internal/store/memory"
	"liftingLadsAPI/internal/user"
)

func newLadFixture(t *testing.T) (*LiftingLadService, *memory.Store, *fakePusher) {
	t.Helper()
	s := newStore(t)
	seedUser(t, s, "alice")
	seedUser(t, s, "bobby")
	pusher := &fakePusher{}
	return NewLiftingLadService(s, s, pusher), s, pusher
}

func send(t *testing.T, svc *LiftingLadService, from, to string) {
	t.Helper()
	_, err := svc.SendRequest(context.Background(), &liftinglad.SendRequest{
		RequesterName:    from,
		RequestedName:    to,
		RequesterPicture: from + ".png",
		FriendType:       "gym",
	})
	require.NoError(t, err)
}

func TestSendRequest(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()

	req, err := svc.SendRequest(ctx, &liftinglad.SendRequest{RequesterName: "alice", RequestedName: "bobby", FriendType: "gym"})
	require.NoError(t, err)
	assert.Equal(t, liftinglad.StatusPending, req.Status)
	assert.Equal(t, "https://img.example.com/alice.png", req.RequesterPicture)

	requests, err := svc.ListRequests(ctx, "bobby")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "alice", requests[0].RequesterName)

	none, err := svc.ListRequests(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSendRequest_Errors(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  liftinglad.SendRequest
		kind apperr.Kind
	}{
		{"missing names", liftinglad.SendRequest{RequesterName: "alice"}, apperr.KindValidation},
		{"self request", liftinglad.SendRequest{RequesterName: "alice", RequestedName: "ALICE"}, apperr.KindValidation},
		{"unknown requested", liftinglad.SendRequest{RequesterName: "alice", RequestedName: "ghost"}, apperr.KindNotFound},
		{"unknown requester", liftinglad.SendRequest{RequesterName: "ghost", RequestedName: "alice"}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendRequest(ctx, &tt.req)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}
}

func TestSendRequest_Duplicate(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	send(t, svc, "alice", "bobby")

	_, err := svc.SendRequest(context.Background(), &liftinglad.SendRequest{RequesterName: "alice", RequestedName: "bobby"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSendRequest_AlreadyLads(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()
	send(t, svc, "alice", "bobby")
	require.NoError(t, svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"}))

	_, err := svc.SendRequest(ctx, &liftinglad.SendRequest{RequesterName: "bobby", RequestedName: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestSendRequest_CrossedRequestRejected(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()
	send(t, svc, "alice", "bobby")

	_, err := svc.SendRequest(ctx, &liftinglad.SendRequest{RequesterName: "bobby", RequestedName: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"}))

	for _, nickname := range []string{"alice", "bobby"} {
		requests, err := svc.ListRequests(ctx, nickname)
		require.NoError(t, err)
		assert.Empty(t, requests, nickname)
	}
}

func TestAcceptRequest_SettlesCrossedRequest(t *testing.T) {
	svc, s, pusher := newLadFixture(t)
	ctx := context.Background()
	require.NoError(t, NewUserService(s, s).RegisterDevice(ctx, &user.RegisterDeviceRequest{Nickname: "alice", Token: "alice-phone"}))

	alice, err := s.GetUserByNickname(ctx, "alice")
	require.NoError(t, err)
	bobby, err := s.GetUserByNickname(ctx, "bobby")
	require.NoError(t, err)

	// Two requests that crossed before either side saw the other.
	send(t, svc, "alice", "bobby")
	require.NoError(t, s.InsertRequest(ctx, &liftinglad.Request{RequesterID: bobby.ID, RequestedID: alice.ID}))

	require.NoError(t, svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"}))

	requests, err := svc.ListRequests(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, requests)

	err = svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "bobby", RequestedName: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	accepted := 0
	for _, msg := range pusher.sent {
		if msg.Event == notification.EventLadAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestAcceptRequest_CreatesMirroredLads(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()
	send(t, svc, "alice", "bobby")

	err := svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{
		RequesterName:    "alice",
		RequestedName:    "bobby",
		RequestedPicture: "bobby-new.png",
	})
	require.NoError(t, err)

	bobLads, err := svc.ListLads(ctx, "bobby")
	require.NoError(t, err)
	require.Len(t, bobLads, 1)
	assert.Equal(t, "alice", bobLads[0].LadName)
	assert.Equal(t, "alice.png", bobLads[0].Picture)
	assert.Equal(t, "gym", bobLads[0].FriendType)

	aliceLads, err := svc.ListLads(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceLads, 1)
	assert.Equal(t, "bobby", aliceLads[0].LadName)
	assert.Equal(t, "bobby-new.png", aliceLads[0].Picture)

	requests, err := svc.ListRequests(ctx, "bobby")
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestAcceptRequest_WithoutPending(t *testing.T) {
	svc, _, _ := newLadFixture(t)

	err := svc.AcceptRequest(context.Background(), &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	lads, err := svc.ListLads(context.Background(), "bobby")
	require.NoError(t, err)
	assert.Empty(t, lads)
}

func TestAcceptRequest_ConcurrentDoubleAccept(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	send(t, svc, "alice", "bobby")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.AcceptRequest(context.Background(), &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindNotFound), err)
	}
	assert.Equal(t, 1, successes)

	lads, err := svc.ListLads(context.Background(), "bobby")
	require.NoError(t, err)
	assert.Len(t, lads, 1)
}

func TestIgnoreRequest(t *testing.T) {
	svc, _, _ := newLadFixture(t)
	ctx := context.Background()
	send(t, svc, "alice", "bobby")

	require.NoError(t, svc.IgnoreRequest(ctx, &liftinglad.IgnoreRequest{RequesterName: "alice", RequestedName: "bobby"}))

	err := svc.IgnoreRequest(ctx, &liftinglad.IgnoreRequest{RequesterName: "alice", RequestedName: "bobby"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// ignoring returns the pair to NONE, so a new request is allowed
	send(t, svc, "alice", "bobby")
}

func TestNotifications(t *testing.T) {
	svc, s, pusher := newLadFixture(t)
	ctx := context.Background()
	users := NewUserService(s, s)
	require.NoError(t, users.RegisterDevice(ctx, &user.RegisterDeviceRequest{Nickname: "bobby", Token: "bob-phone"}))
	require.NoError(t, users.RegisterDevice(ctx, &user.RegisterDeviceRequest{Nickname: "alice", Token: "alice-phone", Platform: "ios"}))

	send(t, svc, "alice", "bobby")
	require.NoError(t, svc.AcceptRequest(ctx, &liftinglad.AcceptRequest{RequesterName: "alice", RequestedName: "bobby"}))

	require.Len(t, pusher.sent, 2)
	assert.Equal(t, notification.EventLadRequest, pusher.sent[0].Event)
	assert.Equal(t, notification.EventLadAccepted, pusher.sent[1].Event)
}

func TestNotificationFailureDoesNotFailRequest(t *testing.T) {
	svc, s, pusher := newLadFixture(t)
	pusher.err = errUpstream
	require.NoError(t, NewUserService(s, s).RegisterDevice(context.Background(), &user.RegisterDeviceRequest{Nickname: "bobby", Token: "t"}))

	send(t, svc, "alice", "bobby")
}
