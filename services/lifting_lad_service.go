package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/apperr"
	"liftingLadsAPI/internal/liftinglad"
	"liftingLadsAPI/internal/notification"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/user"
)

// LiftingLadService runs the friend request workflow. Per pair of users the
// state moves NONE -> PENDING -> FRIENDS, or back to NONE when ignored.
type LiftingLadService struct {
	users  store.UserStore
	lads   store.LiftingLadStore
	pusher notification.Pusher
}

// NewLiftingLadService builds the service. pusher may be nil, in which case
// no notifications are sent.
func NewLiftingLadService(users store.UserStore, lads store.LiftingLadStore, pusher notification.Pusher) *LiftingLadService {
	return &LiftingLadService{users: users, lads: lads, pusher: pusher}
}

func (s *LiftingLadService) resolvePair(ctx context.Context, requesterName, requestedName string) (*user.User, *user.User, error) {
	requesterName = strings.TrimSpace(requesterName)
	requestedName = strings.TrimSpace(requestedName)
	if requesterName == "" || requestedName == "" {
		return nil, nil, apperr.Validation("requesterName and requestedName are required")
	}
	if strings.EqualFold(requesterName, requestedName) {
		return nil, nil, apperr.Validation("You cannot send a Lifting Lad request to yourself")
	}

	requester, err := resolveUser(ctx, s.users, requesterName)
	if err != nil {
		return nil, nil, err
	}
	requested, err := resolveUser(ctx, s.users, requestedName)
	if err != nil {
		return nil, nil, err
	}
	return requester, requested, nil
}

// SendRequest creates a pending request from requester to requested.
func (s *LiftingLadService) SendRequest(ctx context.Context, req *liftinglad.SendRequest) (*liftinglad.Request, error) {
	requester, requested, err := s.resolvePair(ctx, req.RequesterName, req.RequestedName)
	if err != nil {
		return nil, err
	}

	friends, err := s.lads.AreLads(ctx, requester.ID, requested.ID)
	if err != nil {
		return nil, apperr.Store("failed to check lifting lads", err)
	}
	if friends {
		return nil, apperr.Conflict("%s is already your Lifting Lad", requested.Nickname)
	}

	_, err = s.lads.GetPendingRequest(ctx, requester.ID, requested.ID)
	if err == nil {
		return nil, apperr.Conflict("Lifting Lad request already sent")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Store("failed to check lifting lad request", err)
	}

	// One pending request per pair, whichever side sent it.
	_, err = s.lads.GetPendingRequest(ctx, requested.ID, requester.ID)
	if err == nil {
		return nil, apperr.Conflict("%s already sent you a Lifting Lad request", requested.Nickname)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Store("failed to check lifting lad request", err)
	}

	picture := req.RequesterPicture
	if picture == "" {
		picture = requester.Picture
	}

	request := &liftinglad.Request{
		RequesterID:      requester.ID,
		RequestedID:      requested.ID,
		RequesterName:    requester.Nickname,
		RequestedName:    requested.Nickname,
		RequesterPicture: picture,
		FriendType:       req.FriendType,
	}
	err = s.lads.InsertRequest(ctx, request)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("Lifting Lad request already sent")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("User not found")
	case err != nil:
		return nil, apperr.Store("failed to save lifting lad request", err)
	}

	liftingLadTransitions.WithLabelValues("sent").Inc()
	log.Printf("Lifting Lad Service: %s sent a request to %s", requester.Nickname, requested.Nickname)

	s.notify(ctx, requested.ID, notification.LadRequest(requester.Nickname, req.FriendType))
	return request, nil
}

// AcceptRequest turns the pending request into a pair of lad edges.
func (s *LiftingLadService) AcceptRequest(ctx context.Context, req *liftinglad.AcceptRequest) error {
	requester, requested, err := s.resolvePair(ctx, req.RequesterName, req.RequestedName)
	if err != nil {
		return err
	}

	pending, err := s.lads.GetPendingRequest(ctx, requester.ID, requested.ID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Lifting Lad request not found")
	}
	if err != nil {
		return apperr.Store("failed to get lifting lad request", err)
	}

	friendType := firstNonEmpty(req.FriendType, pending.FriendType)

	// Each edge carries the counterpart's picture.
	toRequested := &liftinglad.Lad{
		RequesterName: requester.Nickname,
		RequestedName: requested.Nickname,
		Picture:       firstNonEmpty(req.RequesterPicture, pending.RequesterPicture, requester.Picture),
		FriendType:    friendType,
	}
	toRequester := &liftinglad.Lad{
		RequesterName: requester.Nickname,
		RequestedName: requested.Nickname,
		Picture:       firstNonEmpty(req.RequestedPicture, requested.Picture),
		FriendType:    friendType,
	}

	err = s.lads.AcceptRequest(ctx, requester.ID, requested.ID, toRequested, toRequester)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Lifting Lad request not found")
	}
	if err != nil {
		return apperr.Store("failed to accept lifting lad request", err)
	}

	liftingLadTransitions.WithLabelValues("accepted").Inc()
	log.Printf("Lifting Lad Service: %s accepted %s", requested.Nickname, requester.Nickname)

	s.notify(ctx, requester.ID, notification.LadAccepted(requested.Nickname))
	return nil
}

// IgnoreRequest deletes the pending request without creating edges.
func (s *LiftingLadService) IgnoreRequest(ctx context.Context, req *liftinglad.IgnoreRequest) error {
	requester, requested, err := s.resolvePair(ctx, req.RequesterName, req.RequestedName)
	if err != nil {
		return err
	}

	err = s.lads.DeleteRequest(ctx, requester.ID, requested.ID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Lifting Lad request not found")
	}
	if err != nil {
		return apperr.Store("failed to ignore lifting lad request", err)
	}

	liftingLadTransitions.WithLabelValues("ignored").Inc()
	return nil
}

// ListRequests returns the pending requests addressed to nickname. An empty
// slice means there are none.
func (s *LiftingLadService) ListRequests(ctx context.Context, nickname string) ([]*liftinglad.Request, error) {
	u, err := resolveUser(ctx, s.users, nickname)
	if err != nil {
		return nil, err
	}

	requests, err := s.lads.ListRequestsFor(ctx, u.ID)
	if err != nil {
		return nil, apperr.Store("failed to list lifting lad requests", err)
	}
	return requests, nil
}

func (s *LiftingLadService) ListLads(ctx context.Context, nickname string) ([]*liftinglad.Lad, error) {
	u, err := resolveUser(ctx, s.users, nickname)
	if err != nil {
		return nil, err
	}

	lads, err := s.lads.ListLads(ctx, u.ID)
	if err != nil {
		return nil, apperr.Store("failed to list lifting lads", err)
	}
	return lads, nil
}

// notify is best-effort. Failures are logged and never reach the caller.
func (s *LiftingLadService) notify(ctx context.Context, userID string, msg notification.Message) {
	if s.pusher == nil {
		return
	}

	tokens, err := s.users.ListDeviceTokens(ctx, userID)
	if err != nil {
		log.Printf("Lifting Lad Service: failed to load device tokens for %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	if err := s.pusher.SendPush(ctx, tokens, msg); err != nil {
		log.Printf("Lifting Lad Service: push %s to %s failed: %v", msg.Event, userID, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
