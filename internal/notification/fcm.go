package notification

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/internal/user"
)

var ErrAllFailed = errors.New("all push notifications failed")

// Pusher delivers a message to a user's registered devices.
type Pusher interface {
	SendPush(ctx context.Context, tokens []user.DeviceToken, msg Message) error
}

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client sender
}

var _ Pusher = (*FCMService)(nil)

func NewFCMService(ctx context.Context, app *firebase.App) (*FCMService, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &FCMService{client: client}, nil
}

// SendPush sends one message per token. It fails only when every send failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []user.DeviceToken, msg Message) error {
	if len(tokens) == 0 {
		return nil
	}

	successCount := 0
	failureCount := 0

	for _, t := range tokens {
		_, err := s.client.Send(ctx, buildMessage(t, msg))
		if err != nil {
			log.Printf("FCM: Failed to send %s to token %s: %v", msg.Event, t.Token, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.Printf("FCM: Sent %d %s messages, %d failed", successCount, msg.Event, failureCount)

	if successCount == 0 && failureCount > 0 {
		return ErrAllFailed
	}
	return nil
}

func buildMessage(t user.DeviceToken, msg Message) *messaging.Message {
	m := &messaging.Message{
		Token: t.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	switch t.Platform {
	case "ios":
		m.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	default:
		m.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return m
}
