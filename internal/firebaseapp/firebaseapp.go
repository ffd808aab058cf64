package firebaseapp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

var ErrNoCredentials = errors.New("no firebase credentials configured")

type Credentials struct {
	// ServiceAccountJSON is a base64 encoded service account key.
	ServiceAccountJSON string
	CredentialsFile    string
	StorageBucket      string
}

// New initializes the Firebase app shared by the media store and the push
// notifier. Base64 credentials take precedence over the local key file.
func New(ctx context.Context, creds Credentials) (*firebase.App, error) {
	opt, err := clientOption(creds)
	if err != nil {
		return nil, err
	}

	var conf *firebase.Config
	if creds.StorageBucket != "" {
		conf = &firebase.Config{StorageBucket: creds.StorageBucket}
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

func clientOption(creds Credentials) (option.ClientOption, error) {
	if creds.ServiceAccountJSON != "" {
		decoded, err := base64.StdEncoding.DecodeString(creds.ServiceAccountJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON")
		return option.WithCredentialsJSON(decoded), nil
	}

	if creds.CredentialsFile == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(creds.CredentialsFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("local firebase file not found: %s: %w", creds.CredentialsFile, ErrNoCredentials)
	}
	log.Printf("Firebase: initializing from local file: %s", creds.CredentialsFile)
	return option.WithCredentialsFile(creds.CredentialsFile), nil
}
