package services

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

const defaultCredentialsPath = "./firebase-service-account.json"

// InitFirebase initializes the Firebase Admin SDK and returns an auth client.
// The service-account file is taken from FIREBASE_CREDENTIALS_PATH, falling
// back to ./firebase-service-account.json.
func InitFirebase() (*auth.Client, error) {
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = defaultCredentialsPath
	}

	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, err
	}
	return app.Auth(context.Background())
}
