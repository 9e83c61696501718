package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"civiguard-backend-go/internal/config"
	"civiguard-backend-go/internal/models"
)

const (
	usersCollection      = "users"
	complaintsCollection = "complaints"
	auditLogsCollection  = "audit_logs"
)

// InitFirestore initializes the Firebase Admin SDK and returns a Firestore client.
// Credentials come from a file path, a base64 service-account JSON, or ADC, in that order.
func InitFirestore(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*firestore.Client, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file in GOOGLE_APPLICATION_CREDENTIALS does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return client, nil
}

type firestoreStore struct {
	client     *firestore.Client
	users      UserRepository
	complaints ComplaintRepository
	audit      AuditRepository
}

// NewFirestoreStore wires the Firestore repositories around one client.
func NewFirestoreStore(client *firestore.Client) Store {
	return &firestoreStore{
		client:     client,
		users:      NewFirestoreUserRepository(client),
		complaints: NewFirestoreComplaintRepository(client),
		audit:      NewFirestoreAuditRepository(client),
	}
}

func (s *firestoreStore) Users() UserRepository           { return s.users }
func (s *firestoreStore) Complaints() ComplaintRepository { return s.complaints }
func (s *firestoreStore) AuditLogs() AuditRepository      { return s.audit }

// Ping runs a one-document query; an empty collection still counts as reachable.
func (s *firestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !isIteratorDone(err) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func isIteratorDone(err error) bool {
	return errors.Is(err, iterator.Done)
}

func (s *firestoreStore) Close() error {
	return s.client.Close()
}

type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new audit log repository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	return &firestoreAuditRepository{client: client}
}

func (r *firestoreAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	docRef := r.client.Collection(auditLogsCollection).NewDoc()
	if _, err := docRef.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
