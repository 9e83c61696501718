package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civiguard-backend-go/internal/models"
)

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// GetByID retrieves a user document by its internal ID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return decodeUser(docSnap)
}

// GetByIDs fetches all referenced users in one round trip.
func (r *firestoreUserRepository) GetByIDs(ctx context.Context, userIDs []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, r.client.Collection(usersCollection).Doc(id))
	}
	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch get %d users: %w", len(refs), err)
	}
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		user, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, nil
}

// UpsertByGoogleID looks the user up by googleId and creates it inside the same
// transaction, so concurrent first logins resolve to one document.
func (r *firestoreUserRepository) UpsertByGoogleID(ctx context.Context, profile *models.User) (*models.User, bool, error) {
	if profile.GoogleID == "" {
		return nil, false, errors.New("googleId cannot be empty for UpsertByGoogleID operation")
	}

	var (
		result  *models.User
		created bool
	)
	users := r.client.Collection(usersCollection)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result, created = nil, false

		docs, err := tx.Documents(users.Where("googleId", "==", profile.GoogleID).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			result, err = decodeUser(docs[0])
			return err
		}

		docRef := users.NewDoc()
		newUser := *profile
		newUser.ID = docRef.ID
		if err := tx.Create(docRef, &newUser); err != nil {
			return err
		}
		result, created = &newUser, true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user with googleId '%s': %w", profile.GoogleID, err)
	}
	return result, created, nil
}

// Update overwrites the mutable profile fields of an existing user.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Update(ctx, []firestore.Update{
		{Path: "email", Value: user.Email},
		{Path: "name", Value: user.Name},
		{Path: "avatar", Value: user.Avatar},
		{Path: "role", Value: user.Role},
		{Path: "updatedAt", Value: user.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("user with ID '%s' not found: %w", user.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	return nil
}

func decodeUser(docSnap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}
