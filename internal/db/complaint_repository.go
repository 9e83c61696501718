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

// firestoreComplaintRepository implements the ComplaintRepository interface using Firestore.
type firestoreComplaintRepository struct {
	client *firestore.Client
}

// NewFirestoreComplaintRepository creates a new instance of firestoreComplaintRepository.
func NewFirestoreComplaintRepository(client *firestore.Client) ComplaintRepository {
	return &firestoreComplaintRepository{client: client}
}

// Create adds a new complaint document with an auto-generated ID.
// Timestamps are written as given so createdAt and updatedAt match at insert.
func (r *firestoreComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) (string, error) {
	docRef := r.client.Collection(complaintsCollection).NewDoc()
	complaint.ID = docRef.ID

	if _, err := docRef.Create(ctx, complaint); err != nil {
		return "", fmt.Errorf("failed to create complaint: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a complaint document by its ID.
func (r *firestoreComplaintRepository) GetByID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	if complaintID == "" {
		return nil, errors.New("complaintID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(complaintsCollection).Doc(complaintID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get complaint with ID '%s': %w", complaintID, err)
	}
	return decodeComplaint(docSnap)
}

// List runs the filtered query newest first. Equality filters combined with the
// createdAt ordering need composite indexes (see firestore.indexes.json).
func (r *firestoreComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, error) {
	query := r.client.Collection(complaintsCollection).Query
	if filter.OwnerID != "" {
		query = query.Where("userId", "==", filter.OwnerID)
	}
	if filter.PublicOnly {
		query = query.Where("isPublic", "==", true)
	}
	if filter.Category != "" {
		query = query.Where("category", "==", string(filter.Category))
	}
	if filter.Priority != "" {
		query = query.Where("priority", "==", string(filter.Priority))
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if !filter.CreatedAfter.IsZero() {
		query = query.Where("createdAt", ">=", filter.CreatedAfter)
	}
	// Range filters on both coordinates would force ordering by location, so
	// bounds are checked while streaming and the limit is enforced here.
	limit := filter.EffectiveLimit()
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Bounds == nil {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	complaints := make([]*models.Complaint, 0)
	for len(complaints) < limit {
		doc, err := iter.Next()
		if isIteratorDone(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate complaints: %w", err)
		}
		complaint, err := decodeComplaint(doc)
		if err != nil {
			return nil, err
		}
		if filter.Bounds != nil && !filter.Bounds.Contains(complaint.Location) {
			continue
		}
		complaints = append(complaints, complaint)
	}
	return complaints, nil
}

// Update applies the non-nil patch fields. Firestore's Update fails with NotFound
// on a missing document, so no read is needed before the write.
func (r *firestoreComplaintRepository) Update(ctx context.Context, complaintID string, patch models.ComplaintPatch) (*models.Complaint, error) {
	docRef := r.client.Collection(complaintsCollection).Doc(complaintID)
	if _, err := docRef.Update(ctx, patchUpdates(patch)); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update complaint with ID '%s': %w", complaintID, err)
	}
	return r.GetByID(ctx, complaintID)
}

func patchUpdates(patch models.ComplaintPatch) []firestore.Update {
	updates := []firestore.Update{{Path: "updatedAt", Value: patch.UpdatedAt}}
	add := func(path string, value interface{}) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.EnhancedTitle != nil {
		add("enhancedTitle", *patch.EnhancedTitle)
	}
	if patch.EnhancedDescription != nil {
		add("enhancedDescription", *patch.EnhancedDescription)
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Images != nil {
		add("images", *patch.Images)
	}
	if patch.IsPublic != nil {
		add("isPublic", *patch.IsPublic)
	}
	return updates
}

// AddComment appends to the comments array.
func (r *firestoreComplaintRepository) AddComment(ctx context.Context, complaintID string, comment models.Comment) (*models.Complaint, error) {
	docRef := r.client.Collection(complaintsCollection).Doc(complaintID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "comments", Value: firestore.ArrayUnion(comment)},
		{Path: "updatedAt", Value: comment.CreatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to add comment to complaint '%s': %w", complaintID, err)
	}
	return r.GetByID(ctx, complaintID)
}

// Stats scans only the status and priority fields of every complaint.
func (r *firestoreComplaintRepository) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	iter := r.client.Collection(complaintsCollection).Select("status", "priority").Documents(ctx)
	defer iter.Stop()

	stats := &models.ComplaintStats{}
	for {
		doc, err := iter.Next()
		if isIteratorDone(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate complaints for stats: %w", err)
		}
		var row struct {
			Status   models.Status   `firestore:"status"`
			Priority models.Priority `firestore:"priority"`
		}
		if err := doc.DataTo(&row); err != nil {
			return nil, fmt.Errorf("failed to decode complaint '%s' for stats: %w", doc.Ref.ID, err)
		}
		stats.Add(row.Status, row.Priority)
	}
	return stats, nil
}

func decodeComplaint(docSnap *firestore.DocumentSnapshot) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := docSnap.DataTo(&complaint); err != nil {
		return nil, fmt.Errorf("failed to decode complaint data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	complaint.ID = docSnap.Ref.ID
	return &complaint, nil
}
