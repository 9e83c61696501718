package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"civiguard-backend-go/internal/models"
)

func TestMongoComplaintFilter(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := mongoComplaintFilter(ComplaintFilter{
		OwnerID:      "u1",
		PublicOnly:   true,
		Status:       models.StatusResolved,
		CreatedAfter: since,
	})

	assert.Equal(t, bson.M{
		"userId":    "u1",
		"isPublic":  true,
		"status":    models.StatusResolved,
		"createdAt": bson.M{"$gte": since},
	}, got)
	assert.Empty(t, mongoComplaintFilter(ComplaintFilter{}))
}

func TestMongoComplaintFilterBounds(t *testing.T) {
	box := models.BoundingBox{South: 17.2, West: 78.3, North: 17.6, East: 78.6}
	got := mongoComplaintFilter(ComplaintFilter{PublicOnly: true, Bounds: &box})

	assert.Equal(t, bson.M{
		"isPublic":     true,
		"location.lat": bson.M{"$gte": 17.2, "$lte": 17.6},
		"location.lng": bson.M{"$gte": 78.3, "$lte": 78.6},
	}, got)
}

func TestPatchTranslations(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	status := models.StatusInProgress
	public := true
	patch := models.ComplaintPatch{Status: &status, IsPublic: &public, UpdatedAt: now}

	assert.Equal(t, bson.M{"status": status, "isPublic": true, "updatedAt": now}, mongoPatchSet(patch))

	updates := patchUpdates(patch)
	paths := make(map[string]interface{}, len(updates))
	for _, u := range updates {
		paths[u.Path] = u.Value
	}
	assert.Equal(t, map[string]interface{}{"updatedAt": now, "status": "in-progress", "isPublic": true}, paths)
}
