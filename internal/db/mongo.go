package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"civiguard-backend-go/internal/models"
)

type mongoStore struct {
	client     *mongo.Client
	users      UserRepository
	complaints ComplaintRepository
	audit      AuditRepository
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string) (Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	mdb := client.Database(database)
	if err := ensureMongoIndexes(ctx, mdb); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &mongoStore{
		client:     client,
		users:      &mongoUserRepository{coll: mdb.Collection(usersCollection)},
		complaints: &mongoComplaintRepository{coll: mdb.Collection(complaintsCollection)},
		audit:      &mongoAuditRepository{coll: mdb.Collection(auditLogsCollection)},
	}, nil
}

func ensureMongoIndexes(ctx context.Context, mdb *mongo.Database) error {
	_, err := mdb.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "googleId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.googleId index: %w", err)
	}
	_, err = mdb.Collection(complaintsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create complaints indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) Users() UserRepository           { return s.users }
func (s *mongoStore) Complaints() ComplaintRepository { return s.complaints }
func (s *mongoStore) AuditLogs() AuditRepository      { return s.audit }

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func newMongoID() string {
	return primitive.NewObjectID().Hex()
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func (r *mongoUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByIDs(ctx context.Context, userIDs []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find %d users: %w", len(userIDs), err)
	}
	var found []*models.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

// UpsertByGoogleID relies on the unique googleId index: $setOnInsert only writes
// on the first login, and a lost insert race is resolved by reading the winner.
func (r *mongoUserRepository) UpsertByGoogleID(ctx context.Context, profile *models.User) (*models.User, bool, error) {
	newID := newMongoID()
	filter := bson.M{"googleId": profile.GoogleID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       newID,
		"googleId":  profile.GoogleID,
		"email":     profile.Email,
		"name":      profile.Name,
		"avatar":    profile.Avatar,
		"role":      profile.Role,
		"createdAt": profile.CreatedAt,
		"updatedAt": profile.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOne(ctx, filter).Decode(&user)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user with googleId '%s': %w", profile.GoogleID, err)
	}
	return &user, user.ID == newID, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"email":     user.Email,
		"name":      user.Name,
		"avatar":    user.Avatar,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user with ID '%s' not found: %w", user.ID, ErrNotFound)
	}
	return nil
}

type mongoComplaintRepository struct {
	coll *mongo.Collection
}

func (r *mongoComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) (string, error) {
	complaint.ID = newMongoID()
	if _, err := r.coll.InsertOne(ctx, complaint); err != nil {
		return "", fmt.Errorf("failed to create complaint: %w", err)
	}
	return complaint.ID, nil
}

func (r *mongoComplaintRepository) GetByID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.coll.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint with ID '%s': %w", complaintID, err)
	}
	return &complaint, nil
}

func mongoComplaintFilter(filter ComplaintFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != "" {
		query["userId"] = filter.OwnerID
	}
	if filter.PublicOnly {
		query["isPublic"] = true
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.CreatedAfter.IsZero() {
		query["createdAt"] = bson.M{"$gte": filter.CreatedAfter}
	}
	if b := filter.Bounds; b != nil {
		query["location.lat"] = bson.M{"$gte": b.South, "$lte": b.North}
		query["location.lng"] = bson.M{"$gte": b.West, "$lte": b.East}
	}
	return query
}

func (r *mongoComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(filter.EffectiveLimit()))

	cursor, err := r.coll.Find(ctx, mongoComplaintFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	complaints := make([]*models.Complaint, 0)
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, fmt.Errorf("failed to decode complaints: %w", err)
	}
	return complaints, nil
}

func mongoPatchSet(patch models.ComplaintPatch) bson.M {
	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.EnhancedTitle != nil {
		set["enhancedTitle"] = *patch.EnhancedTitle
	}
	if patch.EnhancedDescription != nil {
		set["enhancedDescription"] = *patch.EnhancedDescription
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}
	if patch.IsPublic != nil {
		set["isPublic"] = *patch.IsPublic
	}
	return set
}

func (r *mongoComplaintRepository) findOneAndUpdate(ctx context.Context, complaintID string, update bson.M) (*models.Complaint, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var complaint models.Complaint
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": complaintID}, update, opts).Decode(&complaint)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("complaint with ID '%s' not found: %w", complaintID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update complaint with ID '%s': %w", complaintID, err)
	}
	return &complaint, nil
}

func (r *mongoComplaintRepository) Update(ctx context.Context, complaintID string, patch models.ComplaintPatch) (*models.Complaint, error) {
	return r.findOneAndUpdate(ctx, complaintID, bson.M{"$set": mongoPatchSet(patch)})
}

func (r *mongoComplaintRepository) AddComment(ctx context.Context, complaintID string, comment models.Comment) (*models.Complaint, error) {
	return r.findOneAndUpdate(ctx, complaintID, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updatedAt": comment.CreatedAt},
	})
}

func (r *mongoComplaintRepository) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	count := func(filter bson.M) (int, error) {
		n, err := r.coll.CountDocuments(ctx, filter)
		return int(n), err
	}

	stats := &models.ComplaintStats{}
	var err error
	if stats.Total, err = count(bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}
	for _, target := range []struct {
		dst    *int
		filter bson.M
	}{
		{&stats.Pending, bson.M{"status": models.StatusPending}},
		{&stats.InProgress, bson.M{"status": models.StatusInProgress}},
		{&stats.Resolved, bson.M{"status": models.StatusResolved}},
		{&stats.Critical, bson.M{"priority": models.PriorityCritical}},
	} {
		if *target.dst, err = count(target.filter); err != nil {
			return nil, fmt.Errorf("failed to count complaints: %w", err)
		}
	}
	return stats, nil
}

type mongoAuditRepository struct {
	coll *mongo.Collection
}

func (r *mongoAuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	logEntry.ID = newMongoID()
	if _, err := r.coll.InsertOne(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
