package core

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/events"
	"civiguard-backend-go/internal/genai"
	"civiguard-backend-go/internal/mailer"
	"civiguard-backend-go/internal/models"
)

type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) (string, error) {
	args := m.Called(ctx, complaint)
	return args.String(0), args.Error(1)
}

func (m *MockComplaintRepository) GetByID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	args := m.Called(ctx, complaintID)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockComplaintRepository) List(ctx context.Context, filter db.ComplaintFilter) ([]*models.Complaint, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]*models.Complaint)
	return list, args.Error(1)
}

func (m *MockComplaintRepository) Update(ctx context.Context, complaintID string, patch models.ComplaintPatch) (*models.Complaint, error) {
	args := m.Called(ctx, complaintID, patch)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockComplaintRepository) AddComment(ctx context.Context, complaintID string, comment models.Comment) (*models.Complaint, error) {
	args := m.Called(ctx, complaintID, comment)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *MockComplaintRepository) Stats(ctx context.Context) (*models.ComplaintStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*models.ComplaintStats)
	return stats, args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, userIDs []string) (map[string]*models.User, error) {
	args := m.Called(ctx, userIDs)
	users, _ := args.Get(0).(map[string]*models.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpsertByGoogleID(ctx context.Context, profile *models.User) (*models.User, bool, error) {
	args := m.Called(ctx, profile)
	u, _ := args.Get(0).(*models.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	args := m.Called(ctx, logEntry)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.ComplaintEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockEnhancementService struct {
	mock.Mock
}

func (m *MockEnhancementService) Enhance(ctx context.Context, text string, kind TextKind) string {
	return m.Called(ctx, text, kind).String(0)
}

func (m *MockEnhancementService) EnhanceComplaintText(ctx context.Context, title, description string) models.EnhancedText {
	return m.Called(ctx, title, description).Get(0).(models.EnhancedText)
}

func (m *MockEnhancementService) Analyze(ctx context.Context, title, description string) models.ComplaintAnalysis {
	return m.Called(ctx, title, description).Get(0).(models.ComplaintAnalysis)
}

func (m *MockEnhancementService) ValidateComplaint(ctx context.Context, title, description string) models.ComplaintValidation {
	return m.Called(ctx, title, description).Get(0).(models.ComplaintValidation)
}

func (m *MockEnhancementService) Geocode(ctx context.Context, address string) models.GeocodeResult {
	return m.Called(ctx, address).Get(0).(models.GeocodeResult)
}

func (m *MockEnhancementService) DraftNotificationEmail(ctx context.Context, complaint *models.Complaint, recipient string) models.EmailDraft {
	return m.Called(ctx, complaint, recipient).Get(0).(models.EmailDraft)
}

type MockOfficerRepository struct {
	mock.Mock
}

func (m *MockOfficerRepository) List(ctx context.Context) ([]models.Officer, error) {
	args := m.Called(ctx)
	officers, _ := args.Get(0).([]models.Officer)
	return officers, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// fakeGenerator answers from a function and records every request.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []genai.Request
	respond  func(ctx context.Context, req genai.Request) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req genai.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(ctx, req)
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
