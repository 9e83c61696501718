package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/mailer"
	"civiguard-backend-go/internal/models"
)

type adminFixture struct {
	officers   *MockOfficerRepository
	complaints *MockComplaintRepository
	enhancer   *MockEnhancementService
	mailer     *MockMailer
	audit      *MockAuditService
}

func newAdminFixture() *adminFixture {
	return &adminFixture{
		officers:   new(MockOfficerRepository),
		complaints: new(MockComplaintRepository),
		enhancer:   new(MockEnhancementService),
		mailer:     new(MockMailer),
		audit:      new(MockAuditService),
	}
}

func (f *adminFixture) service(withMailer bool) AdminService {
	var m mailer.Mailer
	if withMailer {
		m = f.mailer
	}
	return NewAdminService(f.officers, f.complaints, f.enhancer, m, f.audit, zap.NewNop())
}

func TestAdminServiceListOfficers(t *testing.T) {
	f := newAdminFixture()
	officers := []models.Officer{{Department: "Roads", Name: "K. Rao", Email: "roads@example.gov"}}
	f.officers.On("List", mock.Anything).Return(officers, nil).Once()
	f.officers.On("List", mock.Anything).Return(nil, errors.New("csv missing")).Once()

	got, err := f.service(false).ListOfficers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, officers, got)

	_, err = f.service(false).ListOfficers(context.Background())
	assert.ErrorContains(t, err, "csv missing")
}

func TestAdminServiceDraftEmail(t *testing.T) {
	f := newAdminFixture()
	stored := &models.Complaint{ID: "c1", Title: "Pothole", Description: "Deep"}
	f.complaints.On("GetByID", mock.Anything, "c1").Return(stored, nil)
	f.complaints.On("GetByID", mock.Anything, "missing").Return(nil, db.ErrNotFound)
	f.enhancer.On("DraftNotificationEmail", mock.Anything, stored, "roads@example.gov").
		Return(models.EmailDraft{Recipient: "roads@example.gov", Subject: "Formal Complaint: Pothole", Body: "letter"})
	f.enhancer.On("DraftNotificationEmail", mock.Anything, &models.Complaint{Title: "Dark street", Description: "No lights"}, "roads@example.gov").
		Return(models.EmailDraft{Recipient: "roads@example.gov", Subject: "Formal Complaint: Dark street", Body: "letter 2"})
	s := f.service(false)

	draft, err := s.DraftEmail(context.Background(), models.EmailDraftRequest{ComplaintID: "c1", RecipientEmail: "roads@example.gov"})
	require.NoError(t, err)
	assert.Equal(t, "letter", draft.Body)

	draft, err = s.DraftEmail(context.Background(), models.EmailDraftRequest{Title: " Dark street ", Description: "No lights", RecipientEmail: "roads@example.gov"})
	require.NoError(t, err)
	assert.Equal(t, "letter 2", draft.Body)

	_, err = s.DraftEmail(context.Background(), models.EmailDraftRequest{ComplaintID: "missing", RecipientEmail: "roads@example.gov"})
	assert.ErrorIs(t, err, ErrComplaintNotFound)

	for field, req := range map[string]models.EmailDraftRequest{
		"recipientEmail": {Title: "t", Description: "d", RecipientEmail: "not-an-email"},
		"title":          {Description: "d", RecipientEmail: "a@example.com"},
		"description":    {Title: "t", RecipientEmail: "a@example.com"},
	} {
		_, err := s.DraftEmail(context.Background(), req)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, field)
		assert.Equal(t, field, vErr.Field)
	}
}

func TestAdminServiceSendEmail(t *testing.T) {
	req := models.SendEmailRequest{RecipientEmail: "roads@example.gov", Subject: "Formal Complaint: Pothole", Body: "letter", ComplaintID: "c1"}

	t.Run("disabled", func(t *testing.T) {
		f := newAdminFixture()
		err := f.service(false).SendEmail(context.Background(), admin, req)
		assert.ErrorIs(t, err, ErrMailerDisabled)
	})

	t.Run("sent and audited", func(t *testing.T) {
		f := newAdminFixture()
		f.mailer.On("Send", mock.Anything, mailer.Message{To: "roads@example.gov", Subject: "Formal Complaint: Pothole", Body: "letter"}).Return(nil)
		f.audit.On("CreateAuditLog", mock.Anything, mock.MatchedBy(func(l models.AuditLog) bool {
			return l.Action == models.AuditEmailSent && l.TargetID == "c1" && l.UserID == admin.ID
		})).Return(nil)

		require.NoError(t, f.service(true).SendEmail(context.Background(), admin, req))
		f.mailer.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})

	t.Run("relay failure", func(t *testing.T) {
		f := newAdminFixture()
		f.mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay down"))

		err := f.service(true).SendEmail(context.Background(), admin, req)
		assert.ErrorContains(t, err, "relay down")
		f.audit.AssertNotCalled(t, "CreateAuditLog", mock.Anything, mock.Anything)
	})

	t.Run("invalid", func(t *testing.T) {
		f := newAdminFixture()
		err := f.service(true).SendEmail(context.Background(), admin, models.SendEmailRequest{RecipientEmail: "roads@example.gov", Body: "x"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "subject", vErr.Field)
	})
}

func TestAuditServiceStampsTimestamp(t *testing.T) {
	repo := &recordingAuditRepo{}
	require.NoError(t, NewAuditService(repo).CreateAuditLog(context.Background(), models.AuditLog{Action: models.AuditComplaintCreated}))
	require.Len(t, repo.entries, 1)
	assert.False(t, repo.entries[0].Timestamp.IsZero())
}

func TestAuditServiceRecordsClientInfo(t *testing.T) {
	repo := &recordingAuditRepo{}
	ctx := WithClientInfo(context.Background(), ClientInfo{IPAddress: "203.0.113.7", UserAgent: "civiguard-web/1.0"})
	service := NewAuditService(repo)

	require.NoError(t, service.CreateAuditLog(ctx, models.AuditLog{Action: models.AuditComplaintCreated}))
	require.NoError(t, service.CreateAuditLog(ctx, models.AuditLog{Action: models.AuditEmailSent, IPAddress: "198.51.100.1"}))
	require.NoError(t, service.CreateAuditLog(context.Background(), models.AuditLog{Action: models.AuditComplaintUpdated}))

	require.Len(t, repo.entries, 3)
	assert.Equal(t, "203.0.113.7", repo.entries[0].IPAddress)
	assert.Equal(t, "civiguard-web/1.0", repo.entries[0].UserAgent)
	assert.Equal(t, "198.51.100.1", repo.entries[1].IPAddress, "explicit values win")
	assert.Equal(t, "civiguard-web/1.0", repo.entries[1].UserAgent)
	assert.Empty(t, repo.entries[2].IPAddress)
	assert.Empty(t, repo.entries[2].UserAgent)
}

type recordingAuditRepo struct {
	entries []models.AuditLog
}

func (r *recordingAuditRepo) Create(_ context.Context, entry models.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}
