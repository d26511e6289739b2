package requests

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/models"
)

func TestValidStatusFilter(t *testing.T) {
	for _, s := range []models.RequestStatus{"pending", "approved", "rejected", "denied"} {
		assert.True(t, ValidStatusFilter(s), string(s))
	}
	for _, s := range []models.RequestStatus{"archived", "open", "x"} {
		assert.False(t, ValidStatusFilter(s), string(s))
	}
}

func TestSubmissionLocationAlias(t *testing.T) {
	s := submission{AltLocation: "Main hall"}
	assert.Equal(t, "Main hall", s.location())

	s.Location = "Aula"
	assert.Equal(t, "Aula", s.location())
}

type fakeBlobStore struct {
	deleted []string
	failOn  string
}

func (f *fakeBlobStore) UploadAttachment(ctx context.Context, fileID, contentType string, body io.Reader, contentLength int64) error {
	return nil
}

func (f *fakeBlobStore) GetAttachmentStream(ctx context.Context, fileID string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("not found")
}

func (f *fakeBlobStore) DeleteAttachment(ctx context.Context, fileID string) error {
	if fileID == f.failOn {
		return errors.New("store unavailable")
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func TestDeleteBlobsBestEffort(t *testing.T) {
	store := &fakeBlobStore{failOn: "b"}
	attachments := []models.Attachment{
		{FileID: "a", Filename: "a.pdf"},
		{FileID: "b", Filename: "b.pdf"},
		{FileID: "c", Filename: "c.pdf"},
	}

	// A failing blob never stops the remaining deletions.
	deleteBlobs(context.Background(), store, zap.NewNop(), attachments)
	assert.Equal(t, []string{"a", "c"}, store.deleted)
}

func TestDeleteBlobsAllRemoved(t *testing.T) {
	store := &fakeBlobStore{}
	attachments := []models.Attachment{{FileID: "x"}, {FileID: "y"}}
	deleteBlobs(context.Background(), store, zap.NewNop(), attachments)
	assert.Equal(t, []string{"x", "y"}, store.deleted)
}

func TestEventFromRequest(t *testing.T) {
	max := 120
	pr := &models.PublicationRequest{
		ID:           uuid.New(),
		Title:        "Career fair",
		Organization: "IT section",
		Location:     "Main hall",
		OnCampus:     true,
		MaxAttendees: &max,
		EventDate:    "2025-10-23",
		StartTime:    "12:00",
		EndTime:      "14:00",
		Description:  "desc",
		PublishAll:   true,
		Departments:  []string{"IT", "HR"},
		Attachments:  []models.Attachment{{FileID: "f1", Filename: "poster.png"}},
		Status:       models.StatusApproved,
	}

	ev := eventFromRequest(pr)
	assert.Equal(t, pr.ID, ev.SourceRequestID)
	assert.Equal(t, uuid.Nil, ev.ID)
	assert.Equal(t, pr.Title, ev.Title)
	assert.Equal(t, pr.Organization, ev.Organization)
	assert.Equal(t, pr.MaxAttendees, ev.MaxAttendees)
	assert.Equal(t, pr.Departments, ev.Departments)
	assert.Equal(t, pr.Attachments, ev.Attachments)
	assert.Equal(t, pr.EventDate, ev.EventDate)
}
