package requests

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/pkg/queue"
	"github.com/campus-events/backend/pkg/response"
)

// AttachmentRoute is the public path prefix for attachment downloads.
const AttachmentRoute = "/req/attachments/"

// BlobStore holds attachment binaries keyed by opaque file IDs.
// Implemented by storage.S3.
type BlobStore interface {
	UploadAttachment(ctx context.Context, fileID, contentType string, body io.Reader, contentLength int64) error
	GetAttachmentStream(ctx context.Context, fileID string) (io.ReadCloser, string, error)
	DeleteAttachment(ctx context.Context, fileID string) error
}

// Handler handles the publication request workflow endpoints.
type Handler struct {
	repo   *Repository
	store  BlobStore
	jobs   *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a requests handler.
func NewHandler(repo *Repository, store BlobStore, jobs *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, store: store, jobs: jobs, logger: logger}
}

// submission is the loosely-typed inbound form. Flags and departments arrive
// in several shapes depending on the client, so they are coerced after binding.
type submission struct {
	Title        string      `json:"title"`
	Author       string      `json:"author"`
	Organization string      `json:"organization"`
	Email        string      `json:"email"`
	Location     string      `json:"location"`
	AltLocation  string      `json:"_location"`
	OnCampus     interface{} `json:"on_campus"`
	MaxAttendees interface{} `json:"max_attendees"`
	Date         string      `json:"date"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	Description  string      `json:"description"`
	PublishAll   interface{} `json:"publish_all"`
	Departments  interface{} `json:"departments"`
}

func (s *submission) location() string {
	if s.Location != "" {
		return s.Location
	}
	return s.AltLocation
}

func submissionFromForm(c *gin.Context) submission {
	get := c.PostForm
	return submission{
		Title:        get("title"),
		Author:       get("author"),
		Organization: get("organization"),
		Email:        get("email"),
		Location:     get("location"),
		AltLocation:  get("_location"),
		OnCampus:     get("on_campus"),
		MaxAttendees: get("max_attendees"),
		Date:         get("date"),
		StartTime:    get("start_time"),
		EndTime:      get("end_time"),
		Description:  get("description"),
		PublishAll:   get("publish_all"),
		Departments:  get("departments"),
	}
}

// Submit handles POST /req/pubreq. Accepts either a JSON body or a multipart
// form with file attachments.
func (h *Handler) Submit(c *gin.Context) {
	var sub submission
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			response.BadRequest(c, "invalid form: "+err.Error())
			return
		}
		sub = submissionFromForm(c)
		files = form.File["attachments"]
	} else {
		if err := c.ShouldBindJSON(&sub); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	if sub.Title == "" || sub.Email == "" || sub.Date == "" || sub.StartTime == "" {
		response.BadRequest(c, "Missing fields")
		return
	}

	startAt, endAt, err := ResolveTiming(sub.Date, sub.StartTime, sub.EndTime)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	eventDate, _ := ParseEventDate(sub.Date)
	endTime := strings.TrimSpace(sub.EndTime)
	if endTime == "" {
		endTime = strings.TrimSpace(sub.StartTime)
	}

	attachments, err := h.uploadAttachments(c, files)
	if err != nil {
		h.logger.Error("upload attachments", zap.Error(err))
		response.Internal(c, "failed to store attachments")
		return
	}

	var maxAttendees *int
	if n := ParseInt(sub.MaxAttendees); n > 0 {
		maxAttendees = &n
	}

	pr := &models.PublicationRequest{
		Title:        sub.Title,
		Author:       sub.Author,
		Organization: sub.Organization,
		Email:        sub.Email,
		Location:     sub.location(),
		OnCampus:     ParseBool(sub.OnCampus),
		MaxAttendees: maxAttendees,
		EventDate:    eventDate,
		StartTime:    strings.TrimSpace(sub.StartTime),
		EndTime:      endTime,
		StartAt:      &startAt,
		EndAt:        &endAt,
		Description:  sub.Description,
		PublishAll:   ParseBool(sub.PublishAll),
		Departments:  NormalizeDepartments(sub.Departments),
		Attachments:  attachments,
		Status:       models.StatusPending,
		IsVisible:    false,
	}
	if err := h.repo.Insert(c.Request.Context(), pr); err != nil {
		h.logger.Error("insert request", zap.Error(err))
		response.Internal(c, "failed to store request")
		return
	}
	response.Created(c, gin.H{"id": pr.ID, "status": pr.Status})
}

func (h *Handler) uploadAttachments(c *gin.Context, files []*multipart.FileHeader) ([]models.Attachment, error) {
	attachments := make([]models.Attachment, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		fileID := uuid.New().String()
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		err = h.store.UploadAttachment(c.Request.Context(), fileID, contentType, f, fh.Size)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", fh.Filename, err)
		}
		attachments = append(attachments, models.Attachment{
			FileID:   fileID,
			Filename: fh.Filename,
			Mime:     contentType,
		})
	}
	return attachments, nil
}

// Fetch handles GET /req/pubreqfetch. Attachment download URLs are filled in
// on the way out.
func (h *Handler) Fetch(c *gin.Context) {
	page, size := normalizePaging(c.Query("page"), c.Query("page_size"))
	f := ListFilter{
		Dept:     strings.TrimSpace(c.Query("dept")),
		Q:        strings.TrimSpace(c.Query("q")),
		Page:     page,
		PageSize: size,
	}
	if s := models.RequestStatus(strings.ToLower(c.Query("status"))); s != "" && s != "all" {
		if !ValidStatusFilter(s) {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		if s == "denied" {
			s = models.StatusRejected
		}
		f.Status = s
	}

	items, total, err := h.repo.List(c.Request.Context(), f)
	if err != nil {
		h.logger.Error("list requests", zap.Error(err))
		response.Internal(c, "failed to list requests")
		return
	}
	for i := range items {
		for j := range items[i].Attachments {
			items[i].Attachments[j].URL = AttachmentRoute + items[i].Attachments[j].FileID
		}
	}
	response.OK(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

// ValidStatusFilter reports whether s is usable as a listing filter. The
// "denied" alias is accepted alongside the canonical states.
func ValidStatusFilter(s models.RequestStatus) bool {
	return models.ValidStatus(s) || s == "denied"
}

// Attachment handles GET /req/attachments/:id, streaming the blob back with
// its original filename and content type.
func (h *Handler) Attachment(c *gin.Context) {
	fileID := c.Param("id")
	if _, err := uuid.Parse(fileID); err != nil {
		response.BadRequest(c, "Invalid attachment id")
		return
	}
	desc, err := h.repo.FindAttachment(c.Request.Context(), fileID)
	if err != nil {
		response.Internal(c, "failed to look up attachment")
		return
	}
	if desc == nil {
		response.NotFound(c, "Attachment not found")
		return
	}

	body, contentType, err := h.store.GetAttachmentStream(c.Request.Context(), fileID)
	if err != nil {
		response.NotFound(c, "Attachment not found")
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = desc.Mime
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if desc.Filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", desc.Filename))
	}
	c.Status(200)
	if _, err := io.Copy(c.Writer, body); err != nil {
		h.logger.Warn("stream attachment", zap.String("file_id", fileID), zap.Error(err))
	}
}

// ChangeStatusRequest is the body for POST /req/pubreqchangestatus.
type ChangeStatusRequest struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Feedback *string `json:"feedback"`
}

// ChangeStatus handles POST /req/pubreqchangestatus. The "denied" alias maps
// to rejected. When feedback accompanies an approval or rejection, a
// notification email job is enqueued for the submitter.
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}

	status := models.RequestStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "denied" {
		status = models.StatusRejected
	}
	if !models.ValidStatus(status) {
		response.BadRequest(c, "Invalid status")
		return
	}

	pr, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load request")
		return
	}
	if pr == nil {
		response.NotFound(c, "Request not found")
		return
	}

	updated, err := h.repo.SetStatus(c.Request.Context(), id, status, req.Feedback)
	if err != nil {
		h.logger.Error("set status", zap.Error(err))
		response.Internal(c, "failed to update status")
		return
	}
	if !updated {
		response.NotFound(c, "Request not found")
		return
	}

	if status != models.StatusPending && pr.Email != "" {
		h.notifyStatus(c, pr, status, req.Feedback)
	}

	response.OK(c, gin.H{
		"id":         id,
		"status":     status,
		"is_visible": status == models.StatusApproved,
	})
}

func (h *Handler) notifyStatus(c *gin.Context, pr *models.PublicationRequest, status models.RequestStatus, feedback *string) {
	verdict := "approved"
	if status == models.StatusRejected {
		verdict = "rejected"
	}
	body := fmt.Sprintf("Hello %s,\n\nYour event request %q has been %s.", pr.Author, pr.Title, verdict)
	if feedback != nil && *feedback != "" {
		body += "\n\nReviewer feedback:\n" + *feedback
	}
	body += "\n\nCampus Events"

	err := h.jobs.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		RequestID:      pr.ID,
		RecipientEmail: pr.Email,
		Subject:        fmt.Sprintf("Your event request has been %s", verdict),
		Body:           body,
	})
	if err != nil {
		// Notification failure never blocks the status change.
		h.logger.Warn("enqueue status email", zap.String("request_id", pr.ID.String()), zap.Error(err))
	}
}

// UpdateRequest is the body for POST /req/pubrequpdate.
type UpdateRequest struct {
	ID           string      `json:"id"`
	Title        *string     `json:"title"`
	Author       *string     `json:"author"`
	Organization *string     `json:"organization"`
	Email        *string     `json:"email"`
	Location     *string     `json:"location"`
	OnCampus     interface{} `json:"on_campus"`
	MaxAttendees interface{} `json:"max_attendees"`
	Date         *string     `json:"date"`
	StartTime    *string     `json:"start_time"`
	EndTime      *string     `json:"end_time"`
	Description  *string     `json:"description"`
	PublishAll   interface{} `json:"publish_all"`
	Departments  interface{} `json:"departments"`
}

// Update handles POST /req/pubrequpdate. When any timing field changes, the
// UTC instants are recomputed from the merged values.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}

	pr, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load request")
		return
	}
	if pr == nil {
		response.NotFound(c, "Request not found")
		return
	}

	p := UpdateParams{
		Title:        req.Title,
		Author:       req.Author,
		Organization: req.Organization,
		Email:        req.Email,
		Location:     req.Location,
		Description:  req.Description,
	}
	if req.OnCampus != nil {
		b := ParseBool(req.OnCampus)
		p.OnCampus = &b
	}
	if req.PublishAll != nil {
		b := ParseBool(req.PublishAll)
		p.PublishAll = &b
	}
	if req.MaxAttendees != nil {
		n := ParseInt(req.MaxAttendees)
		p.MaxAttendees = &n
	}
	if req.Departments != nil {
		p.Departments = NormalizeDepartments(req.Departments)
	}

	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		date := pr.EventDate
		if req.Date != nil {
			date = *req.Date
		}
		startTime := pr.StartTime
		if req.StartTime != nil {
			startTime = *req.StartTime
		}
		endTime := pr.EndTime
		if req.EndTime != nil {
			endTime = *req.EndTime
		}
		startAt, endAt, err := ResolveTiming(date, startTime, endTime)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		day, _ := ParseEventDate(date)
		if strings.TrimSpace(endTime) == "" {
			endTime = strings.TrimSpace(startTime)
		}
		p.EventDate = &day
		p.StartTime = &startTime
		p.EndTime = &endTime
		p.StartAt = &startAt
		p.EndAt = &endAt
	}

	updated, err := h.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		h.logger.Error("update request", zap.Error(err))
		response.Internal(c, "failed to update request")
		return
	}
	if !updated {
		response.NotFound(c, "Request not found")
		return
	}

	fresh, err := h.repo.Get(c.Request.Context(), id)
	if err != nil || fresh == nil {
		response.Internal(c, "failed to load updated request")
		return
	}
	for j := range fresh.Attachments {
		fresh.Attachments[j].URL = AttachmentRoute + fresh.Attachments[j].FileID
	}
	response.OK(c, fresh)
}

// DeleteRequest is the body for POST /req/pubreqdelete and /req/eventdelete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// Delete handles POST /req/pubreqdelete. Stored attachment blobs are removed
// best-effort before the row; blob deletion failures are logged, not surfaced.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}

	pr, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load request")
		return
	}
	if pr == nil {
		response.NotFound(c, "Request not found")
		return
	}

	deleteBlobs(c.Request.Context(), h.store, h.logger, pr.Attachments)

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete request", zap.Error(err))
		response.Internal(c, "failed to delete request")
		return
	}
	if !deleted {
		response.NotFound(c, "Request not found")
		return
	}
	response.OK(c, gin.H{"id": id, "message": "Request deleted"})
}

// deleteBlobs removes attachment binaries best-effort: every blob is attempted
// and failures are logged, never surfaced, so cleanup cannot block the delete.
func deleteBlobs(ctx context.Context, store BlobStore, logger *zap.Logger, attachments []models.Attachment) {
	for _, a := range attachments {
		if err := store.DeleteAttachment(ctx, a.FileID); err != nil {
			logger.Warn("delete attachment blob", zap.String("file_id", a.FileID), zap.Error(err))
		}
	}
}

// CreateEvent handles POST /req/eventcreate, promoting an approved request to
// a published event. Promotion is idempotent per source request.
func (h *Handler) CreateEvent(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}

	pr, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load request")
		return
	}
	if pr == nil {
		response.NotFound(c, "Request not found")
		return
	}
	if pr.Status != models.StatusApproved {
		response.Conflict(c, "Request must be approved first")
		return
	}

	// Re-derive the instants from the raw submitted strings so the event
	// carries current timezone rules even for long-pending requests.
	startAt, endAt, err := ResolveTiming(pr.EventDate, pr.StartTime, pr.EndTime)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pr.StartAt = &startAt
	pr.EndAt = &endAt

	event, created, err := h.repo.Promote(c.Request.Context(), pr)
	if err != nil {
		h.logger.Error("promote request", zap.String("request_id", id.String()), zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.OK(c, gin.H{
		"event_id": event.ID,
		"created":  created,
		"event":    event,
	})
}

// DeleteEvent handles POST /req/eventdelete, removing the event promoted from
// a request.
func (h *Handler) DeleteEvent(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "Invalid request id")
		return
	}

	deleted, err := h.repo.DeleteEvent(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete event", zap.Error(err))
		response.Internal(c, "failed to delete event")
		return
	}
	if !deleted {
		response.NotFound(c, "Event not found")
		return
	}
	response.OK(c, gin.H{"id": id, "message": "Event deleted"})
}
