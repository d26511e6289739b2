package requests

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-events/backend/internal/models"
)

const requestColumns = `id, title, author, organization, email, location, on_campus, max_attendees,
	event_date, start_time, end_time, start_at, end_at, description, publish_all,
	departments, attachments, status, is_visible, feedback, event_id, processed_at,
	created_at, updated_at`

// Repository handles publication request and event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a requests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row pgx.Row) (*models.PublicationRequest, error) {
	var pr models.PublicationRequest
	var departments, attachments []byte
	err := row.Scan(&pr.ID, &pr.Title, &pr.Author, &pr.Organization, &pr.Email, &pr.Location,
		&pr.OnCampus, &pr.MaxAttendees, &pr.EventDate, &pr.StartTime, &pr.EndTime,
		&pr.StartAt, &pr.EndAt, &pr.Description, &pr.PublishAll,
		&departments, &attachments, &pr.Status, &pr.IsVisible, &pr.Feedback,
		&pr.EventID, &pr.ProcessedAt, &pr.CreatedAt, &pr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSONB(departments, &pr.Departments); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	if err := decodeJSONB(attachments, &pr.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	if pr.Departments == nil {
		pr.Departments = []string{}
	}
	if pr.Attachments == nil {
		pr.Attachments = []models.Attachment{}
	}
	return &pr, nil
}

func decodeJSONB(raw []byte, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func encodeJSONB(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// Insert stores a new pending publication request and fills in the generated
// ID and timestamps.
func (r *Repository) Insert(ctx context.Context, pr *models.PublicationRequest) error {
	departments, err := encodeJSONB(pr.Departments)
	if err != nil {
		return fmt.Errorf("encode departments: %w", err)
	}
	attachments, err := encodeJSONB(pr.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	const q = `INSERT INTO publication_requests
		(title, author, organization, email, location, on_campus, max_attendees,
		 event_date, start_time, end_time, start_at, end_at, description, publish_all,
		 departments, attachments, status, is_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		pr.Title, pr.Author, pr.Organization, pr.Email, pr.Location, pr.OnCampus, pr.MaxAttendees,
		pr.EventDate, pr.StartTime, pr.EndTime, pr.StartAt, pr.EndAt, pr.Description, pr.PublishAll,
		departments, attachments, pr.Status, pr.IsVisible).
		Scan(&pr.ID, &pr.CreatedAt, &pr.UpdatedAt)
}

// ListFilter narrows the request listing.
type ListFilter struct {
	Status   models.RequestStatus
	Dept     string
	Q        string
	Page     int
	PageSize int
}

// List returns requests newest-first by event start, plus the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.PublicationRequest, int, error) {
	cond := " WHERE TRUE"
	var args []interface{}
	if f.Status != "" {
		cond += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, f.Status)
	}
	if f.Dept != "" {
		cond += fmt.Sprintf(" AND departments ? $%d", len(args)+1)
		args = append(args, f.Dept)
	}
	if f.Q != "" {
		n := len(args) + 1
		cond += fmt.Sprintf(` AND (title ILIKE $%d OR author ILIKE $%d OR organization ILIKE $%d
			OR email ILIKE $%d OR location ILIKE $%d OR description ILIKE $%d)`, n, n, n, n, n, n)
		args = append(args, "%"+f.Q+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM publication_requests"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := "SELECT " + requestColumns + " FROM publication_requests" + cond +
		fmt.Sprintf(" ORDER BY start_at DESC NULLS LAST, id DESC LIMIT $%d OFFSET $%d",
			len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.PublicationRequest, 0)
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *pr)
	}
	return items, total, rows.Err()
}

// FindAttachment locates an attachment descriptor by its blob file ID across
// all requests, or nil when no request references it.
func (r *Repository) FindAttachment(ctx context.Context, fileID string) (*models.Attachment, error) {
	const q = `SELECT a->>'file_id', a->>'filename', a->>'mime'
		FROM publication_requests, jsonb_array_elements(attachments) a
		WHERE a->>'file_id' = $1 LIMIT 1`
	var att models.Attachment
	err := r.pool.QueryRow(ctx, q, fileID).Scan(&att.FileID, &att.Filename, &att.Mime)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Get returns a request by ID, or nil when absent.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.PublicationRequest, error) {
	pr, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM publication_requests WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return pr, err
}

// UpdateParams is the patch for an existing request. Nil fields are left
// unchanged; Departments and Attachments replace wholesale when non-nil.
type UpdateParams struct {
	Title        *string
	Author       *string
	Organization *string
	Email        *string
	Location     *string
	OnCampus     *bool
	MaxAttendees *int
	EventDate    *string
	StartTime    *string
	EndTime      *string
	StartAt      *time.Time
	EndAt        *time.Time
	Description  *string
	PublishAll   *bool
	Departments  []string
	Attachments  []models.Attachment
}

// Update applies the patch. Returns false when no such request exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (bool, error) {
	var departments, attachments []byte
	var err error
	if p.Departments != nil {
		departments, err = encodeJSONB(p.Departments)
		if err != nil {
			return false, fmt.Errorf("encode departments: %w", err)
		}
	}
	if p.Attachments != nil {
		attachments, err = encodeJSONB(p.Attachments)
		if err != nil {
			return false, fmt.Errorf("encode attachments: %w", err)
		}
	}
	const q = `UPDATE publication_requests SET
		title = COALESCE($2, title),
		author = COALESCE($3, author),
		organization = COALESCE($4, organization),
		email = COALESCE($5, email),
		location = COALESCE($6, location),
		on_campus = COALESCE($7, on_campus),
		max_attendees = COALESCE($8, max_attendees),
		event_date = COALESCE($9, event_date),
		start_time = COALESCE($10, start_time),
		end_time = COALESCE($11, end_time),
		start_at = COALESCE($12, start_at),
		end_at = COALESCE($13, end_at),
		description = COALESCE($14, description),
		publish_all = COALESCE($15, publish_all),
		departments = COALESCE($16, departments),
		attachments = COALESCE($17, attachments),
		updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id,
		p.Title, p.Author, p.Organization, p.Email, p.Location, p.OnCampus, p.MaxAttendees,
		p.EventDate, p.StartTime, p.EndTime, p.StartAt, p.EndAt, p.Description, p.PublishAll,
		departments, attachments)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetStatus moves a request to the given workflow state. Visibility follows
// the state: only approved requests are visible. Feedback replaces the stored
// feedback when non-nil. Returns false when no such request exists.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus, feedback *string) (bool, error) {
	const q = `UPDATE publication_requests SET
		status = $2,
		is_visible = $3,
		feedback = COALESCE($4, feedback),
		updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, status, status == models.StatusApproved, feedback)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a request. Any event promoted from it is removed by the
// foreign key cascade. Returns false when no such request exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM publication_requests WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const eventColumns = `id, source_request_id, title, organization, location, on_campus, max_attendees,
	event_date, start_time, end_time, start_at, end_at, description, publish_all,
	departments, attachments, created_at`

// eventFromRequest copies the published field subset of a request into a new
// event linked back to it.
func eventFromRequest(pr *models.PublicationRequest) *models.Event {
	return &models.Event{
		SourceRequestID: pr.ID,
		Title:           pr.Title,
		Organization:    pr.Organization,
		Location:        pr.Location,
		OnCampus:        pr.OnCampus,
		MaxAttendees:    pr.MaxAttendees,
		EventDate:       pr.EventDate,
		StartTime:       pr.StartTime,
		EndTime:         pr.EndTime,
		StartAt:         pr.StartAt,
		EndAt:           pr.EndAt,
		Description:     pr.Description,
		PublishAll:      pr.PublishAll,
		Departments:     pr.Departments,
		Attachments:     pr.Attachments,
	}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	var departments, attachments []byte
	err := row.Scan(&ev.ID, &ev.SourceRequestID, &ev.Title, &ev.Organization, &ev.Location,
		&ev.OnCampus, &ev.MaxAttendees, &ev.EventDate, &ev.StartTime, &ev.EndTime,
		&ev.StartAt, &ev.EndAt, &ev.Description, &ev.PublishAll,
		&departments, &attachments, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSONB(departments, &ev.Departments); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	if err := decodeJSONB(attachments, &ev.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	if ev.Departments == nil {
		ev.Departments = []string{}
	}
	if ev.Attachments == nil {
		ev.Attachments = []models.Attachment{}
	}
	return &ev, nil
}

// Promote creates the published event for an approved request. The unique
// constraint on source_request_id makes promotion idempotent: a second call
// returns the existing event with created=false. The request's event
// back-reference and processing timestamp are recorded in the same call.
func (r *Repository) Promote(ctx context.Context, pr *models.PublicationRequest) (*models.Event, bool, error) {
	ev := eventFromRequest(pr)
	departments, err := encodeJSONB(ev.Departments)
	if err != nil {
		return nil, false, fmt.Errorf("encode departments: %w", err)
	}
	attachments, err := encodeJSONB(ev.Attachments)
	if err != nil {
		return nil, false, fmt.Errorf("encode attachments: %w", err)
	}

	const insert = `INSERT INTO events
		(source_request_id, title, organization, location, on_campus, max_attendees,
		 event_date, start_time, end_time, start_at, end_at, description, publish_all,
		 departments, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (source_request_id) DO NOTHING
		RETURNING id, created_at`

	created := true
	err = r.pool.QueryRow(ctx, insert,
		ev.SourceRequestID, ev.Title, ev.Organization, ev.Location, ev.OnCampus, ev.MaxAttendees,
		ev.EventDate, ev.StartTime, ev.EndTime, ev.StartAt, ev.EndAt, ev.Description, ev.PublishAll,
		departments, attachments).Scan(&ev.ID, &ev.CreatedAt)
	if err == pgx.ErrNoRows {
		// Already promoted; read the existing event back.
		created = false
		ev, err = scanEvent(r.pool.QueryRow(ctx,
			`SELECT `+eventColumns+` FROM events WHERE source_request_id = $1`, pr.ID))
	}
	if err != nil {
		return nil, false, err
	}

	const backRef = `UPDATE publication_requests SET event_id = $2, processed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND event_id IS DISTINCT FROM $2`
	if _, err := r.pool.Exec(ctx, backRef, pr.ID, ev.ID); err != nil {
		return nil, false, err
	}
	return ev, created, nil
}

// DeleteEvent removes the event promoted from a request and clears the
// request's back-reference. Returns false when no event exists.
func (r *Repository) DeleteEvent(ctx context.Context, requestID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE source_request_id = $1`, requestID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	const clear = `UPDATE publication_requests SET event_id = NULL, processed_at = NULL, updated_at = NOW()
		WHERE id = $1`
	if _, err := r.pool.Exec(ctx, clear, requestID); err != nil {
		return false, err
	}
	return true, nil
}
