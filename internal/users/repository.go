package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/internal/roles"
)

// stafflikeTypes are legacy stored values that normalize to staff.
var stafflikeTypes = []string{"staff", "publisher", "user"}

// Repository handles admin-side user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Q        string
	Role     string // normalized: admin | staff | student | ""
	Active   *bool
	Page     int
	PageSize int
}

func buildFilter(f ListFilter) (string, []interface{}) {
	cond := " WHERE TRUE"
	var args []interface{}
	n := func() int { return len(args) + 1 }

	switch f.Role {
	case roles.Admin:
		cond += fmt.Sprintf(" AND type = $%d", n())
		args = append(args, "admin")
	case roles.Staff:
		cond += fmt.Sprintf(" AND type = ANY($%d)", n())
		args = append(args, stafflikeTypes)
	case roles.Student:
		cond += fmt.Sprintf(" AND type = $%d", n())
		args = append(args, "student")
	}

	if f.Active != nil {
		cond += fmt.Sprintf(" AND active = $%d", n())
		args = append(args, *f.Active)
	}

	if f.Q != "" {
		pattern := "%" + f.Q + "%"
		cond += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d OR department ILIKE $%d)", n(), n(), n())
		args = append(args, pattern)
	}
	return cond, args
}

func toItem(id uuid.UUID, username, email, userType string, department *string, active bool, allergy *string) models.UserItem {
	dept := "—"
	if department != nil && *department != "" {
		dept = *department
	}
	allergyVal := "none"
	if allergy != nil && *allergy != "" {
		allergyVal = *allergy
	}
	return models.UserItem{
		ID:      id,
		Name:    username,
		Email:   email,
		Role:    roles.Normalize(userType),
		Dept:    dept,
		Active:  active,
		Allergy: allergyVal,
	}
}

// List returns the filtered, paginated user listing plus the total match count.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.UserItem, int, error) {
	cond, args := buildFilter(f)

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := "SELECT id, username, email, type, department, active, allergy FROM users" + cond +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]models.UserItem, 0)
	for rows.Next() {
		var (
			id                  uuid.UUID
			username, email, ut string
			department, allergy *string
			active              bool
		)
		if err := rows.Scan(&id, &username, &email, &ut, &department, &active, &allergy); err != nil {
			return nil, 0, err
		}
		items = append(items, toItem(id, username, email, ut, department, active, allergy))
	}
	return items, total, rows.Err()
}

// GetItem returns the listing projection for one user, or nil when absent.
func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*models.UserItem, error) {
	var (
		username, email, ut string
		department, allergy *string
		active              bool
	)
	err := r.pool.QueryRow(ctx,
		`SELECT username, email, type, department, active, allergy FROM users WHERE id = $1`, id).
		Scan(&username, &email, &ut, &department, &active, &allergy)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item := toItem(id, username, email, ut, department, active, allergy)
	return &item, nil
}

// EmailExists reports whether an account with the email exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateParams are the fields for an admin-created account.
type CreateParams struct {
	Username     string
	Email        string
	Type         string
	Department   *string
	Active       bool
	Allergy      *string
	PasswordHash string
}

// Create inserts an admin-created account. The account must change its
// password at first login.
func (r *Repository) Create(ctx context.Context, p CreateParams) (uuid.UUID, error) {
	const q = `INSERT INTO users (username, email, password_hash, type, department, active, must_change_password, allergy, signups)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, '[]')
		RETURNING id`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, q, p.Username, p.Email, p.PasswordHash, p.Type, p.Department, p.Active, p.Allergy).Scan(&id)
	return id, err
}

// UpdateParams is the admin patch for a user; nil fields are left unchanged.
type UpdateParams struct {
	Username     *string
	Email        *string
	Type         *string
	Department   *string
	Active       *bool
	Allergy      *string
	PasswordHash *string
}

// Empty reports whether the patch has no fields set.
func (p UpdateParams) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Type == nil && p.Department == nil &&
		p.Active == nil && p.Allergy == nil && p.PasswordHash == nil
}

// Update applies the patch by ID. Returns false when no such user exists.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (bool, error) {
	const q = `UPDATE users SET
		username = COALESCE($2, username),
		email = COALESCE($3, email),
		type = COALESCE($4, type),
		department = COALESCE($5, department),
		active = COALESCE($6, active),
		allergy = COALESCE($7, allergy),
		password_hash = COALESCE($8, password_hash),
		updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, p.Username, p.Email, p.Type, p.Department, p.Active, p.Allergy, p.PasswordHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a user by ID. Returns false when no such user exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
