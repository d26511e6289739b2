package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-events/backend/internal/models"
)

const userColumns = `id, username, email, password_hash, type, department, active, must_change_password, allergy, signups, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var signups []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Type, &u.Department,
		&u.Active, &u.MustChangePassword, &u.Allergy, &signups, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(signups) > 0 {
		if err := json.Unmarshal(signups, &u.Signups); err != nil {
			return nil, fmt.Errorf("decode signups: %w", err)
		}
	}
	return &u, nil
}

// GetByID returns a user by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByUsername returns a user by username, or nil when absent.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetByEmail returns a user by email, or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// Exists reports whether a user with the given username or email exists.
func (r *Repository) Exists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2`, username, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new user and fills in the generated ID and timestamps.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	signups := u.Signups
	if signups == nil {
		signups = []models.Signup{}
	}
	raw, err := json.Marshal(signups)
	if err != nil {
		return fmt.Errorf("encode signups: %w", err)
	}
	const q = `INSERT INTO users (username, email, password_hash, type, department, active, must_change_password, allergy, signups)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, u.Type, u.Department,
		u.Active, u.MustChangePassword, u.Allergy, raw).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// UpdatePassword replaces the credential hash and clears the must-change flag.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $1, must_change_password = FALSE, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, passwordHash, id)
	return err
}

// AddSignup appends an event signup unless an identical one is already present.
// Returns whether the set actually grew. The containment check and append run
// in one statement, so concurrent signups cannot duplicate the entry.
func (r *Repository) AddSignup(ctx context.Context, id uuid.UUID, signup models.Signup) (bool, error) {
	raw, err := json.Marshal([]models.Signup{signup})
	if err != nil {
		return false, fmt.Errorf("encode signup: %w", err)
	}
	const q = `UPDATE users SET signups = signups || $2::jsonb, updated_at = NOW()
		WHERE id = $1 AND NOT signups @> $2::jsonb`
	tag, err := r.pool.Exec(ctx, q, id, raw)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateParams is the patch applied by the legacy update-by-username route.
// Nil fields are left unchanged.
type UpdateParams struct {
	Email              *string
	PasswordHash       *string
	Username           *string
	Type               *string
	Department         *string
	Active             *bool
	MustChangePassword *bool
}

// Empty reports whether the patch has no fields set.
func (p UpdateParams) Empty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Username == nil &&
		p.Type == nil && p.Department == nil && p.Active == nil && p.MustChangePassword == nil
}

// UpdateByUsername applies the patch to a user addressed by username.
// Returns false when no such user exists.
func (r *Repository) UpdateByUsername(ctx context.Context, username string, p UpdateParams) (bool, error) {
	const q = `UPDATE users SET
		email = COALESCE($2, email),
		password_hash = COALESCE($3, password_hash),
		username = COALESCE($4, username),
		type = COALESCE($5, type),
		department = COALESCE($6, department),
		active = COALESCE($7, active),
		must_change_password = COALESCE($8, must_change_password),
		updated_at = NOW()
		WHERE username = $1`
	tag, err := r.pool.Exec(ctx, q, username, p.Email, p.PasswordHash, p.Username, p.Type,
		p.Department, p.Active, p.MustChangePassword)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateProfile applies the self-service allow-listed profile patch.
func (r *Repository) UpdateProfile(ctx context.Context, username string, email, allergy *string) error {
	const q = `UPDATE users SET
		email = COALESCE($2, email),
		allergy = COALESCE($3, allergy),
		updated_at = NOW()
		WHERE username = $1`
	_, err := r.pool.Exec(ctx, q, username, email, allergy)
	return err
}

// DeleteByUsername removes a user. Returns false when no such user exists.
func (r *Repository) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// EnsureAdmin seeds the default administrator account if it does not exist.
func (r *Repository) EnsureAdmin(ctx context.Context, username, email, passwordHash string) error {
	const q = `INSERT INTO users (username, email, password_hash, type, active, must_change_password, signups)
		VALUES ($1, $2, $3, 'admin', TRUE, FALSE, '[]')
		ON CONFLICT (username) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, username, email, passwordHash)
	return err
}
