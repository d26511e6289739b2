package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-events/backend/internal/models"
)

// Repository reads published events for calendar queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a calendar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Range returns events overlapping the half-open window [start, end), sorted
// by start time ascending. An event overlaps when it starts before the window
// ends and ends after the window starts.
func (r *Repository) Range(ctx context.Context, start, end time.Time) ([]models.CalendarItem, error) {
	const q = `SELECT id, title, start_at, end_at, location, on_campus, description, departments, max_attendees
		FROM events
		WHERE start_at < $2 AND end_at > $1
		ORDER BY start_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, q, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.CalendarItem, 0)
	for rows.Next() {
		var item models.CalendarItem
		var departments []byte
		if err := rows.Scan(&item.ID, &item.Title, &item.Start, &item.End, &item.Location,
			&item.OnCampus, &item.Description, &departments, &item.MaxAttendees); err != nil {
			return nil, err
		}
		if len(departments) > 0 {
			if err := json.Unmarshal(departments, &item.Departments); err != nil {
				return nil, fmt.Errorf("decode departments: %w", err)
			}
		}
		if item.Departments == nil {
			item.Departments = []string{}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
