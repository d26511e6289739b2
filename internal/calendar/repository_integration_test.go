package calendar

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/internal/requests"
	"github.com/campus-events/backend/pkg/database"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(context.Background(), pool))
	return pool
}

func publishEvent(t *testing.T, repo *requests.Repository, title string, start, end time.Time) uuid.UUID {
	t.Helper()
	pr := &models.PublicationRequest{
		Title:        title,
		Author:       "Alice",
		Organization: "IT section",
		Email:        "alice@example.com",
		Location:     "Main hall",
		EventDate:    start.Format("2006-01-02"),
		StartTime:    start.Format("15:04"),
		EndTime:      end.Format("15:04"),
		StartAt:      &start,
		EndAt:        &end,
		Departments:  []string{"IT"},
		Attachments:  []models.Attachment{},
		Status:       models.StatusApproved,
	}
	require.NoError(t, repo.Insert(context.Background(), pr))
	t.Cleanup(func() {
		_, _ = repo.Delete(context.Background(), pr.ID)
	})

	ev, created, err := repo.Promote(context.Background(), pr)
	require.NoError(t, err)
	require.True(t, created)
	return ev.ID
}

func containsEvent(items []models.CalendarItem, id uuid.UUID) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func TestRangeHalfOpenWindow(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	reqRepo := requests.NewRepository(pool)
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	first := publishEvent(t, reqRepo, "January kickoff", day(1), day(5))
	second := publishEvent(t, reqRepo, "Mid-January fair", day(5), day(10))

	// An event ending exactly where the window starts is excluded; one
	// starting exactly where the window ends is excluded too.
	items, err := repo.Range(ctx, day(1), day(5))
	require.NoError(t, err)
	assert.True(t, containsEvent(items, first))
	assert.False(t, containsEvent(items, second))

	items, err = repo.Range(ctx, day(4), day(6))
	require.NoError(t, err)
	assert.True(t, containsEvent(items, first))
	assert.True(t, containsEvent(items, second))

	items, err = repo.Range(ctx, day(10), day(20))
	require.NoError(t, err)
	assert.False(t, containsEvent(items, first))
	assert.False(t, containsEvent(items, second))
}
