package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campus-events/backend/internal/models"
	"github.com/campus-events/backend/pkg/database"
)

// testPool connects to the database named by TEST_DATABASE_URL and applies
// the schema. Tests using it are skipped when the variable is unset.
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

func insertApproved(t *testing.T, repo *Repository, title string) *models.PublicationRequest {
	t.Helper()
	start, end, err := ResolveTiming("2025-10-23", "12:00", "14:00")
	require.NoError(t, err)

	pr := &models.PublicationRequest{
		Title:        title,
		Author:       "Alice",
		Organization: "IT section",
		Email:        "alice@example.com",
		Location:     "Main hall",
		EventDate:    "2025-10-23",
		StartTime:    "12:00",
		EndTime:      "14:00",
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
	return pr
}

func TestPromoteIdempotent(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()
	pr := insertApproved(t, repo, "Promotion idempotence")

	ev1, created1, err := repo.Promote(ctx, pr)
	require.NoError(t, err)
	assert.True(t, created1)
	assert.Equal(t, pr.ID, ev1.SourceRequestID)

	ev2, created2, err := repo.Promote(ctx, pr)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, ev1.ID, ev2.ID)

	var n int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE source_request_id = $1`, pr.ID).Scan(&n))
	assert.Equal(t, 1, n)

	fresh, err := repo.Get(ctx, pr.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.EventID)
	assert.Equal(t, ev1.ID, *fresh.EventID)
	assert.NotNil(t, fresh.ProcessedAt)
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newEventCreateRouter(repo *Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(repo, nil, nil, zap.NewNop())
	r := gin.New()
	r.POST("/req/eventcreate", h.CreateEvent)
	return r
}

func TestCreateEventRejectsUnparsableTiming(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	pr := insertApproved(t, repo, "Corrupted timing")

	_, err := pool.Exec(context.Background(),
		`UPDATE publication_requests SET event_date = 'garbage' WHERE id = $1`, pr.ID)
	require.NoError(t, err)

	w := postJSON(t, newEventCreateRouter(repo), "/req/eventcreate", map[string]string{"id": pr.ID.String()})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid date")

	var n int
	require.NoError(t, pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM events WHERE source_request_id = $1`, pr.ID).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestCreateEventRequiresApproval(t *testing.T) {
	pool := testPool(t)
	repo := NewRepository(pool)
	pr := insertApproved(t, repo, "Still pending")

	_, err := pool.Exec(context.Background(),
		`UPDATE publication_requests SET status = 'pending' WHERE id = $1`, pr.ID)
	require.NoError(t, err)

	w := postJSON(t, newEventCreateRouter(repo), "/req/eventcreate", map[string]string{"id": pr.ID.String()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Request must be approved first")
}
