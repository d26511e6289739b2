package calendar

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campus-events/backend/pkg/response"
)

// Handler handles calendar range queries over published events.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a calendar handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// ParseRange resolves the required start and end query values ("YYYY-MM-DD")
// to a UTC half-open window. The end date is exclusive: querying start=end
// yields an empty window.
func ParseRange(startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("Missing start or end date")
	}
	start, err := parseDay(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("End date must not be before start date")
	}
	return start, end, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid date; expected 'YYYY-MM-DD', got '%s'", s)
	}
	return t.UTC(), nil
}

// Range handles GET /req/eventfetch and GET /req/calendar.
func (h *Handler) Range(c *gin.Context) {
	start, end, err := ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	items, err := h.repo.Range(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("calendar range", zap.Error(err))
		response.Internal(c, "failed to query events")
		return
	}
	response.OK(c, gin.H{
		"items": items,
		"start": start,
		"end":   end,
	})
}
