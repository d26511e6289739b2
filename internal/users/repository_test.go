package users

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestToItemDefaults(t *testing.T) {
	id := uuid.New()
	item := toItem(id, "alice", "alice@example.com", "publisher", nil, true, nil)

	assert.Equal(t, id, item.ID)
	assert.Equal(t, "alice", item.Name)
	assert.Equal(t, "staff", item.Role)
	assert.Equal(t, "—", item.Dept)
	assert.Equal(t, "none", item.Allergy)
	assert.True(t, item.Active)
}

func TestToItemWithValues(t *testing.T) {
	dept := "IT"
	allergy := "peanuts"
	item := toItem(uuid.New(), "bob", "bob@example.com", "student", &dept, false, &allergy)

	assert.Equal(t, "student", item.Role)
	assert.Equal(t, "IT", item.Dept)
	assert.Equal(t, "peanuts", item.Allergy)
	assert.False(t, item.Active)
}

func TestBuildFilter(t *testing.T) {
	cond, args := buildFilter(ListFilter{Role: "staff", Q: "ali"})
	assert.Contains(t, cond, "type = ANY($1)")
	assert.Contains(t, cond, "ILIKE $2")
	assert.Len(t, args, 2)
	assert.Equal(t, stafflikeTypes, args[0])
	assert.Equal(t, "%ali%", args[1])

	active := true
	cond, args = buildFilter(ListFilter{Active: &active})
	assert.Contains(t, cond, "active = $1")
	assert.Len(t, args, 1)

	cond, args = buildFilter(ListFilter{})
	assert.Equal(t, " WHERE TRUE", cond)
	assert.Empty(t, args)
}

func TestNormalizePagingClamp(t *testing.T) {
	page, size := NormalizePaging("0", "1000")
	assert.Equal(t, 1, page)
	assert.Equal(t, 200, size)

	page, size = NormalizePaging("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, size)
}
