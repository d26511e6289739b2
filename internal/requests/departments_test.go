package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDepartments(t *testing.T) {
	want := []string{"IT", "HR"}

	tests := []struct {
		name string
		in   interface{}
	}{
		{"plain array", []interface{}{"IT", "HR"}},
		{"string slice", []string{"IT", "HR"}},
		{"wrapper object", map[string]interface{}{"departments": []interface{}{"IT", "HR"}}},
		{"comma string", "IT, HR"},
		{"json string", `["IT", "HR"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, NormalizeDepartments(tt.in))
		})
	}
}

func TestNormalizeDepartmentsEdgeCases(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeDepartments(nil))
	assert.Equal(t, []string{}, NormalizeDepartments(""))
	assert.Equal(t, []string{}, NormalizeDepartments("  "))
	assert.Equal(t, []string{}, NormalizeDepartments(42))
	assert.Equal(t, []string{"IT"}, NormalizeDepartments("IT, , "))
	assert.Equal(t, []string{"IT"}, NormalizeDepartments([]interface{}{" IT ", "", 7}))
	assert.Equal(t, []string{}, NormalizeDepartments(map[string]interface{}{"other": "x"}))
}

func TestParseBool(t *testing.T) {
	truthy := []interface{}{true, 1, float64(2), "1", "true", "TRUE", "yes", "on", " Yes "}
	for _, v := range truthy {
		assert.True(t, ParseBool(v), "ParseBool(%v)", v)
	}
	falsy := []interface{}{false, 0, float64(0), "0", "false", "off", "", nil, "maybe"}
	for _, v := range falsy {
		assert.False(t, ParseBool(v), "ParseBool(%v)", v)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 50, ParseInt(float64(50)))
	assert.Equal(t, 50, ParseInt(50))
	assert.Equal(t, 50, ParseInt("50"))
	assert.Equal(t, 50, ParseInt(" 50 "))
	assert.Equal(t, 0, ParseInt("many"))
	assert.Equal(t, 0, ParseInt(nil))
}
