package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"reader@example.org", false},
		{"first.last+club@college.edu.in", false},
		{"no-at-sign.example.org", true},
		{"user@nodot", true},
		{"", true},
		{strings.Repeat("a", 250) + "@x.io", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.wantErr {
			assert.Error(t, err, tt.email)
		} else {
			assert.NoError(t, err, tt.email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("asha_k"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername("has space"))
	assert.Error(t, ValidateUsername(strings.Repeat("x", 65)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDate(" 2026-11-01 ")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), *d)

	_, err = ParseDate("01/11/2026")
	assert.Error(t, err)
}

func TestValidateOptionalURL(t *testing.T) {
	ok := "https://forms.example.org/register"
	bad := "javascript:alert(1)"
	blank := "  "

	assert.NoError(t, ValidateOptionalURL("registration_link", nil))
	assert.NoError(t, ValidateOptionalURL("registration_link", &blank))
	assert.NoError(t, ValidateOptionalURL("registration_link", &ok))
	assert.Error(t, ValidateOptionalURL("registration_link", &bad))
}

func TestRequiredAndMaxLen(t *testing.T) {
	v, err := Required("title", "  Dawn ")
	require.NoError(t, err)
	assert.Equal(t, "Dawn", v)

	_, err = Required("title", "   ")
	assert.EqualError(t, err, "title is required")

	assert.NoError(t, MaxLen("title", "ভোর", 3))
	assert.Error(t, MaxLen("title", "ভোরবেলা", 3))
}
