package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "ana@example.com", wantErr: false},
		{name: "valid with dots", value: "ana.maria@sub.example.com", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "blank", value: "   ", wantErr: true},
		{name: "no at sign", value: "ana.example.com", wantErr: true},
		{name: "no tld", value: "ana@example", wantErr: true},
		{name: "too long", value: strings.Repeat("a", MaxEmail) + "@x.com", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email("email", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequiredString(t *testing.T) {
	t.Run("trims and accepts", func(t *testing.T) {
		got, err := RequiredString("name", "  Acme  ", MaxName)
		require.NoError(t, err)
		assert.Equal(t, "Acme", got)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := RequiredString("name", "   ", MaxName)
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name", vErr.Field)
	})

	t.Run("rejects over max length", func(t *testing.T) {
		_, err := RequiredString("name", strings.Repeat("x", MaxName+1), MaxName)
		assert.Error(t, err)
	})
}

func TestOptionalString(t *testing.T) {
	t.Run("blank yields fallback", func(t *testing.T) {
		got, err := OptionalString("career_level", "", MaxCareerLevel, "Não especificado")
		require.NoError(t, err)
		assert.Equal(t, "Não especificado", got)
	})

	t.Run("value passes through trimmed", func(t *testing.T) {
		got, err := OptionalString("career_level", " Sênior ", MaxCareerLevel, "")
		require.NoError(t, err)
		assert.Equal(t, "Sênior", got)
	})

	t.Run("rejects over max length", func(t *testing.T) {
		_, err := OptionalString("gender", strings.Repeat("x", MaxGender+1), MaxGender, "")
		assert.Error(t, err)
	})
}

func TestID(t *testing.T) {
	t.Run("blank is absent, not an error", func(t *testing.T) {
		got, err := ID("company_id", "  ")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("positive integer", func(t *testing.T) {
		got, err := ID("company_id", "42")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 42, *got)
	})

	t.Run("rejects non-numeric", func(t *testing.T) {
		_, err := ID("company_id", "abc")
		assert.Error(t, err)
	})

	t.Run("rejects zero and negative", func(t *testing.T) {
		_, err := ID("company_id", "0")
		assert.Error(t, err)
		_, err = ID("company_id", "-3")
		assert.Error(t, err)
	})
}

func TestDate(t *testing.T) {
	t.Run("iso format", func(t *testing.T) {
		got, err := Date("birth_date", "1995-03-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("brazilian format", func(t *testing.T) {
		got, err := Date("birth_date", "15/03/1995")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("absent yields zero time and no error", func(t *testing.T) {
		got, err := Date("birth_date", "")
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("supplied but unparsable is an error", func(t *testing.T) {
		_, err := Date("birth_date", "15-03-1995")
		var vErr *Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "birth_date", vErr.Field)
	})
}
