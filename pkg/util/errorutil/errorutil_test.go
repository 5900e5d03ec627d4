package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("query ticket: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, "CONFLICT", http.StatusConflict},
		{"other pg error", &pgconn.PgError{Code: "57014"}, "STORE_ERROR", http.StatusInternalServerError},
		{"plain error", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
		})
	}
}

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewForbidden("not yours")
	de := ToDomainError(original)
	assert.Same(t, original.(*DomainError), de)

	assert.Nil(t, ToDomainError(nil))
}

func TestIsCode(t *testing.T) {
	err := NewValidationError("bad input", map[string]any{"field": "subject"})
	assert.True(t, IsCode(err, "VALIDATION_FAILED"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("boom"), "VALIDATION_FAILED"))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsCode(wrapped, "VALIDATION_FAILED"))
}
