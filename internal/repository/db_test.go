package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsMissingVectorSupport(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"undefined function", &pgconn.PgError{Code: "42883"}, true},
		{"undefined object wrapped", fmt.Errorf("query: %w", &pgconn.PgError{Code: "42704"}), true},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isMissingVectorSupport(tt.err))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, nullableString(""))
	if s := nullableString("x"); assert.NotNil(t, s) {
		assert.Equal(t, "x", *s)
	}
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	assert.Same(t, domain.ErrParticipantNotFound, translateError(domain.ErrParticipantNotFound))

	dup := translateError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}))
	assert.Equal(t, domain.ErrCodeAlreadyExists, domain.ErrorCode(dup))

	other := errors.New("connection reset")
	wrapped := translateError(other)
	assert.ErrorIs(t, wrapped, domain.ErrStorageOperationFailed)
	assert.ErrorIs(t, wrapped, other)
}
