package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNullableYDeref(t *testing.T) {
	assert.Nil(t, nullable(""))
	p := nullable("loc-a")
	if assert.NotNil(t, p) {
		assert.Equal(t, "loc-a", *p)
	}
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "loc-a", deref(p))
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro error")))
}

func TestIsLockNotAvailable(t *testing.T) {
	assert.True(t, isLockNotAvailable(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, isLockNotAvailable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"})))
	assert.False(t, isLockNotAvailable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isLockNotAvailable(errors.New("timeout")))
}
