package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert user: %w", dup)))

	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

// Handlers match on the sentinel, not the driver error, so the wrap chain
// has to carry it.
func TestDuplicateSentinelSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("insert user: %w", ErrDuplicate)
	assert.True(t, errors.Is(err, ErrDuplicate))
}
