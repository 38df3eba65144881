package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	pgErr := func(code string) error {
		return fmt.Errorf("approve booking failed: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, IsConcurrencyError(pgErr(pgerrcode.SerializationFailure)))
	assert.True(t, IsConcurrencyError(pgErr(pgerrcode.DeadlockDetected)))
	assert.True(t, IsConcurrencyError(pgErr(pgerrcode.LockNotAvailable)))
	assert.False(t, IsConcurrencyError(pgErr(pgerrcode.UniqueViolation)))
	assert.False(t, IsConcurrencyError(errors.New("plain")))

	assert.True(t, IsExclusionViolation(pgErr(pgerrcode.ExclusionViolation)))
	assert.False(t, IsExclusionViolation(pgErr(pgerrcode.UniqueViolation)))

	assert.True(t, IsUniqueViolation(pgErr(pgerrcode.UniqueViolation)))
	assert.False(t, IsUniqueViolation(nil))
}
