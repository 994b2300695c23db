package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const maxWriteAttempts = 3

// retryableSQLState reports Postgres failures worth another attempt:
// serialization_failure and deadlock_detected.
func retryableSQLState(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// withWriteRetry reruns fn when Postgres aborts it with a serialization
// failure. The repositories keep their counter arithmetic inside single
// statements, so a rerun never double-applies.
func withWriteRetry(ctx context.Context, logger *zap.Logger, fn func() error) error {
	var err error

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		err = fn()
		if err == nil || !retryableSQLState(err) {
			return err
		}

		logger.Warn("retrying write after serialization failure",
			zap.Int("attempt", attempt), zap.Error(err))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("%w: %v", ErrTransientFailure, err)
}
