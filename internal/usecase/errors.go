package usecase

import (
	"context"
	"errors"
	"fmt"

	"skilltrack/internal/database"
	"skilltrack/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSkillNotFound     = fmt.Errorf("skill %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrUserSkillNotFound = fmt.Errorf("user skill %w", ErrNotFound)

	ErrDuplicateName    = errors.New("duplicate skill name")
	ErrCycle            = errors.New("reparent would create a cycle")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("concurrent modification")
	ErrCorruptHierarchy = errors.New("corrupt skill hierarchy")
	ErrCorruptEntry     = errors.New("corrupt user skill entry")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
)

var knownErrors = []error{
	ErrNotFound,
	ErrDuplicateName,
	ErrCycle,
	ErrForbidden,
	ErrConflict,
	ErrCorruptHierarchy,
	ErrCorruptEntry,
	ErrStoreUnavailable,
	ErrInvalidInput,
	ErrInternal,
}

func isKnown(err error) bool {
	for _, k := range knownErrors {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// translate turns repository and driver failures into usecase sentinels.
// Errors that already carry a sentinel pass through untouched.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case isKnown(err):
		return err
	case errors.Is(err, repository.ErrStaleVersion), errors.Is(err, database.ErrSerialization):
		return fmt.Errorf("%w: %s", ErrConflict, op)
	case errors.Is(err, database.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}
