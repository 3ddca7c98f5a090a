// Package repository implements the data-access layer over gorm. Every method
// takes a context, bounds its store round-trips with a timeout, and returns
// errors from the apperror taxonomy. Connection acquire/release per statement
// is delegated to gorm's *sql.DB pool; no connection is held across calls and
// no mutable state lives in the repositories themselves.
//
// All repositories accept a nil *gorm.DB: that is degraded mode, entered when
// no database credentials are configured. In degraded mode every method
// returns a null/empty result instead of raising, which keeps the rest of the
// service available.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/trajecta/trajecta/apperror"
)

// storeTimeout bounds a single repository call so a hung statement cannot
// starve the connection pool.
const storeTimeout = 5 * time.Second

// Repositories bundles the per-entity repositories over one shared handle.
type Repositories struct {
	Users       *UserRepository
	Forums      *ForumRepository
	Posts       *PostRepository
	Experiences *ExperienceRepository
}

// New wires all repositories over db. db may be nil (degraded mode).
func New(db *gorm.DB) *Repositories {
	users := NewUserRepository(db)
	return &Repositories{
		Users:       users,
		Forums:      NewForumRepository(db),
		Posts:       NewPostRepository(db),
		Experiences: NewExperienceRepository(db),
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, storeTimeout)
}

// storeErr classifies a failed store round-trip. Duplicated keys become
// conflicts, deadline and cancellation become transient failures, everything
// else is rethrown wrapped with the operation name.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict(op + ": duplicate key")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperror.Transient(op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
