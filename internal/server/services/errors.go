package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogauth/internal/common"
)

// RateLimitedError reports a throttled login attempt together with how long
// the caller should wait before retrying. errors.Is matches it against
// common.ErrRateLimited.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == common.ErrRateLimited
}

// AccountLockedError reports a lockout in force and when it lifts.
// errors.Is matches it against common.ErrAccountLocked.
type AccountLockedError struct {
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked until %s", e.Until.Format(time.RFC3339))
}

func (e *AccountLockedError) Is(target error) bool {
	return target == common.ErrAccountLocked
}
