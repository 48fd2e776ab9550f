package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNil is returned by reads of a missing key.
var ErrNil = redis.Nil

// IsNil reports a cache miss rather than a failure.
func IsNil(err error) bool {
	return errors.Is(err, ErrNil)
}
