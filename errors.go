package vrm

import (
	"github.com/cockroachdb/errors"
)

// ErrCreationFailed marks every error returned when a native resource could not be created. Use
// errors.Is to detect it; the VkResult returned alongside the error carries the driver's status code.
var ErrCreationFailed = errors.New("native resource creation failed")

// ErrReleased is returned when a handle is used after it has been released
var ErrReleased = errors.New("handle has already been released")

func creationFailure(err error, object string) error {
	return errors.Mark(errors.Wrapf(err, "failed to create %s", object), ErrCreationFailed)
}
