package uview

import (
	"fmt"

	"github.com/elmitec/go-elmitec/proto"
)

// RemoteError carries the error code UView reported for a rejected
// operation. It matches proto.ErrRemote under errors.Is.
type RemoteError struct {
	Code string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("uview: remote error code %s", e.Code)
}

func (e *RemoteError) Is(target error) bool {
	return target == proto.ErrRemote
}
