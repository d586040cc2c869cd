package gate

import "errors"

// ErrInvalidInput is returned for any request the gate refuses. The
// wrapped message names the offending field.
var ErrInvalidInput = errors.New("invalid input")
