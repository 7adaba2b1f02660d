package identity

import "errors"

var (
	// ErrInvalidAddress indicates the address string is malformed.
	ErrInvalidAddress = errors.New("identity: invalid address")
)
