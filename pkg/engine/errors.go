package engine

import "errors"

// Common sentinel errors
var (
	ErrNilContext   = errors.New("render context is nil or unusable")
	ErrEngineClosed = errors.New("engine has been closed")
)
