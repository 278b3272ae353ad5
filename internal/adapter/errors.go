package adapter

import "errors"

var (
	ErrBadRequest        = errors.New("remote rejected request")
	ErrUnauthorized      = errors.New("remote credentials rejected")
	ErrNotFound          = errors.New("remote object not found")
	ErrConflict          = errors.New("remote collection conflict")
	ErrRemoteUnavailable = errors.New("remote unavailable")
)
