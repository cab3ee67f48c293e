package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrChannelExists      = fmt.Errorf("channel already exists")
	ErrChannelNameEmpty   = fmt.Errorf("channel name is required")
	ErrChannelNotFound    = fmt.Errorf("channel not found")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrAuthRejected       = fmt.Errorf("authentication rejected")
)
