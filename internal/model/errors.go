package model

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrMissingProfile     = errors.New("name and last cycle start are required")
	ErrQuizFinished       = errors.New("quiz already finished")
	ErrQuizNotStarted     = errors.New("quiz not started")
)
