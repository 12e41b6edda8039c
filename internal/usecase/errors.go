package usecase

import (
	"errors"

	"github.com/riskibarqy/league-live/internal/domain/match"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidTransition     = match.ErrInvalidTransition
	ErrAlreadyScheduled      = errors.New("tournament already scheduled")
	ErrSchedulingExhausted   = errors.New("scheduling exhausted")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
