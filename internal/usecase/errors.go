package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrParseFailure marks alert text that lacks teams, minute or score.
	ErrParseFailure = fmt.Errorf("%w: alert parse failure", ErrInvalidInput)
	// ErrSettlementInProgress is returned by a manual trigger while a
	// settlement cycle is already running.
	ErrSettlementInProgress = errors.New("settlement cycle already running")
)
