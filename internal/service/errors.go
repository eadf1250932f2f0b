package service

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the parent of every error caused by bad caller input.
// Such errors are returned immediately and never retried.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	ErrUnknownStrategy    = fmt.Errorf("%w: unknown routing strategy", ErrInvalidArgument)
	ErrQueryEmpty         = fmt.Errorf("%w: query is required", ErrInvalidArgument)
	ErrInvalidWeight      = fmt.Errorf("%w: weight must be between 0 and 1", ErrInvalidArgument)
	ErrUnknownFactor      = fmt.Errorf("%w: unknown scoring factor", ErrInvalidArgument)
	ErrInvalidReliability = fmt.Errorf("%w: reliability must be between 0 and 1", ErrInvalidArgument)
	ErrInvalidScoreInput  = fmt.Errorf("%w: invalid score input", ErrInvalidArgument)
	ErrSourceTypeEmpty    = fmt.Errorf("%w: source type is required", ErrInvalidArgument)
	ErrSourceIDEmpty      = fmt.Errorf("%w: source id is required", ErrInvalidArgument)
	ErrSourceHandlerNil   = fmt.Errorf("%w: source handler is required", ErrInvalidArgument)
	ErrDocumentBodyEmpty  = fmt.Errorf("%w: body is required", ErrInvalidArgument)
)

var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrMemoryUnavailable = errors.New("memory store is not configured")
	ErrSourceQueryFailed = errors.New("source query failed")
)
