package scraper

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParameter   = errors.New("template contains placeholder but no parameter was supplied")
	ErrDuplicateSelector  = errors.New("duplicate selector name")
	ErrInvalidSelector    = errors.New("invalid CSS selector")
	ErrEmptyConfiguration = errors.New("configuration has no resources")
	ErrInvalidResource    = errors.New("invalid resource")
)

// ConfigError означает фатальную ошибку до начала любых запросов.
type ConfigError struct {
	Resource int
	Err      error
	Detail   string
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Resource >= 0 {
		return fmt.Sprintf("configuration error in resource #%d: %s", e.Resource+1, msg)
	}
	return "configuration error: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(resource int, err error, detail string) *ConfigError {
	return &ConfigError{Resource: resource, Err: err, Detail: detail}
}

type ErrorKind int

const (
	SelectorNotFound ErrorKind = iota + 1
	FetchFailed
	MalformedDocument
)

func (k ErrorKind) String() string {
	switch k {
	case SelectorNotFound:
		return "selector not found"
	case FetchFailed:
		return "fetch failed"
	case MalformedDocument:
		return "malformed document"
	default:
		return "unknown"
	}
}

// ExtractionError прикрепляется к ResultItem и не прерывает соседние извлечения.
type ExtractionError struct {
	Kind   ErrorKind
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Reason
}

func newExtractionError(kind ErrorKind, reason string) *ExtractionError {
	return &ExtractionError{Kind: kind, Reason: reason}
}
