package app

import (
	"github.com/Guilhem-Bonnet/xdraft/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

const (
	CodeStatsFetch = "stats_fetch"
	CodeBrowser    = "browser"
	CodeCacheWrite = "cache_write"
	CodeCacheRead  = "cache_read"
)

// CodedError carries a stable code that is persisted with failed init runs.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }
