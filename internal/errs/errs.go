package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels
var (
	ErrResolution = errors.New("url could not be resolved")
	ErrNoStreams  = errors.New("no suitable streams")
	ErrDownload   = errors.New("download failed")
	ErrMerge      = errors.New("merge failed")
	ErrTagging    = errors.New("tagging failed")
	ErrConfig     = errors.New("configuration error")
	ErrInvalidJob = errors.New("invalid job")
	ErrCancelled  = errors.New("cancelled")

	// ErrToolNotFound is a merge failure that is never retried.
	ErrToolNotFound = fmt.Errorf("ffmpeg not found: %w", ErrMerge)
)

var kinds = []error{
	ErrToolNotFound,
	ErrResolution,
	ErrNoStreams,
	ErrDownload,
	ErrMerge,
	ErrTagging,
	ErrConfig,
	ErrInvalidJob,
	ErrCancelled,
}

// Error binds a kind to the operation that failed and its cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns err tagged with kind. A nil err yields nil unless kind itself
// is the failure, in which case use New.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// New returns an error of the given kind with no underlying cause.
func New(kind error, op string) error {
	return &Error{Kind: kind, Op: op}
}

// KindOf reports the first taxonomy sentinel err matches, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Retryable reports whether a failed step may be attempted again.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, ErrToolNotFound) || errors.Is(err, ErrCancelled) {
		return false
	}
	return errors.Is(err, ErrDownload) || errors.Is(err, ErrMerge)
}
