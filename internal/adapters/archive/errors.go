package archive

import (
	"errors"
	"fmt"
)

// FailureClass is the coarse category used to pick a retry budget.
type FailureClass string

const (
	FailureNone             FailureClass = "none"
	FailureTransientNetwork FailureClass = "transient_network"
	FailureCorruptArchive   FailureClass = "corrupt_archive"
)

var (
	// ErrFetchFailed is matched by every *FetchError.
	ErrFetchFailed = errors.New("archive fetch failed")
	// ErrNoArchiveURL is returned when the identity names nothing to download.
	ErrNoArchiveURL = errors.New("no archive url")
	// ErrUnsafePath is returned for archive entries that would land outside the extraction root.
	ErrUnsafePath = errors.New("archive entry escapes extraction root")
)

// FetchError reports that a retry budget was exhausted.
type FetchError struct {
	Class    FailureClass
	Attempts int
	URL      string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s after %d attempts: %v", e.URL, e.Class, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetchFailed) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// HTTPStatusError is a non-2xx response from the archive host.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("archive host %s: %s", e.URL, e.Status)
}

// corruptError marks failures reading the zip itself (bad format, checksum, truncation).
type corruptError struct {
	err error
}

func (e *corruptError) Error() string { return "corrupt archive: " + e.err.Error() }

func (e *corruptError) Unwrap() error { return e.err }

// networkError marks failures talking to the archive host.
type networkError struct {
	err error
}

func (e *networkError) Error() string { return "download: " + e.err.Error() }

func (e *networkError) Unwrap() error { return e.err }

func classify(err error) FailureClass {
	var ce *corruptError
	if errors.As(err, &ce) {
		return FailureCorruptArchive
	}
	var ne *networkError
	if errors.As(err, &ne) {
		return FailureTransientNetwork
	}
	return FailureNone
}
