package fabric

import (
	"errors"
	"fmt"
)

// FetchError reports a metadata request that could not be completed or decoded.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Fabric metadata cannot be fetched from %s (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("Fabric metadata cannot be fetched from %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Is(target error) bool {
	var t *FetchError
	if !errors.As(target, &t) {
		return false
	}
	return e.Endpoint == t.Endpoint
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func FetchErrorWrap(err error, endpoint string, statusCode int) error {
	return &FetchError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
	}
}

// LoaderNotFoundError is returned when no loader matches the requested game version.
type LoaderNotFoundError struct {
	GameVersion string
}

func (e *LoaderNotFoundError) Error() string {
	return fmt.Sprintf("No Fabric loader is available for Minecraft %s", e.GameVersion)
}

func (e *LoaderNotFoundError) Is(target error) bool {
	t, ok := target.(*LoaderNotFoundError)
	if !ok {
		return false
	}
	return e.GameVersion == t.GameVersion
}
