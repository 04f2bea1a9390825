package param

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a parameter is unset or empty.
var ErrNotFound = errors.New("parameter not found")

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}
