package param

import (
	"context"
	"os"

	"github.com/dmorgan81/imagenproxy/internal/log"
)

// EnvFetcher reads parameters from the process environment at call time.
type EnvFetcher struct {
	Lookup func(string) (string, bool)
}

func NewEnvFetcher() *EnvFetcher {
	return &EnvFetcher{Lookup: os.LookupEnv}
}

func (f *EnvFetcher) Fetch(ctx context.Context, name string) (string, error) {
	log.FromContextOrDiscard(ctx).Debug("fetching parameter from environment", "name", name)

	v, ok := f.Lookup(name)
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}
