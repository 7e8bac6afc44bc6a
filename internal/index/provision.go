package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/ricardonunez-io/logcopilot/internal/errs"
	"github.com/ricardonunez-io/logcopilot/internal/store"
	"github.com/rs/zerolog/log"
)

type Provisioner struct {
	store store.Store
}

func NewProvisioner(s store.Store) *Provisioner {
	return &Provisioner{store: s}
}

// Ensure creates the index with the fixed mapping unless it already exists.
// Concurrent callers may both attempt the create; losing that race is not an
// error.
func (p *Provisioner) Ensure(ctx context.Context, name string) error {
	exists, err := p.store.IndexExists(ctx, name)
	if err != nil {
		return backendError(err)
	}
	if exists {
		return nil
	}

	err = p.store.CreateIndex(ctx, name, Mapping())
	if errors.Is(err, store.ErrIndexExists) {
		log.Debug().Str("index", name).Msg("Index created concurrently")
		return nil
	}
	if err != nil {
		return backendError(err)
	}
	return nil
}

func backendError(err error) error {
	if errors.Is(err, errs.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", errs.ErrBackendUnavailable, err)
}
