package postgresadapter

import (
	"context"
	"fmt"
	"log/slog"

	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
	"voteflow/internal/platform/db"
)

// Connector dials a dedicated database handle for the consumer and makes
// sure the votes table exists before handing it out.
type Connector struct {
	Driver string
	DSN    string
	Logger *slog.Logger
}

// Connect reports dial failures as ErrStoreUnavailable. An unknown driver or a
// schema that cannot be created comes back unwrapped, since retrying cannot
// fix either.
func (c Connector) Connect(ctx context.Context) (ports.VoteStore, error) {
	if _, err := db.Dialector(c.Driver, c.DSN); err != nil {
		return nil, err
	}
	database, err := db.Connect(ctx, c.Driver, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	repo := NewRepository(database, c.Logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	return repo, nil
}

var _ ports.StoreConnector = Connector{}
