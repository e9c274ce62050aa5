package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voteflow/contexts/voting/vote-worker/domain/entities"
	domainerrors "voteflow/contexts/voting/vote-worker/domain/errors"
	"voteflow/contexts/voting/vote-worker/ports"
	"voteflow/internal/platform/db"

	"gorm.io/gorm"
)

const createVotesTable = `CREATE TABLE IF NOT EXISTS votes (
	id VARCHAR(255) NOT NULL UNIQUE,
	vote VARCHAR(255) NOT NULL
)`

// Repository is one store connection owned by the queue consumer.
type Repository struct {
	database *db.Database
	logger   *slog.Logger
}

func NewRepository(database *db.Database, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		database: database,
		logger:   logger,
	}
}

// EnsureSchema creates the votes table when it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.conn(ctx).Exec(createVotesTable).Error; err != nil {
		return r.logError("vote_repo_ensure_schema_failed", classify(err))
	}
	return nil
}

func (r *Repository) InsertVote(ctx context.Context, record entities.VoteRecord) error {
	row := voteModelFromRecord(record)
	if err := r.conn(ctx).Create(&row).Error; err != nil {
		err = classify(err)
		if errors.Is(err, domainerrors.ErrDuplicateVoter) {
			r.logger.Debug("voter already exists, falling back to update",
				"event", "vote_repo_insert_conflict",
				"module", "voting/vote-worker",
				"layer", "adapter",
				"voter_id", row.ID,
			)
			return err
		}
		return r.logError("vote_repo_insert_failed", err, "voter_id", row.ID)
	}
	return nil
}

func (r *Repository) UpdateVote(ctx context.Context, record entities.VoteRecord) error {
	row := voteModelFromRecord(record)
	result := r.conn(ctx).
		Model(&voteModel{}).
		Where("id = ?", row.ID).
		Update("vote", row.Vote)
	if result.Error != nil {
		return r.logError("vote_repo_update_failed", classify(result.Error), "voter_id", row.ID)
	}
	if result.RowsAffected == 0 {
		return r.logError("vote_repo_update_missing", domainerrors.ErrVoteNotFound, "voter_id", row.ID)
	}
	return nil
}

// Ping is the keep-alive statement issued while the queue is empty.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.database.Ping(ctx); err != nil {
		return classify(err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.database.Close()
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return r.database.DB.WithContext(ctx)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "voting/vote-worker",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return domainerrors.ErrDuplicateVoter
	case db.IsConnectionFailure(err):
		return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	default:
		return err
	}
}

type voteModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Vote string `gorm:"column:vote"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromRecord(record entities.VoteRecord) voteModel {
	return voteModel{
		ID:   strings.TrimSpace(record.VoterID),
		Vote: string(record.Choice),
	}
}

var _ ports.VoteStore = (*Repository)(nil)
