package postgresadapter

import (
	"context"
	"fmt"
	"log/slog"

	"voteflow/contexts/voting/results-service/domain/entities"
	domainerrors "voteflow/contexts/voting/results-service/domain/errors"
	"voteflow/contexts/voting/results-service/ports"
	"voteflow/internal/platform/db"
)

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

// CountByChoice groups the votes table by choice. The worker creates the
// table, so until it has run once a missing table reads as no votes.
func (r *Repository) CountByChoice(ctx context.Context) ([]entities.ChoiceCount, error) {
	var rows []choiceCountRow
	err := r.database.DB.WithContext(ctx).
		Table("votes").
		Select("vote, COUNT(id) AS count").
		Group("vote").
		Scan(&rows).Error
	if err != nil {
		if db.IsUndefinedTable(err) {
			r.logger.Debug("votes table not created yet",
				"event", "tally_repo_table_missing",
				"module", "voting/results-service",
				"layer", "adapter",
			)
			return []entities.ChoiceCount{}, nil
		}
		if db.IsConnectionFailure(err) {
			err = fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
		}
		return nil, r.logError("tally_repo_count_failed", err)
	}

	counts := make([]entities.ChoiceCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, entities.ChoiceCount{Choice: row.Vote, Count: row.Count})
	}
	return counts, nil
}

func (r *Repository) logError(event string, err error) error {
	r.logger.Error("tally repository operation failed",
		"event", event,
		"module", "voting/results-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	return err
}

type choiceCountRow struct {
	Vote  string `gorm:"column:vote"`
	Count int64  `gorm:"column:count"`
}

var _ ports.VoteCounter = (*Repository)(nil)
