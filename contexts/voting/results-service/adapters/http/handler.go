package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"voteflow/contexts/voting/results-service/application/queries"
	"voteflow/contexts/voting/results-service/application/workers"
	"voteflow/contexts/voting/results-service/domain/entities"
	httptransport "voteflow/contexts/voting/results-service/transport/http"
)

// ExportFilename is the attachment name of the export download.
const ExportFilename = "voting-results.json"

type Handler struct {
	Tallies    queries.TallyUseCase
	Aggregator workers.TallyAggregator
	Logger     *slog.Logger
}

func (h Handler) RefreshHandler(ctx context.Context) (httptransport.RefreshResponse, error) {
	tally, err := h.Aggregator.Refresh(ctx)
	if err != nil {
		return httptransport.RefreshResponse{}, err
	}
	return httptransport.RefreshResponse{
		Success:   true,
		Votes:     mapVotes(tally),
		Timestamp: formatTime(time.Now()),
	}, nil
}

func (h Handler) StatsHandler(ctx context.Context) (httptransport.StatsResponse, error) {
	stats, err := h.Tallies.Stats(ctx)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}
	return httptransport.StatsResponse{
		Votes: mapVotes(stats.Votes),
		Total: stats.Total,
		Percentages: httptransport.PercentagesDTO{
			A: stats.PercentA,
			B: stats.PercentB,
		},
		Timestamp: formatTime(stats.At),
	}, nil
}

func (h Handler) ExportHandler(ctx context.Context) (httptransport.ExportResponse, error) {
	export, err := h.Tallies.Export(ctx)
	if err != nil {
		return httptransport.ExportResponse{}, err
	}
	return httptransport.ExportResponse{
		ExportDate: formatTime(export.ExportedAt),
		TotalVotes: export.TotalVotes,
		Results: httptransport.ExportResultsDTO{
			Cats: export.Results.A,
			Dogs: export.Results.B,
		},
		Winner: export.Winner,
	}, nil
}

func mapVotes(tally entities.Tally) httptransport.VotesDTO {
	return httptransport.VotesDTO{A: tally.A, B: tally.B}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
