package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimsadj/internal/db"
	"github.com/gyeh/claimsadj/internal/model"
	embedsql "github.com/gyeh/claimsadj/internal/sql"
)

const copyBuffer = 1024

func (s PGSource) Load(ctx context.Context) ([]model.HistoricalClaim, error) {
	rows, err := s.Pool.Query(ctx, embedsql.SelectHistory)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	claims, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.HistoricalClaim])
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return claims, nil
}

// LoadResult reports one COPY load into claims.history.
type LoadResult struct {
	BatchID    uuid.UUID
	SourcePath string
	SHA256     string
	RowsCopied int64
	Duration   time.Duration
}

// CopyToPostgres streams src into claims.history under a fresh batch id via
// the COPY protocol. On failure the partial batch is deleted.
func CopyToPostgres(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, src Streamer, path, sha string) (*LoadResult, error) {
	start := time.Now()
	batchID := uuid.New()

	if _, err := pool.Exec(ctx, embedsql.RegisterBatch, batchID, path, sha); err != nil {
		return nil, fmt.Errorf("register batch: %w", err)
	}

	ch := make(chan *model.HistoryRow, copyBuffer)
	errCh := make(chan error, 1)
	copyCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Producer: source → channel.
	go func() {
		defer close(ch)
		errCh <- src.Each(copyCtx, func(c *model.HistoricalClaim) error {
			row := &model.HistoryRow{BatchID: batchID, Claim: *c}
			select {
			case ch <- row:
				return nil
			case <-copyCtx.Done():
				return copyCtx.Err()
			}
		})
	}()

	// Consumer: COPY from channel.
	source := db.NewChannelSource(ch)
	copied, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"claims", "history"},
		model.HistoryColumns(),
		source,
	)
	if copyErr != nil {
		// Unblock the producer if COPY stopped reading.
		cancel()
		for range ch {
		}
	}
	prodErr := <-errCh

	if err := firstErr(prodErr, copyErr); err != nil {
		if _, delErr := pool.Exec(context.WithoutCancel(ctx), embedsql.DeleteHistoryBatch, batchID); delErr != nil {
			log.Warn().Err(delErr).Str("batch_id", batchID.String()).Msg("partial batch cleanup failed")
		}
		return nil, fmt.Errorf("copy history: %w", err)
	}

	if _, err := pool.Exec(ctx, embedsql.FinishBatch, batchID, copied); err != nil {
		return nil, fmt.Errorf("finish batch: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Str("batch_id", batchID.String()).
		Str("source", path).
		Int64("rows_copied", copied).
		Dur("duration", dur).
		Msg("history load complete")

	return &LoadResult{
		BatchID:    batchID,
		SourcePath: path,
		SHA256:     sha,
		RowsCopied: copied,
		Duration:   dur,
	}, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
