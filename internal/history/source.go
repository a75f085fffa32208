// Package history provides the previously adjudicated claims the fraud scorer
// cross-references. Claims come from a JSON/YAML file, a Parquet snapshot or
// the claims.history table, and are indexed once by member at startup.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/normalize"
	"github.com/gyeh/claimsadj/internal/refdata"
)

// Source loads the full set of historical claims.
type Source interface {
	Load(ctx context.Context) ([]model.HistoricalClaim, error)
}

// Streamer yields historical claims one at a time. fn must not retain c.
type Streamer interface {
	Each(ctx context.Context, fn func(c *model.HistoricalClaim) error) error
}

// collect drains a Streamer into a slice.
func collect(ctx context.Context, s Streamer) ([]model.HistoricalClaim, error) {
	var out []model.HistoricalClaim
	err := s.Each(ctx, func(c *model.HistoricalClaim) error {
		out = append(out, *c)
		return nil
	})
	return out, err
}

// FileSource reads a JSON or YAML list of claims. Each entry may give its
// amount either as amount_cents or as a dollar figure under amount or
// claim_amount. The list may also sit under a top-level "claims" key.
type FileSource struct {
	Path string
}

type fileClaim struct {
	model.HistoricalClaim `yaml:",inline"`
	Amount                *float64 `yaml:"amount"`
	ClaimAmount           *float64 `yaml:"claim_amount"`
}

func (s FileSource) Each(ctx context.Context, fn func(*model.HistoricalClaim) error) error {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: history file %s not found", refdata.ErrReferenceDataMissing, s.Path)
	}
	if err != nil {
		return fmt.Errorf("read history file: %w", err)
	}

	var entries []fileClaim
	if err := yaml.Unmarshal(data, &entries); err != nil {
		var wrapped struct {
			Claims []fileClaim `yaml:"claims"`
		}
		if err2 := yaml.Unmarshal(data, &wrapped); err2 != nil {
			return fmt.Errorf("parse history file %s: %w", s.Path, err)
		}
		entries = wrapped.Claims
	}

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := entries[i].HistoricalClaim
		if c.AmountCents == 0 {
			for _, d := range []*float64{entries[i].Amount, entries[i].ClaimAmount} {
				if cents := normalize.DollarsToCents(d); cents != nil && *cents > 0 {
					c.AmountCents = *cents
					break
				}
			}
		}
		clean(&c)
		if err := fn(&c); err != nil {
			return err
		}
	}
	return nil
}

func (s FileSource) Load(ctx context.Context) ([]model.HistoricalClaim, error) {
	return collect(ctx, s)
}

// PGSource reads claims.history.
type PGSource struct {
	Pool *pgxpool.Pool
}

// clean normalizes identifiers, codes and dates the same way extraction does,
// so history and incoming claims compare equal.
func clean(c *model.HistoricalClaim) {
	c.ClaimID = strings.TrimSpace(c.ClaimID)
	c.MemberID = strings.TrimSpace(c.MemberID)
	c.ProviderID = strings.TrimSpace(c.ProviderID)
	codes := make([]string, 0, len(c.ProcedureCodes))
	for _, code := range c.ProcedureCodes {
		codes = append(codes, normalize.ProcedureCode(code))
	}
	c.ProcedureCodes = normalize.DedupCodes(codes)
	c.ServiceDate = normalize.ISODate(c.ServiceDate)
	if c.AmountCents < 0 {
		c.AmountCents = 0
	}
}

// SourceFor picks a file source by extension: .parquet reads a Parquet
// snapshot, anything else is treated as JSON/YAML.
func SourceFor(path string) interface {
	Source
	Streamer
} {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return ParquetSource{Path: path}
	}
	return FileSource{Path: path}
}
