package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/gyeh/claimsadj/internal/extract"
	"github.com/gyeh/claimsadj/internal/model"
)

// Processor adjudicates a single claim document. *Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, b []byte, contentType, fileName string) (*model.AggregateResult, error)
}

// Input is one claim document queued for processing.
type Input struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ReadInput reads path and declares its content type from the extension.
// Unknown extensions are declared as application/octet-stream so the
// extract stage rejects them.
func ReadInput(path string) (Input, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read claim: %w", err)
	}
	ct, ok := extract.FormatForExtension(filepath.Ext(path))
	if !ok {
		ct = "application/octet-stream"
	}
	return Input{FileName: filepath.Base(path), ContentType: ct, Body: b}, nil
}

// BatchItem is the outcome of one input. Exactly one of Result and Err is set.
type BatchItem struct {
	FileName string
	Result   *model.AggregateResult
	Err      error
}

// RunBatch processes inputs with at most workers claims in flight. Items are
// returned in input order; one claim failing never cancels the others.
func RunBatch(ctx context.Context, p Processor, inputs []Input, workers int) []BatchItem {
	if workers < 1 {
		workers = 1
	}
	items := make([]BatchItem, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			res, err := p.Process(ctx, in.Body, in.ContentType, in.FileName)
			items[i] = BatchItem{FileName: in.FileName, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// Failed counts items that ended in an error.
func Failed(items []BatchItem) int {
	n := 0
	for _, it := range items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
