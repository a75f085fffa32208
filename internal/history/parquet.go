package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/claimsadj/internal/model"
	"github.com/gyeh/claimsadj/internal/refdata"
)

const readBatchSize = 1024

// ParquetSource streams a Parquet snapshot whose schema is model.HistoricalClaim.
type ParquetSource struct {
	Path string
}

// parquetReader wraps a GenericReader together with the file it reads.
type parquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[model.HistoricalClaim]
}

func openParquet(path string) (*parquetReader, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: history file %s not found", refdata.ErrReferenceDataMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	if err := ValidateSchema(pf.Schema()); err != nil {
		f.Close()
		return nil, err
	}

	return &parquetReader{file: f, reader: parquet.NewGenericReader[model.HistoricalClaim](pf)}, nil
}

func (r *parquetReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func (s ParquetSource) Each(ctx context.Context, fn func(*model.HistoricalClaim) error) error {
	r, err := openParquet(s.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	buf := make([]model.HistoricalClaim, readBatchSize)
	var rowNum int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := r.reader.Read(buf)
		for i := 0; i < n; i++ {
			rowNum++
			clean(&buf[i])
			if err := fn(&buf[i]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read parquet at row %d: %w", rowNum, readErr)
		}
	}
}

func (s ParquetSource) Load(ctx context.Context) ([]model.HistoricalClaim, error) {
	return collect(ctx, s)
}

// ValidateSchema checks that a snapshot carries the columns the fraud checks need.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}
	var missing []string
	for _, col := range []string{"member_id", "procedure_codes", "amount_cents", "service_date"} {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("history parquet missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// WriteParquet writes claims as a Parquet snapshot readable by ParquetSource.
func WriteParquet(w io.Writer, claims []model.HistoricalClaim) error {
	pw := parquet.NewGenericWriter[model.HistoricalClaim](w)
	if _, err := pw.Write(claims); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
