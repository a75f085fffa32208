package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns a PDF document into its concatenated page text.
type TextExtractor interface {
	ExtractText(ctx context.Context, b []byte) (string, error)
}

// PDFText is the default TextExtractor.
type PDFText struct{}

func (PDFText) ExtractText(_ context.Context, b []byte) (text string, err error) {
	// The pdf reader panics on some corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return buf.String(), nil
}

// PDFParser extracts text from a PDF; the result carries no structured fields.
type PDFParser struct {
	Text TextExtractor
}

func (p PDFParser) Parse(ctx context.Context, b []byte) (*Parsed, error) {
	te := p.Text
	if te == nil {
		te = PDFText{}
	}
	text, err := te.ExtractText(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return &Parsed{Text: text}, nil
}
