package extract

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for content types the extractor has no parser for.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedInput is returned when a structured document cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")
)

// Format is the closed set of document formats the extractor understands.
type Format int

const (
	FormatJSON Format = iota + 1
	FormatXML
	FormatPDF
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatXML:
		return "xml"
	case FormatPDF:
		return "pdf"
	case FormatText:
		return "text"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat resolves a declared content type, ignoring parameters such as charset.
func ParseFormat(contentType string) (Format, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case mt == "application/json", mt == "text/json", strings.HasSuffix(mt, "+json"):
		return FormatJSON, nil
	case mt == "application/xml", mt == "text/xml", strings.HasSuffix(mt, "+xml"):
		return FormatXML, nil
	case mt == "application/pdf":
		return FormatPDF, nil
	case mt == "text/plain":
		return FormatText, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
}

// FormatForExtension maps a file extension to the content type the CLI declares for it.
func FormatForExtension(ext string) (string, bool) {
	switch strings.ToLower(ext) {
	case ".json":
		return "application/json", true
	case ".xml":
		return "application/xml", true
	case ".pdf":
		return "application/pdf", true
	case ".txt":
		return "text/plain", true
	}
	return "", false
}
