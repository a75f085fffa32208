package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gyeh/claimsadj/internal/model"
)

// Parsed is what a format parser recovered from raw bytes. Fields is nil when
// the format carries no structure; Text is always the document's plain text.
type Parsed struct {
	Fields model.RawFields
	Text   string
}

// Parser decodes one document format.
type Parser interface {
	Parse(ctx context.Context, b []byte) (*Parsed, error)
}

// JSONParser decodes a JSON object. Numbers are kept as json.Number.
type JSONParser struct{}

func (JSONParser) Parse(_ context.Context, b []byte) (*Parsed, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrMalformedInput, err)
	}
	p := &Parsed{Text: string(b)}
	if m, ok := v.(map[string]any); ok {
		p.Fields = model.RawFields(m)
	}
	return p, nil
}

// XMLParser flattens the root element's children into a mapping: text leaves
// become strings, nested elements become nested mappings, and repeated tags
// become lists in document order.
type XMLParser struct{}

func (XMLParser) Parse(_ context.Context, b []byte) (*Parsed, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: xml document has no root element", ErrMalformedInput)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decode xml: %v", ErrMalformedInput, err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			v, err := xmlElement(dec, &text)
			if err != nil {
				return nil, fmt.Errorf("%w: decode xml: %v", ErrMalformedInput, err)
			}
			p := &Parsed{Text: text.String()}
			if m, ok := v.(model.RawFields); ok {
				p.Fields = m
			} else {
				p.Fields = model.RawFields{}
			}
			return p, nil
		}
	}
}

// xmlElement consumes tokens up to the end of the current element.
func xmlElement(dec *xml.Decoder, text *strings.Builder) (any, error) {
	var (
		children model.RawFields
		chars    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := xmlElement(dec, text)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = model.RawFields{}
			}
			name := t.Name.Local
			switch prev := children[name].(type) {
			case nil:
				children[name] = child
			case []any:
				children[name] = append(prev, child)
			default:
				children[name] = []any{prev, child}
			}
		case xml.CharData:
			chars.Write(t)
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			s := strings.TrimSpace(chars.String())
			if s != "" {
				text.WriteString(s)
				text.WriteByte('\n')
			}
			return s, nil
		}
	}
}

// TextParser treats the bytes as plain UTF-8 text.
type TextParser struct{}

func (TextParser) Parse(_ context.Context, b []byte) (*Parsed, error) {
	return &Parsed{Text: toUTF8(b)}, nil
}

func toUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "")
}
