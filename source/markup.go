package source

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/zalepa/assaultstats/stats"
)

// DefaultRecordElement is the element wrapping one row in the open-data feed:
// <root><records><item><state_ut>…</state_ut>…</item></records></root>.
const DefaultRecordElement = "item"

// XMLReader reads the markup feed from a URL, a file or an io.Reader, in that
// order of preference.
type XMLReader struct {
	URL    string
	Path   string
	R      io.Reader
	Client *http.Client
	// RecordElement defaults to DefaultRecordElement.
	RecordElement string
}

func (x *XMLReader) Aliases() stats.Aliases { return MarkupAliases }

func (x *XMLReader) Read(ctx context.Context) ([]stats.Raw, error) {
	name := x.Path
	var r io.Reader
	switch {
	case x.URL != "":
		name = x.URL
		body, err := Get(ctx, x.Client, x.URL)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		r = body
	case x.R != nil:
		r = x.R
	default:
		f, err := os.Open(x.Path)
		if err != nil {
			return nil, unavailable(x.Path, err)
		}
		defer f.Close()
		r = f
	}

	elem := x.RecordElement
	if elem == "" {
		elem = DefaultRecordElement
	}
	rows, err := ParseMarkup(r, elem)
	if err != nil {
		return nil, unavailable(name, err)
	}
	return rows, nil
}

// ParseMarkup flattens every record element into a raw row keyed by the local
// names of its child elements. Elements nested below a field are ignored.
func ParseMarkup(r io.Reader, recordElement string) ([]stats.Raw, error) {
	dec := xml.NewDecoder(r)
	var (
		rows  []stats.Raw
		cur   stats.Raw
		field string
		depth int // depth below the current record element
		text  strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case cur == nil && t.Name.Local == recordElement:
				cur = make(stats.Raw)
				depth = 0
			case cur != nil:
				depth++
				if depth == 1 {
					field = t.Name.Local
					text.Reset()
				}
			}
		case xml.CharData:
			if cur != nil && depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if cur == nil {
				continue
			}
			if depth == 0 {
				rows = append(rows, cur)
				cur = nil
				continue
			}
			if depth == 1 {
				cur[field] = strings.TrimSpace(text.String())
			}
			depth--
		}
	}
	if cur != nil {
		return nil, io.ErrUnexpectedEOF
	}
	return rows, nil
}
