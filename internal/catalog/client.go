package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kosztorapp/kosztor/internal/api"
	"github.com/kosztorapp/kosztor/internal/numeric"
)

// Source identifies one of the two price-catalog databases.
type Source string

// Catalog sources.
const (
	SourceBCJ Source = "bcj"
	SourceWKI Source = "wki"
)

// Row is one priced catalog entry, normalized from the upstream
// SYMBOL/OPIS/JM/CENA_SR shape.
type Row struct {
	Symbol      string
	Description string
	Unit        string
	Price       float64

	// BCJ grouping fields.
	Catalog string
	Group   string

	// WKI grouping fields.
	Gr  string
	Pgr string
}

// wireRow tolerates the upstream field variants: JM vs JM_NAZWA for the
// unit, and CENA_SR arriving as either a number or a string with a
// decimal comma.
type wireRow struct {
	Symbol  string          `json:"SYMBOL"`
	Opis    string          `json:"OPIS"`
	JM      string          `json:"JM"`
	JMNazwa string          `json:"JM_NAZWA"`
	CenaSr  json.RawMessage `json:"CENA_SR"`
	Catalog string          `json:"catalog"`
	Group   string          `json:"group"`
	Gr      string          `json:"gr"`
	Pgr     string          `json:"pgr"`
}

func (w wireRow) toRow() Row {
	unit := w.JMNazwa
	if unit == "" {
		unit = w.JM
	}
	if unit == "" {
		unit = "szt"
	}
	return Row{
		Symbol:      w.Symbol,
		Description: w.Opis,
		Unit:        unit,
		Price:       parsePrice(w.CenaSr),
		Catalog:     w.Catalog,
		Group:       w.Group,
		Gr:          w.Gr,
		Pgr:         w.Pgr,
	}
}

func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return numeric.Round2(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return numeric.Round2(numeric.ParseDecimal(s))
	}
	return 0
}

// SearchParams narrow a catalog search beyond the free-text query.
type SearchParams struct {
	DBKey string

	// Query is the raw user query in NORMA syntax. The positive terms
	// go to the backend; wildcards and exclusions are applied here.
	Query string

	// BCJ filters.
	Catalog string
	Group   string

	// WKI filters.
	Gr  string
	Pgr string
}

// Searcher queries the catalog endpoints through the shared API client.
type Searcher struct {
	client *api.Client
}

// NewSearcher wraps an API client for catalog searches.
func NewSearcher(client *api.Client) *Searcher {
	return &Searcher{client: client}
}

// Search runs a remote search against one source and post-filters the
// rows with the full query semantics (wildcards, exclusions,
// diacritic-insensitive matching), ordered by rank.
func (s *Searcher) Search(ctx context.Context, source Source, params SearchParams) ([]Row, error) {
	q := url.Values{}
	q.Set("db_key", params.DBKey)
	q.Set("search", BackendQuery(params.Query))
	switch source {
	case SourceBCJ:
		if params.Catalog != "" {
			q.Set("catalog", params.Catalog)
		}
		if params.Group != "" {
			q.Set("group", params.Group)
		}
	case SourceWKI:
		if params.Gr != "" {
			q.Set("gr", params.Gr)
		}
		if params.Pgr != "" {
			q.Set("pgr", params.Pgr)
		}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}

	var wire []wireRow
	path := "/api/sekocenbud/search/" + strings.ToLower(string(source))
	if err := s.client.Get(ctx, path, q, &wire); err != nil {
		return nil, fmt.Errorf("searching %s: %w", source, err)
	}

	rows := make([]Row, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, w.toRow())
	}
	return Filter(rows, params.Query), nil
}
