// Package portal implements the demo search backends: a full-text index of
// sample GWAS and gene records and a static list of mine web properties.
package portal

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/pthm/hxsearch"
	"github.com/pthm/hxsearch/elements"
	"go.uber.org/zap"
)

// ErrInvalidPage is returned for pages below 1.
var ErrInvalidPage = errors.New("portal: invalid page")

const (
	kindGWAS = "gwas"
	kindGene = "gene"
)

// document is what gets indexed. Records are served from the catalogs by
// ID; the index only ranks them.
type document struct {
	Kind  string `json:"kind"`
	Genus string `json:"genus"`
	Text  string `json:"text"`
}

// Index is an in-memory full-text index over the sample catalogs.
type Index struct {
	idx      bleve.Index
	logger   *zap.Logger
	pageSize int
	gwas     map[string]elements.GWASSearchResult
	genes    map[string]elements.GeneSearchResult
}

// NewIndex builds the index. pageSize is the number of results per page.
func NewIndex(logger *zap.Logger, pageSize int) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("portal: page size must be positive, got %d", pageSize)
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	s := &Index{
		idx:      idx,
		logger:   logger,
		pageSize: pageSize,
		gwas:     make(map[string]elements.GWASSearchResult, len(gwasCatalog)),
		genes:    make(map[string]elements.GeneSearchResult, len(geneCatalog)),
	}

	batch := idx.NewBatch()
	for i, r := range gwasCatalog {
		id := kindGWAS + ":" + strconv.Itoa(i)
		s.gwas[id] = r
		doc := document{Kind: kindGWAS, Genus: r.OrganismGenus, Text: r.Identifier + " " + r.Synopsis + " " + r.Genotypes + " " + r.OrganismName}
		if err := batch.Index(id, doc); err != nil {
			return nil, fmt.Errorf("failed to add %s to batch: %w", id, err)
		}
	}
	for i, r := range geneCatalog {
		id := kindGene + ":" + strconv.Itoa(i)
		s.genes[id] = r
		doc := document{Kind: kindGene, Genus: r.Genus, Text: r.Identifier + " " + r.Name + " " + r.Description}
		if err := batch.Index(id, doc); err != nil {
			return nil, fmt.Errorf("failed to add %s to batch: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to index catalogs: %w", err)
	}

	logger.Info("portal index built",
		zap.Int("gwas", len(s.gwas)),
		zap.Int("genes", len(s.genes)),
	)
	return s, nil
}

// Close releases the index.
func (s *Index) Close() error {
	return s.idx.Close()
}

// SearchGWAS matches GWAS descriptions.
func (s *Index) SearchGWAS(ctx context.Context, q elements.GWASSearchData, page int, opts hxsearch.SearchOptions) ([]elements.GWASSearchResult, error) {
	ids, err := s.search(ctx, kindGWAS, len(s.gwas), textQuery(q.Query), page, opts)
	if err != nil {
		return nil, err
	}
	out := make([]elements.GWASSearchResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.gwas[id])
	}
	return out, nil
}

// SearchGenes matches gene identifiers, names and descriptions, optionally
// restricted to a genus.
func (s *Index) SearchGenes(ctx context.Context, q elements.GeneSearchData, page int, opts hxsearch.SearchOptions) ([]elements.GeneSearchResult, error) {
	var extra []query.Query
	if q.Genus != "" {
		genus := bleve.NewMatchQuery(q.Genus)
		genus.SetField("genus")
		extra = append(extra, genus)
	}
	ids, err := s.search(ctx, kindGene, len(s.genes), textQuery(q.Query), page, opts, extra...)
	if err != nil {
		return nil, err
	}
	out := make([]elements.GeneSearchResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.genes[id])
	}
	return out, nil
}

// ListMines pages through the mine web properties.
func (s *Index) ListMines(_ context.Context, _ elements.MineWebPropertiesData, page int, _ hxsearch.SearchOptions) ([]elements.MineWebPropertiesResult, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	from, ok := s.offset(page, len(mineCatalog))
	if !ok {
		return []elements.MineWebPropertiesResult{}, nil
	}
	to := min(from+s.pageSize, len(mineCatalog))
	return append([]elements.MineWebPropertiesResult(nil), mineCatalog[from:to]...), nil
}

// Functions returns the index's search functions for elements.Init.
func (s *Index) Functions() elements.Functions {
	return elements.Functions{
		GWAS:              s.SearchGWAS,
		MineWebProperties: s.ListMines,
		Gene:              s.SearchGenes,
	}
}

func textQuery(text string) query.Query {
	q := bleve.NewMatchQuery(text)
	q.SetField("text")
	return q
}

// offset returns the position of page's first record among total records.
// It reports false when the page starts past the end, which also covers
// pages too large to multiply out.
func (s *Index) offset(page, total int) (int, bool) {
	if page-1 >= (total+s.pageSize-1)/s.pageSize {
		return 0, false
	}
	return (page - 1) * s.pageSize, true
}

func (s *Index) search(ctx context.Context, kind string, total int, text query.Query, page int, opts hxsearch.SearchOptions, extra ...query.Query) ([]string, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	from, ok := s.offset(page, total)
	if !ok {
		return []string{}, nil
	}

	kindQuery := bleve.NewTermQuery(kind)
	kindQuery.SetField("kind")
	q := bleve.NewConjunctionQuery(append([]query.Query{kindQuery, text}, extra...)...)

	req := bleve.NewSearchRequestOptions(q, s.pageSize, from, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		s.logger.Warn("search failed",
			zap.String("kind", kind),
			zap.String("search_id", opts.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	s.logger.Debug("search",
		zap.String("kind", kind),
		zap.String("search_id", opts.ID.String()),
		zap.Int("page", page),
		zap.Uint64("total", res.Total),
		zap.Int("hits", len(ids)),
	)
	return ids, nil
}
