package match

import (
	"context"
	"fmt"
	"math"

	"facility-matcher/core/table"
	"facility-matcher/core/utils"

	"golang.org/x/sync/errgroup"
)

// key is the stringified match-column value of one row.
// Blank keys (nil or empty) never take part in exact or fuzzy matching.
type key struct {
	text  string
	blank bool
}

// candidate is the outcome of searching the reference table for one primary row.
type candidate struct {
	index int // reference row index, -1 when none
	score float64
	exact bool
}

// Reconcile pairs every row of primary with its best counterpart in reference.
//
// Primary rows are de-duplicated on their stringified key (first occurrence wins).
// Each remaining row takes the first reference row with an identical key (score 100),
// or else the first reference row with the highest similarity score. Reference rows
// whose key was never selected are appended as orphans, in reference order.
func Reconcile(ctx context.Context, primary, reference table.Table, primaryKey, referenceKey string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if !primary.HasColumn(primaryKey) {
		return nil, fmt.Errorf("%w: %q not found in %s table", ErrInvalidColumn, primaryKey, opts.PrimaryLabel)
	}
	if !reference.HasColumn(referenceKey) {
		return nil, fmt.Errorf("%w: %q not found in %s table", ErrInvalidColumn, referenceKey, opts.ReferenceLabel)
	}
	if primary.Len() == 0 {
		return nil, fmt.Errorf("%w: %s table has no rows", ErrEmptyInput, opts.PrimaryLabel)
	}

	primaryRows, primaryKeys := dedupe(primary.Rows, stringifyKeys(primary.Rows, primaryKey))
	referenceKeys := stringifyKeys(reference.Rows, referenceKey)

	firstExact := make(map[string]int, len(referenceKeys))
	for i, k := range referenceKeys {
		if k.blank {
			continue
		}
		if _, ok := firstExact[k.text]; !ok {
			firstExact[k.text] = i
		}
	}

	search := func(i int) candidate {
		k := primaryKeys[i]
		if k.blank {
			return candidate{index: -1}
		}
		if j, ok := firstExact[k.text]; ok {
			return candidate{index: j, score: 100, exact: true}
		}
		return bestCandidate(k.text, referenceKeys, opts.Similarity)
	}

	found, err := searchAll(ctx, len(primaryRows), opts.Workers, search)
	if err != nil {
		return nil, err
	}

	lay := newLayout(opts.PrimaryLabel, opts.ReferenceLabel)
	primaryCols := passthroughColumns(primary.Columns, primaryKey, opts.PrimaryLabel)
	referenceCols := passthroughColumns(reference.Columns, referenceKey, opts.ReferenceLabel)

	records := make([]Record, 0, len(primaryRows)+len(reference.Rows))
	selected := make(map[string]struct{}, len(primaryRows))

	for i, row := range primaryRows {
		c := found[i]
		name := primaryKeys[i].text
		rec := Record{
			NameInPrimary:   &name,
			SimilarityScore: c.score,
			Status:          classify(c, opts.Threshold),
			Exact:           c.exact,
			Fields:          make(map[string]any, len(primaryCols)+len(referenceCols)),
		}
		project(rec.Fields, row, primaryCols)

		if c.index >= 0 {
			refName := referenceKeys[c.index].text
			rec.NameInReference = &refName
			selected[refName] = struct{}{}
			project(rec.Fields, reference.Rows[c.index], referenceCols)
		} else {
			project(rec.Fields, nil, referenceCols)
		}

		records = append(records, rec)
	}

	for j, row := range reference.Rows {
		k := referenceKeys[j]
		if !k.blank {
			if _, ok := selected[k.text]; ok {
				continue
			}
		}
		name := k.text
		rec := Record{
			NameInReference: &name,
			Status:          StatusUnmatch,
			Fields:          make(map[string]any, len(primaryCols)+len(referenceCols)),
		}
		project(rec.Fields, nil, primaryCols)
		project(rec.Fields, row, referenceCols)
		records = append(records, rec)
	}

	summary := Summary{Total: len(records)}
	for i := range records {
		rec := &records[i]
		rec.SuggestedName = suggest(*rec, opts.Threshold)
		if rec.Status == StatusMatch {
			summary.Matched++
		} else {
			summary.Unmatched++
		}
		if rec.Exact {
			summary.Exact++
		}
		if rec.NameInPrimary == nil {
			summary.Orphans++
		}
	}

	return &Result{
		Columns: outputColumns(lay, primaryCols, referenceCols),
		Records: records,
		Summary: summary,
		layout:  lay,
	}, nil
}

// searchAll runs search for every index, in parallel when workers > 1.
// Results land in index order either way.
func searchAll(ctx context.Context, n, workers int, search func(int) candidate) ([]candidate, error) {
	found := make([]candidate, n)

	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			found[i] = search(i)
		}
		return found, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found[i] = search(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// bestCandidate scans every reference key in order and keeps the first highest score.
// A candidate is only kept when it scores above zero.
func bestCandidate(name string, referenceKeys []key, similarity SimilarityFunc) candidate {
	best := candidate{index: -1}
	for j, k := range referenceKeys {
		if k.blank {
			continue
		}
		score := similarity(name, k.text)
		if score > best.score {
			best.score = score
			best.index = j
		}
	}
	best.score = roundScore(best.score)
	return best
}

// classify reports Unmatch for a row without any candidate, even at threshold 0.
func classify(c candidate, threshold float64) Status {
	if c.index < 0 {
		return StatusUnmatch
	}
	if c.exact || c.score >= threshold {
		return StatusMatch
	}
	return StatusUnmatch
}

// suggest prefers the reference name for confident scores, the primary name otherwise,
// and falls back to whichever name exists.
func suggest(rec Record, threshold float64) string {
	preferred, fallback := rec.NameInPrimary, rec.NameInReference
	if rec.SimilarityScore >= threshold {
		preferred, fallback = rec.NameInReference, rec.NameInPrimary
	}
	if preferred != nil {
		return *preferred
	}
	if fallback != nil {
		return *fallback
	}
	return ""
}

func stringifyKeys(rows []table.Record, col string) []key {
	keys := make([]key, len(rows))
	for i, row := range rows {
		if f, ok := row[col].(float64); ok && math.IsNaN(f) {
			keys[i] = key{blank: true}
			continue
		}
		text := utils.ToString(row[col])
		keys[i] = key{text: text, blank: text == ""}
	}
	return keys
}

// dedupe drops rows whose non-blank key was already seen, preserving order.
func dedupe(rows []table.Record, keys []key) ([]table.Record, []key) {
	seen := make(map[string]struct{}, len(rows))
	outRows := make([]table.Record, 0, len(rows))
	outKeys := make([]key, 0, len(rows))
	for i, row := range rows {
		k := keys[i]
		if !k.blank {
			if _, dup := seen[k.text]; dup {
				continue
			}
			seen[k.text] = struct{}{}
		}
		outRows = append(outRows, row)
		outKeys = append(outKeys, k)
	}
	return outRows, outKeys
}

// column maps a source column to its namespaced output name.
type column struct {
	source string
	output string
}

func passthroughColumns(cols []string, keyCol, label string) []column {
	out := make([]column, 0, len(cols))
	for _, c := range cols {
		if c == keyCol {
			continue
		}
		out = append(out, column{source: c, output: label + "_" + c})
	}
	return out
}

// project copies cols from row into dst; a nil row yields nil values.
func project(dst map[string]any, row table.Record, cols []column) {
	for _, c := range cols {
		if row == nil {
			dst[c.output] = nil
			continue
		}
		dst[c.output] = row[c.source]
	}
}

func outputColumns(lay layout, primaryCols, referenceCols []column) []string {
	cols := make([]string, 0, 5+len(primaryCols)+len(referenceCols))
	cols = append(cols, lay.nameInPrimary, lay.nameInReference, lay.score, lay.status)
	for _, c := range primaryCols {
		cols = append(cols, c.output)
	}
	for _, c := range referenceCols {
		cols = append(cols, c.output)
	}
	return append(cols, lay.suggested)
}
