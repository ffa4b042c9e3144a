package match

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidColumn is returned when a key column is missing from its table.
	ErrInvalidColumn = errors.New("invalid column")
	// ErrEmptyInput is returned when the primary table has no rows.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidThreshold is returned when the threshold is outside [0, 100].
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// Status classifies a pairing relative to the threshold.
type Status string

const (
	// StatusMatch marks a pairing accepted with confidence.
	StatusMatch Status = "Match"
	// StatusUnmatch marks a pairing below the threshold, or a row with no counterpart.
	StatusUnmatch Status = "Unmatch"
)

// Default labels used to namespace output columns.
const (
	DefaultPrimaryLabel   = "primary"
	DefaultReferenceLabel = "reference"
)

// Options configures a reconciliation run.
type Options struct {
	// Threshold is the minimum score (0-100) for a fuzzy candidate to count as a Match.
	Threshold float64

	// PrimaryLabel namespaces primary columns ("name_in_<label>", "<label>_<col>").
	PrimaryLabel string

	// ReferenceLabel namespaces reference columns.
	ReferenceLabel string

	// Workers bounds the number of primary rows searched concurrently.
	// Zero or one runs the search sequentially.
	Workers int

	// Similarity overrides the scoring function. Defaults to JaroWinklerScore.
	Similarity SimilarityFunc
}

func (o Options) withDefaults() Options {
	if o.PrimaryLabel == "" {
		o.PrimaryLabel = DefaultPrimaryLabel
	}
	if o.ReferenceLabel == "" {
		o.ReferenceLabel = DefaultReferenceLabel
	}
	if o.Similarity == nil {
		o.Similarity = JaroWinklerScore
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}

func (o Options) validate() error {
	if o.Threshold < 0 || o.Threshold > 100 || o.Threshold != o.Threshold {
		return fmt.Errorf("%w: %v not in [0, 100]", ErrInvalidThreshold, o.Threshold)
	}
	if o.PrimaryLabel == o.ReferenceLabel {
		return fmt.Errorf("%w: primary and reference labels are both %q", ErrInvalidColumn, o.PrimaryLabel)
	}
	return nil
}

// Record is one reconciled pairing. Either name may be nil, never both.
type Record struct {
	// NameInPrimary is the stringified primary key, nil for orphan reference rows.
	NameInPrimary *string

	// NameInReference is the selected reference key, nil when no candidate exists.
	NameInReference *string

	// SimilarityScore is in [0, 100], rounded to two decimals.
	SimilarityScore float64

	// Status is Match or Unmatch.
	Status Status

	// SuggestedName is the canonical name proposed for the entity.
	SuggestedName string

	// Exact is true when the pairing came from exact key equality.
	Exact bool

	// Fields holds the namespaced passthrough columns of both sources.
	Fields map[string]any
}

// Summary holds the counts shown next to a result.
type Summary struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Exact     int `json:"exact"`
	Orphans   int `json:"orphans"`
}

// layout names the fixed output columns for a pair of labels.
type layout struct {
	nameInPrimary   string
	nameInReference string
	score           string
	status          string
	suggested       string
}

func newLayout(primaryLabel, referenceLabel string) layout {
	return layout{
		nameInPrimary:   "name_in_" + primaryLabel,
		nameInReference: "name_in_" + referenceLabel,
		score:           "similarity_score",
		status:          "match_status",
		suggested:       "suggested_name",
	}
}

// Result is the reconciled table returned to the caller.
type Result struct {
	// Columns is the output column order.
	Columns []string

	// Records are primary-derived records in primary order, followed by orphans in reference order.
	Records []Record

	// Summary counts the records by status.
	Summary Summary

	layout layout
}

// Row flattens record i into a column -> value map.
func (r *Result) Row(i int) map[string]any {
	rec := r.Records[i]
	row := make(map[string]any, len(rec.Fields)+5)
	for k, v := range rec.Fields {
		row[k] = v
	}
	row[r.layout.nameInPrimary] = nameValue(rec.NameInPrimary)
	row[r.layout.nameInReference] = nameValue(rec.NameInReference)
	row[r.layout.score] = rec.SimilarityScore
	row[r.layout.status] = string(rec.Status)
	row[r.layout.suggested] = rec.SuggestedName
	return row
}

// Rows flattens every record.
func (r *Result) Rows() []map[string]any {
	rows := make([]map[string]any, len(r.Records))
	for i := range r.Records {
		rows[i] = r.Row(i)
	}
	return rows
}

// Values returns every record as a slice ordered like Columns, ready for export.
func (r *Result) Values() [][]any {
	out := make([][]any, len(r.Records))
	for i := range r.Records {
		row := r.Row(i)
		vals := make([]any, len(r.Columns))
		for j, c := range r.Columns {
			vals[j] = row[c]
		}
		out[i] = vals
	}
	return out
}

// MarshalJSON renders the result as columns, flattened rows and summary.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
		Summary Summary          `json:"summary"`
	}{
		Columns: r.Columns,
		Rows:    r.Rows(),
		Summary: r.Summary,
	})
}

func nameValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
