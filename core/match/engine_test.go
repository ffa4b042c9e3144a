package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"facility-matcher/core/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(col string, values ...any) table.Table {
	rows := make([]table.Record, len(values))
	for i, v := range values {
		rows[i] = table.Record{col: v}
	}
	return table.New("test", []string{col}, rows)
}

func str(s string) *string { return &s }

func TestReconcile_PunctuationVariant(t *testing.T) {
	primary := names("name", "St. Mary Clinic")
	reference := names("name", "St Mary Clinic", "General Hospital")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 80})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	first := res.Records[0]
	assert.Equal(t, str("St. Mary Clinic"), first.NameInPrimary)
	assert.Equal(t, str("St Mary Clinic"), first.NameInReference)
	assert.Equal(t, StatusMatch, first.Status)
	assert.Equal(t, "St Mary Clinic", first.SuggestedName)
	assert.False(t, first.Exact)

	orphan := res.Records[1]
	assert.Nil(t, orphan.NameInPrimary)
	assert.Equal(t, str("General Hospital"), orphan.NameInReference)
	assert.Equal(t, StatusUnmatch, orphan.Status)
	assert.Equal(t, 0.0, orphan.SimilarityScore)
	assert.Equal(t, "General Hospital", orphan.SuggestedName)

	assert.Equal(t, Summary{Total: 2, Matched: 1, Unmatched: 1, Exact: 0, Orphans: 1}, res.Summary)
}

func TestReconcile_ExactBeatsCloserTypo(t *testing.T) {
	primary := names("name", "Kibera Health Centre")
	reference := names("name", "Kibera Health Centr", "Kibera Health Centre")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 100})
	require.NoError(t, err)

	rec := res.Records[0]
	assert.Equal(t, 100.0, rec.SimilarityScore)
	assert.Equal(t, StatusMatch, rec.Status)
	assert.True(t, rec.Exact)
	assert.Equal(t, str("Kibera Health Centre"), rec.NameInReference)

	// The typo row was not selected, so it is an orphan.
	require.Len(t, res.Records, 2)
	assert.Equal(t, str("Kibera Health Centr"), res.Records[1].NameInReference)
}

func TestReconcile_ExactPicksFirstReferenceRow(t *testing.T) {
	primary := names("name", "A Clinic")
	reference := table.New("ref", []string{"name", "code"}, []table.Record{
		{"name": "A Clinic", "code": "first"},
		{"name": "A Clinic", "code": "second"},
	})

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 50})
	require.NoError(t, err)

	// Both reference rows share the selected key, so neither becomes an orphan.
	require.Len(t, res.Records, 1)
	assert.Equal(t, "first", res.Records[0].Fields["reference_code"])
}

func TestReconcile_EmptyReference(t *testing.T) {
	primary := names("name", "Alpha", "Beta")
	reference := table.New("ref", []string{"name"}, nil)

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 70})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	for _, rec := range res.Records {
		assert.Nil(t, rec.NameInReference)
		assert.Equal(t, 0.0, rec.SimilarityScore)
		assert.Equal(t, StatusUnmatch, rec.Status)
		assert.Equal(t, *rec.NameInPrimary, rec.SuggestedName)
	}
	assert.Equal(t, 0, res.Summary.Orphans)
}

func TestReconcile_Errors(t *testing.T) {
	primary := names("name", "Alpha")
	reference := names("facility", "Alpha")
	ctx := context.Background()

	tests := []struct {
		name      string
		primary   table.Table
		reference table.Table
		pKey      string
		rKey      string
		opts      Options
		want      error
	}{
		{"missing primary column", primary, reference, "nope", "facility", Options{Threshold: 70}, ErrInvalidColumn},
		{"missing reference column", primary, reference, "name", "nope", Options{Threshold: 70}, ErrInvalidColumn},
		{"empty primary", table.New("p", []string{"name"}, nil), reference, "name", "facility", Options{Threshold: 70}, ErrEmptyInput},
		{"threshold too high", primary, reference, "name", "facility", Options{Threshold: 101}, ErrInvalidThreshold},
		{"threshold negative", primary, reference, "name", "facility", Options{Threshold: -1}, ErrInvalidThreshold},
		{"same labels", primary, reference, "name", "facility", Options{Threshold: 70, PrimaryLabel: "x", ReferenceLabel: "x"}, ErrInvalidColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Reconcile(ctx, tt.primary, tt.reference, tt.pKey, tt.rKey, tt.opts)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestReconcile_ThresholdBoundary(t *testing.T) {
	primary := names("name", "MARTHA")
	reference := names("name", "MARHTA")
	score := roundScore(JaroWinklerScore("MARTHA", "MARHTA"))

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: score})
	require.NoError(t, err)
	assert.Equal(t, score, res.Records[0].SimilarityScore)
	assert.Equal(t, StatusMatch, res.Records[0].Status)
	assert.Equal(t, "MARHTA", res.Records[0].SuggestedName)

	res, err = Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: score + 0.01})
	require.NoError(t, err)
	assert.Equal(t, StatusUnmatch, res.Records[0].Status)
	assert.Equal(t, "MARTHA", res.Records[0].SuggestedName)
	// Low-confidence candidates are still surfaced for review.
	assert.Equal(t, str("MARHTA"), res.Records[0].NameInReference)
}

func TestReconcile_DeduplicatesPrimary(t *testing.T) {
	primary := table.New("p", []string{"name", "district"}, []table.Record{
		{"name": "Alpha", "district": "North"},
		{"name": "Beta", "district": "South"},
		{"name": "Alpha", "district": "East"},
	})
	reference := names("name", "Alpha", "Beta")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 70})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "North", res.Records[0].Fields["primary_district"])
	assert.Equal(t, str("Beta"), res.Records[1].NameInPrimary)
}

func TestReconcile_NumericKeysStringified(t *testing.T) {
	primary := names("code", int64(101), 102.0)
	reference := names("code", "101", "102")

	res, err := Reconcile(context.Background(), primary, reference, "code", "code", Options{Threshold: 90})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, rec := range res.Records {
		assert.True(t, rec.Exact)
		assert.Equal(t, *rec.NameInPrimary, *rec.NameInReference)
	}
}

func TestReconcile_BlankKeysNeverMatch(t *testing.T) {
	primary := names("name", nil, "", "Alpha")
	reference := names("name", nil, "Alpha")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 0})
	require.NoError(t, err)

	// Two blank primary rows (not collapsed), one matched row, one blank orphan.
	require.Len(t, res.Records, 4)
	for _, rec := range res.Records[:2] {
		assert.Equal(t, str(""), rec.NameInPrimary)
		assert.Nil(t, rec.NameInReference)
		assert.Equal(t, StatusUnmatch, rec.Status)
	}
	assert.True(t, res.Records[2].Exact)

	orphan := res.Records[3]
	assert.Nil(t, orphan.NameInPrimary)
	assert.Equal(t, str(""), orphan.NameInReference)
}

func TestReconcile_NullTokensFromCSVNeverMatch(t *testing.T) {
	primary, err := table.Read("mfl.csv", strings.NewReader("hf\nnan\n Clinic A \n"), table.ReadOptions{})
	require.NoError(t, err)
	reference, err := table.Read("dhis2.csv", strings.NewReader("hf\nNaN\nClinic A\n"), table.ReadOptions{})
	require.NoError(t, err)

	res, err := Reconcile(context.Background(), primary, reference, "hf", "hf", Options{Threshold: 99})
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	null := res.Records[0]
	assert.Equal(t, str(""), null.NameInPrimary)
	assert.Nil(t, null.NameInReference)
	assert.False(t, null.Exact)
	assert.Equal(t, StatusUnmatch, null.Status)

	padded := res.Records[1]
	assert.Equal(t, str(" Clinic A "), padded.NameInPrimary)
	assert.Equal(t, str("Clinic A"), padded.NameInReference)
	assert.False(t, padded.Exact)
	assert.Less(t, padded.SimilarityScore, 99.0)
	assert.Equal(t, StatusUnmatch, padded.Status)

	orphan := res.Records[2]
	assert.Nil(t, orphan.NameInPrimary)
	assert.Equal(t, str(""), orphan.NameInReference)
}

func TestReconcile_NaNKeyIsBlank(t *testing.T) {
	primary := names("name", math.NaN())
	reference := names("name", math.NaN())

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 0})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, StatusUnmatch, res.Records[0].Status)
	assert.Nil(t, res.Records[0].NameInReference)
	assert.Nil(t, res.Records[1].NameInPrimary)
}

func TestReconcile_ZeroScoreCandidateNotAttached(t *testing.T) {
	primary := names("name", "abc")
	reference := names("name", "xyz")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 0})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Nil(t, res.Records[0].NameInReference)
	assert.Equal(t, StatusUnmatch, res.Records[0].Status)
	assert.Equal(t, str("xyz"), res.Records[1].NameInReference)
}

func TestReconcile_FuzzyTieKeepsFirst(t *testing.T) {
	primary := names("name", "Clinic A")
	reference := names("name", "Clinic B", "Clinic C")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 50})
	require.NoError(t, err)
	assert.Equal(t, str("Clinic B"), res.Records[0].NameInReference)
	assert.Equal(t, str("Clinic C"), res.Records[1].NameInReference)
}

func TestReconcile_NamespacedColumns(t *testing.T) {
	primary := table.New("mfl", []string{"hf", "district", "owner"}, []table.Record{
		{"hf": "Alpha", "district": "North", "owner": nil},
	})
	reference := table.New("dhis2", []string{"org", "uid"}, []table.Record{
		{"org": "Alpha", "uid": "x1"},
		{"org": "Gamma", "uid": "x2"},
	})

	res, err := Reconcile(context.Background(), primary, reference, "hf", "org", Options{
		Threshold:      70,
		PrimaryLabel:   "MFL",
		ReferenceLabel: "DHIS2",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"name_in_MFL", "name_in_DHIS2", "similarity_score", "match_status",
		"MFL_district", "MFL_owner", "DHIS2_uid", "suggested_name",
	}, res.Columns)

	row := res.Row(0)
	assert.Equal(t, "Alpha", row["name_in_MFL"])
	assert.Equal(t, "x1", row["DHIS2_uid"])
	assert.Nil(t, row["MFL_owner"])
	assert.Equal(t, "Match", row["match_status"])

	orphan := res.Row(1)
	assert.Nil(t, orphan["name_in_MFL"])
	assert.Nil(t, orphan["MFL_district"])
	assert.Equal(t, "x2", orphan["DHIS2_uid"])

	values := res.Values()
	require.Len(t, values, 2)
	assert.Equal(t, []any{"Alpha", "Alpha", 100.0, "Match", "North", nil, "x1", "Alpha"}, values[0])
}

func TestReconcile_EveryReferenceRowAccountedFor(t *testing.T) {
	primary := names("name", "Alpha Clinic", "Beta Hospital", "Gama Dispensary", "Delta")
	reference := names("name", "Alpha Clinik", "Beta Hospital", "Gamma Dispensary", "Epsilon HC", "Zeta")

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 85})
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, rec := range res.Records {
		if rec.NameInReference != nil {
			counts[*rec.NameInReference]++
		}
		assert.False(t, rec.NameInPrimary == nil && rec.NameInReference == nil)
	}
	for _, r := range reference.Rows {
		assert.Equal(t, 1, counts[r["name"].(string)], "reference %v", r["name"])
	}

	orphans := res.Summary.Orphans
	assert.Equal(t, primary.Len()+orphans, len(res.Records))
	assert.Equal(t, res.Summary.Matched+res.Summary.Unmatched, res.Summary.Total)
}

func TestReconcile_Deterministic(t *testing.T) {
	primary := names("name", "Alpha Clinic", "Beta Hospital", "Gama Dispensary")
	reference := names("name", "Alpha Clinik", "Gamma Dispensary", "Beta Hosp")
	opts := Options{Threshold: 80}

	first, err := Reconcile(context.Background(), primary, reference, "name", "name", opts)
	require.NoError(t, err)
	second, err := Reconcile(context.Background(), primary, reference, "name", "name", opts)
	require.NoError(t, err)

	assert.Equal(t, first.Rows(), second.Rows())
}

func TestReconcile_ParallelMatchesSequential(t *testing.T) {
	var pNames, rNames []any
	for i := 0; i < 60; i++ {
		pNames = append(pNames, fmt.Sprintf("Health Centre %03d", i))
		if i%3 != 0 {
			rNames = append(rNames, fmt.Sprintf("Health Center %03d", i))
		}
	}
	primary := names("name", pNames...)
	reference := names("name", rNames...)

	seq, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 90})
	require.NoError(t, err)
	par, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 90, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, seq.Rows(), par.Rows())
	assert.Equal(t, seq.Summary, par.Summary)
}

func TestReconcile_CustomSimilarity(t *testing.T) {
	primary := names("name", "a")
	reference := names("name", "b", "c")

	constant := func(a, b string) float64 {
		if b == "c" {
			return 75
		}
		return 10
	}

	res, err := Reconcile(context.Background(), primary, reference, "name", "name", Options{Threshold: 70, Similarity: constant})
	require.NoError(t, err)
	assert.Equal(t, str("c"), res.Records[0].NameInReference)
	assert.Equal(t, 75.0, res.Records[0].SimilarityScore)
}

func TestReconcile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Reconcile(ctx, names("name", "a"), names("name", "b"), "name", "name", Options{Threshold: 70})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_MarshalJSON(t *testing.T) {
	res, err := Reconcile(context.Background(), names("name", "a"), names("name", "a"), "name", "name", Options{Threshold: 70})
	require.NoError(t, err)

	data, err := res.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"columns": ["name_in_primary", "name_in_reference", "similarity_score", "match_status", "suggested_name"],
		"rows": [{"name_in_primary": "a", "name_in_reference": "a", "similarity_score": 100, "match_status": "Match", "suggested_name": "a"}],
		"summary": {"total": 1, "matched": 1, "unmatched": 0, "exact": 1, "orphans": 0}
	}`, string(data))
}
