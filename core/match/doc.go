// Package match reconciles two facility lists that name the same entities inconsistently.
//
// Given a primary table (e.g. a Master Facility List) and a reference table
// (e.g. the DHIS2 facility list), Reconcile produces one Record per primary row
// and one per reference row that no primary row selected, so that every row of
// both inputs is accounted for.
//
// # Algorithm
//
//  1. Key values of both tables are stringified; primary rows are de-duplicated
//     on that string, keeping the first occurrence.
//  2. Exact path: a primary key found verbatim in the reference table takes the
//     first such reference row with score 100 and status Match.
//  3. Fuzzy path: otherwise every reference key is scored with Jaro-Winkler
//     (case-sensitive, no normalisation, 0-100). The first highest-scoring row is
//     attached; the status is Match when the score reaches the threshold.
//  4. Orphans: reference rows whose key string was never selected are appended
//     with status Unmatch and score 0.
//  5. The suggested name is the reference name for confident scores, else the
//     primary name.
//
// Null and empty keys are blank: they never match anything, exactly or fuzzily,
// and blank primary rows are not collapsed by de-duplication.
//
// # Cost
//
// The fuzzy path is O(P*R) similarity evaluations without blocking or indexing,
// which suits facility lists of up to a few thousand rows. Options.Workers spreads
// the per-row search over goroutines without changing the output.
//
// # Usage
//
//	res, err := match.Reconcile(ctx, mfl, dhis2, "hf_name", "orgunit_name", match.Options{
//	    Threshold:      70,
//	    PrimaryLabel:   "MFL",
//	    ReferenceLabel: "DHIS2",
//	})
//	fmt.Println(res.Summary.Matched, res.Summary.Unmatched)
package match
