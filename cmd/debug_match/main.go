// Command debug_match dumps how a single name scores against a reference list.
//
//	go run ./cmd/debug_match -reference dhis2.csv -column OrgUnit -name "Beta Hospital"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"facility-matcher/core/match"
	"facility-matcher/core/table"

	"github.com/davecgh/go-spew/spew"
)

type scored struct {
	Row   int
	Name  string
	Score float64
}

func main() {
	refPath := flag.String("reference", "", "reference list file")
	column := flag.String("column", "", "name column in the reference list")
	name := flag.String("name", "", "facility name to look up")
	top := flag.Int("top", 5, "number of candidates to show")
	flag.Parse()

	if *refPath == "" || *column == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*refPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	ref, err := table.Read(filepath.Base(*refPath), f, table.ReadOptions{})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("=== Candidates ===")
	var all []scored
	for i, row := range ref.Rows {
		s, ok := row[*column].(string)
		if !ok {
			s = fmt.Sprint(row[*column])
		}
		all = append(all, scored{Row: i, Name: s, Score: match.JaroWinklerScore(*name, s)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > *top {
		all = all[:*top]
	}
	spew.Dump(all)

	fmt.Println("\n=== Reconciled record ===")
	primary := table.New("debug", []string{"name"}, []table.Record{{"name": *name}})
	res, err := match.Reconcile(context.Background(), primary, ref, "name", *column, match.Options{Threshold: 70})
	if err != nil {
		log.Fatal(err)
	}
	spew.Dump(res.Records[0])
	spew.Dump(res.Summary)
}
