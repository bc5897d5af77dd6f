package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AltKhyin/reviewcanvas/internal/app"
	"github.com/AltKhyin/reviewcanvas/internal/document"
)

type idList []int64

func (l *idList) String() string {
	parts := make([]string, len(*l))
	for i, id := range *l {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (l *idList) Set(v string) error {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid review id %q", v)
	}
	*l = append(*l, id)
	return nil
}

func main() {
	var reviews idList
	var dryRun bool
	var limit int
	var concurrency int
	flag.Var(&reviews, "review", "review id to migrate (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "report affected reviews without writing")
	flag.IntVar(&limit, "limit", 0, "limit number of reviews processed")
	flag.IntVar(&concurrency, "concurrency", 0, "parallel workers (0 = default)")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()

	ids := []int64(reviews)
	if len(ids) == 0 {
		ids, err = application.Repos.Review.ListIDs(ctx, nil)
		if err != nil {
			fmt.Printf("list reviews: %v\n", err)
			os.Exit(1)
		}
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	if dryRun {
		affected := 0
		for _, id := range ids {
			record, err := application.Services.Persistence.Load(ctx, id)
			if err != nil {
				fmt.Printf("[dry-run] review %d: load failed: %v\n", id, err)
				continue
			}
			if record == nil || (record.Document == nil && len(record.Raw) == 0) {
				continue
			}
			if record.Document == nil {
				fmt.Printf("[dry-run] review %d: stored as %s, would lift to canonical\n", id, record.Classification.Format)
				affected++
				continue
			}
			tables := 0
			for _, n := range record.Document.Nodes {
				if n.Type == document.TypeTable {
					tables++
				}
			}
			if tables > 0 {
				fmt.Printf("[dry-run] review %d: %d deprecated table block(s)\n", id, tables)
				affected++
			}
		}
		fmt.Printf("done; %d of %d reviews would change\n", affected, len(ids))
		return
	}

	report, err := application.Services.Migrations.RunBatch(ctx, ids, concurrency)
	if err != nil {
		fmt.Printf("batch failed: %v\n", err)
		os.Exit(1)
	}
	for _, r := range report.Results {
		if r.Error != "" {
			fmt.Printf("review %d: FAILED: %s\n", r.ReviewID, r.Error)
		}
	}
	fmt.Printf("done; processed=%d succeeded=%d skipped=%d failed=%d elapsed=%s avg_reduction=%.2f\n",
		report.Processed, report.Succeeded, report.Skipped, report.Failed,
		report.Elapsed, report.AvgComplexityReduction)
}
