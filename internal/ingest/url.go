package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/intelfuse-ai/intelfuse/internal/fetch"
	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// ParseURLs fetches and classifies each URL from newline-delimited
// input; blank lines are skipped. A URL that fails to fetch becomes a
// warning naming the URL and never aborts the rest of the batch. Both
// records and warnings preserve URL input order even though fetches
// run concurrently.
func ParseURLs(ctx context.Context, fetcher fetch.Fetcher, urlText string, workers int) ([]report.Record, []string) {
	var urls []string
	for _, line := range strings.Split(urlText, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	type result struct {
		page fetch.Page
		err  error
	}
	results := make([]result, len(urls))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			page, err := fetcher.Fetch(ctx, url)
			results[i] = result{page: page, err: err}
		}(i, url)
	}
	wg.Wait()

	var records []report.Record
	var warnings []string
	for i, res := range results {
		if res.err != nil {
			warnings = append(warnings, fmt.Sprintf("Could not parse %s: %v", urls[i], res.err))
			continue
		}
		records = append(records, classifiedRecord("URL: "+urls[i], res.page.Text()))
	}
	return records, warnings
}
