package ingest

import (
	"context"
	"sync"

	"github.com/intelfuse-ai/intelfuse/internal/classify"
	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/redact"
	"github.com/intelfuse-ai/intelfuse/internal/report"
)

// defaultWorkers bounds concurrent extractions and fetches when the
// caller does not.
const defaultWorkers = 4

// Document is one binary input to the document adapter.
type Document struct {
	Name string
	Data []byte
}

// ParseDocuments extracts, scrubs and classifies each document,
// emitting exactly one record per document with a document-derived
// source label. Extraction runs concurrently across documents but the
// record list preserves input order. Any extraction failure is fatal
// for the whole batch.
func ParseDocuments(ctx context.Context, extractor extract.Extractor, docs []Document, workers int) ([]report.Record, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	type result struct {
		text string
		err  error
	}
	results := make([]result, len(docs))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			text, err := extractor.Extract(ctx, doc.Name, doc.Data)
			results[i] = result{text: text, err: err}
		}(i, doc)
	}
	wg.Wait()

	records := make([]report.Record, 0, len(docs))
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		records = append(records, classifiedRecord("PDF: "+docs[i].Name, res.text))
	}
	return records, nil
}

// classifiedRecord builds one canonical record from unstructured text.
// The classifier guarantees in-range severity and confidence, so the
// result goes through Normalize only for the sentinel defaults.
func classifiedRecord(source, text string) report.Record {
	res := classify.Classify(redact.Scrub(text))
	return report.Normalize(report.Raw{
		Source:      source,
		Incident:    res.Incident,
		ThreatActor: res.ThreatActor,
		Industry:    res.Industry,
		Severity:    fptr(float64(res.Severity)),
		Confidence:  fptr(res.Confidence),
	}, source)
}

func fptr(v float64) *float64 { return &v }
