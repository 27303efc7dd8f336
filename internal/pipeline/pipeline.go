// Package pipeline runs the three source adapters, aggregates the
// combined record list and synthesizes the risk statements. One
// invocation is one stateless batch; nothing survives between runs.
package pipeline

import (
	"context"
	"time"

	"github.com/intelfuse-ai/intelfuse/internal/aggregate"
	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/fetch"
	"github.com/intelfuse-ai/intelfuse/internal/ingest"
	"github.com/intelfuse-ai/intelfuse/internal/report"
	"github.com/intelfuse-ai/intelfuse/internal/telemetry"
)

// Input is one batch of heterogeneous source material.
type Input struct {
	Reports   string // textual JSON array of partial records
	Documents []ingest.Document
	URLs      string // newline-delimited
}

// Result is everything a successful run surfaces to the caller.
// Warnings accompany success only; a fatal error yields no partial
// result at all.
type Result struct {
	Records    []report.Record     `json:"records"`
	Aggregate  aggregate.Aggregate `json:"aggregate"`
	Statements []string            `json:"statements"`
	Warnings   []string            `json:"warnings"`
}

// Pipeline binds the external collaborators and concurrency limits.
type Pipeline struct {
	extractor      extract.Extractor
	fetcher        fetch.Fetcher
	extractWorkers int
	fetchWorkers   int
	tel            *telemetry.Provider
}

func New(extractor extract.Extractor, fetcher fetch.Fetcher, extractWorkers, fetchWorkers int, tel *telemetry.Provider) *Pipeline {
	return &Pipeline{
		extractor:      extractor,
		fetcher:        fetcher,
		extractWorkers: extractWorkers,
		fetchWorkers:   fetchWorkers,
		tel:            tel,
	}
}

// Run executes one batch. Structured-input and document errors abort
// the whole run; URL failures surface as warnings. The only fatal
// condition of the pipeline itself is an empty corpus after all
// adapters ran.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()

	jsonRecords, err := ingest.ParseReports(in.Reports)
	if err != nil {
		p.tel.RecordRun(outcomeName(err), 0, durMs(start))
		return nil, err
	}

	docRecords, err := ingest.ParseDocuments(ctx, p.extractor, in.Documents, p.extractWorkers)
	if err != nil {
		p.tel.RecordRun(outcomeName(err), 0, durMs(start))
		return nil, err
	}

	urlRecords, warnings := ingest.ParseURLs(ctx, p.fetcher, in.URLs, p.fetchWorkers)

	records := make([]report.Record, 0, len(jsonRecords)+len(docRecords)+len(urlRecords))
	records = append(records, jsonRecords...)
	records = append(records, docRecords...)
	records = append(records, urlRecords...)

	if len(records) == 0 {
		err := &report.EmptyCorpusError{}
		p.tel.RecordRun(outcomeName(err), len(warnings), durMs(start))
		return nil, err
	}

	agg := aggregate.Compute(records)
	statements := aggregate.Statements(records, agg)

	p.tel.RecordSourceRecords("json", len(jsonRecords))
	p.tel.RecordSourceRecords("pdf", len(docRecords))
	p.tel.RecordSourceRecords("url", len(urlRecords))
	p.tel.RecordFetchFailures(len(warnings))
	p.tel.RecordRun("ok", len(warnings), durMs(start))

	return &Result{
		Records:    records,
		Aggregate:  agg,
		Statements: statements,
		Warnings:   warnings,
	}, nil
}

func durMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func outcomeName(err error) string {
	switch err.(type) {
	case *report.MalformedInputError:
		return "malformed_input"
	case *report.MissingFieldError:
		return "missing_field"
	case *report.InvalidSeverityError:
		return "invalid_severity"
	case *report.InvalidConfidenceError:
		return "invalid_confidence"
	case *report.EmptyCorpusError:
		return "empty_corpus"
	case *extract.ExtractionError:
		return "extraction_error"
	default:
		return "error"
	}
}
