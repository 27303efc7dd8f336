package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/fetch"
	"github.com/intelfuse-ai/intelfuse/internal/ingest"
	"github.com/intelfuse-ai/intelfuse/internal/report"
	"github.com/intelfuse-ai/intelfuse/internal/telemetry"
)

type stubExtractor struct {
	texts map[string]string
	fail  map[string]error
}

func (s *stubExtractor) Extract(_ context.Context, name string, _ []byte) (string, error) {
	if err, ok := s.fail[name]; ok {
		return "", err
	}
	return s.texts[name], nil
}

type stubFetcher struct {
	pages map[string]fetch.Page
	fail  map[string]error
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (fetch.Page, error) {
	if err, ok := s.fail[url]; ok {
		return fetch.Page{}, err
	}
	return s.pages[url], nil
}

func newTestPipeline(t *testing.T, ext *stubExtractor, f *stubFetcher) *Pipeline {
	t.Helper()
	tel, err := telemetry.NewProvider(context.Background(), telemetry.Config{Enabled: false})
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	if ext == nil {
		ext = &stubExtractor{}
	}
	if f == nil {
		f = &stubFetcher{}
	}
	return New(ext, f, 2, 2, tel)
}

func TestRunStructuredOnly(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	res, err := p.Run(context.Background(), Input{
		Reports: `[{"severity":5,"confidence":0.9,"threatActor":"Night Coil","industry":"Healthcare"}]`,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Aggregate.Incidents != 1 {
		t.Errorf("incidents = %d, want 1", res.Aggregate.Incidents)
	}
	if res.Aggregate.AvgSeverity != "5.00" {
		t.Errorf("avgSeverity = %q, want 5.00", res.Aggregate.AvgSeverity)
	}
	if res.Aggregate.AvgConfidence != 0.9 {
		t.Errorf("avgConfidence = %v, want 0.9", res.Aggregate.AvgConfidence)
	}
	if res.Aggregate.TopActor != "Night Coil" || res.Aggregate.TopIndustry != "Healthcare" {
		t.Errorf("modal values off: %+v", res.Aggregate)
	}

	first := res.Statements[0]
	for _, want := range []string{"1 incidents", "5.00/5", "90%"} {
		if !strings.Contains(first, want) {
			t.Errorf("overview missing %q: %q", want, first)
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestRunMergesSourcesInAdapterOrder(t *testing.T) {
	ext := &stubExtractor{texts: map[string]string{
		"adv.pdf": "Confirmed ransomware intrusion against a Manufacturing plant.",
	}}
	f := &stubFetcher{pages: map[string]fetch.Page{
		"https://feed.example/a": {Title: "Feed", Excerpt: "Likely phishing against Education institutions."},
	}}
	p := newTestPipeline(t, ext, f)

	res, err := p.Run(context.Background(), Input{
		Reports:   `[{"source":"Bulletin","severity":4,"confidence":0.8}]`,
		Documents: []ingest.Document{{Name: "adv.pdf"}},
		URLs:      "https://feed.example/a",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(res.Records))
	}

	// JSON records first, then documents, then URLs.
	if res.Records[0].Source != "Bulletin" {
		t.Errorf("record 0 source = %q", res.Records[0].Source)
	}
	if res.Records[1].Source != "PDF: adv.pdf" {
		t.Errorf("record 1 source = %q", res.Records[1].Source)
	}
	if res.Records[2].Source != "URL: https://feed.example/a" {
		t.Errorf("record 2 source = %q", res.Records[2].Source)
	}
}

func TestRunEmptyCorpusIsFatal(t *testing.T) {
	p := newTestPipeline(t, nil, nil)

	res, err := p.Run(context.Background(), Input{})
	if res != nil {
		t.Fatalf("expected no partial result, got %+v", res)
	}
	var empty *report.EmptyCorpusError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyCorpusError, got %v", err)
	}
}

func TestRunAllURLsFailingStillFatalWhenNothingElse(t *testing.T) {
	f := &stubFetcher{fail: map[string]error{
		"https://down.example": &fetch.HTTPError{StatusCode: 500},
	}}
	p := newTestPipeline(t, nil, f)

	// Warnings never accompany a fatal error.
	res, err := p.Run(context.Background(), Input{URLs: "https://down.example"})
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	var empty *report.EmptyCorpusError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyCorpusError, got %v", err)
	}
}

func TestRunURLWarningsAccompanySuccess(t *testing.T) {
	f := &stubFetcher{
		pages: map[string]fetch.Page{
			"https://ok.example": {Title: "OK", Excerpt: "Confirmed credential theft at Government agencies."},
		},
		fail: map[string]error{
			"https://down.example": &fetch.NetworkError{Err: errors.New("no route to host")},
		},
	}
	p := newTestPipeline(t, nil, f)

	res, err := p.Run(context.Background(), Input{URLs: "https://down.example\nhttps://ok.example"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "https://down.example") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestRunStructuredErrorAbortsEverything(t *testing.T) {
	f := &stubFetcher{pages: map[string]fetch.Page{
		"https://ok.example": {Title: "OK", Excerpt: "Confirmed malware staging."},
	}}
	p := newTestPipeline(t, nil, f)

	res, err := p.Run(context.Background(), Input{
		Reports: `{"severity":5,"confidence":0.9}`,
		URLs:    "https://ok.example",
	})
	if res != nil {
		t.Fatalf("expected nil result on malformed input, got %+v", res)
	}
	var malformed *report.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestRunDocumentErrorAbortsEverything(t *testing.T) {
	ext := &stubExtractor{fail: map[string]error{
		"bad.pdf": &extract.ExtractionError{Name: "bad.pdf", Err: errors.New("unreadable")},
	}}
	p := newTestPipeline(t, ext, nil)

	res, err := p.Run(context.Background(), Input{
		Reports:   `[{"severity":3,"confidence":0.6}]`,
		Documents: []ingest.Document{{Name: "bad.pdf"}},
	})
	if res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	var extErr *extract.ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	in := Input{Reports: `[{"severity":4,"confidence":0.8,"threatActor":"APT41"},{"severity":2,"confidence":0.55}]`}

	first, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}

	if len(first.Statements) != len(second.Statements) {
		t.Fatal("statement count changed between runs")
	}
	for i := range first.Statements {
		if first.Statements[i] != second.Statements[i] {
			t.Fatalf("statement %d differs:\n%q\n%q", i, first.Statements[i], second.Statements[i])
		}
	}
}
