// Command intelfuse-report generates a threat briefing from local
// inputs without running the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/intelfuse-ai/intelfuse/internal/config"
	"github.com/intelfuse-ai/intelfuse/internal/extract"
	"github.com/intelfuse-ai/intelfuse/internal/fetch"
	"github.com/intelfuse-ai/intelfuse/internal/ingest"
	"github.com/intelfuse-ai/intelfuse/internal/pipeline"
	"github.com/intelfuse-ai/intelfuse/internal/telemetry"
)

const sampleReports = `[
  {
    "source": "ISAO Weekly Bulletin",
    "incident": "Credential phishing campaign against remote access portals",
    "threatActor": "Silent Lynx",
    "industry": "Financial Services",
    "severity": 4,
    "confidence": 0.85
  },
  {
    "source": "MSSP Incident Advisory",
    "incident": "Ransomware intrusion using exposed RDP",
    "threatActor": "Night Coil",
    "industry": "Healthcare",
    "severity": 5,
    "confidence": 0.9
  }
]`

type pdfList []string

func (p *pdfList) String() string { return strings.Join(*p, ",") }

func (p *pdfList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var pdfs pdfList
	reportsPath := flag.String("reports", "", "path to a JSON file holding an array of partial reports")
	urlsPath := flag.String("urls", "", "path to a file with one source URL per line")
	sample := flag.Bool("sample", false, "run with the built-in sample reports")
	configPath := flag.String("config", "intelfuse.yaml", "Path to Intelfuse config file")
	flag.Var(&pdfs, "pdf", "path to a PDF to extract (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	in := pipeline.Input{}

	if *sample {
		in.Reports = sampleReports
	} else if *reportsPath != "" {
		data, err := os.ReadFile(*reportsPath)
		if err != nil {
			log.Fatalf("read reports: %v", err)
		}
		in.Reports = string(data)
	}

	for _, path := range pdfs {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read pdf %s: %v", path, err)
		}
		in.Documents = append(in.Documents, ingest.Document{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	if *urlsPath != "" {
		data, err := os.ReadFile(*urlsPath)
		if err != nil {
			log.Fatalf("read urls: %v", err)
		}
		in.URLs = string(data)
	}

	ctx := context.Background()

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{Enabled: false})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Config{
		Timeout:    cfg.Fetch.Timeout.Std(),
		UserAgent:  cfg.Fetch.UserAgent,
		MaxExcerpt: cfg.Fetch.MaxExcerpt,
	})
	pl := pipeline.New(extract.NewPDFExtractor(), fetcher, cfg.Extract.Workers, cfg.Fetch.Workers, tel)

	res, err := pl.Run(ctx, in)
	if err != nil {
		log.Fatalf("briefing failed: %v", err)
	}

	printBriefing(res)
}

func printBriefing(res *pipeline.Result) {
	fmt.Printf("Incidents analyzed: %d\n", res.Aggregate.Incidents)
	fmt.Printf("Average severity:   %s / 5\n", res.Aggregate.AvgSeverity)
	fmt.Printf("Average confidence: %.0f%%\n", res.Aggregate.AvgConfidence*100)
	fmt.Printf("Top actor:          %s\n", res.Aggregate.TopActor)
	fmt.Printf("Top industry:       %s\n", res.Aggregate.TopIndustry)
	fmt.Println()

	fmt.Println("Briefing:")
	for i, st := range res.Statements {
		fmt.Printf("  %d. %s\n", i+1, st)
	}
	fmt.Println()

	fmt.Println("Incidents:")
	for _, rec := range res.Records {
		fmt.Printf("  [sev %d, conf %.0f%%] %s | %s / %s (%s)\n",
			rec.Severity,
			rec.Confidence*100,
			rec.Incident,
			rec.ThreatActor,
			rec.Industry,
			rec.Source,
		)
	}

	if len(res.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, wmsg := range res.Warnings {
			fmt.Printf("  - %s\n", wmsg)
		}
	}
}
