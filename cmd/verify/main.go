package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/lulf87/pdf-report-checker-sub000/internal/report"
)

// verify runs the verification pipeline once over a pages JSON file and
// prints the result, without a server or database in the loop.
func main() {
	input := flag.String("input", "", "path to a request JSON file (\"-\" for stdin)")
	format := flag.String("format", "json", "output format: json or markdown")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	req, err := readRequest(*input)
	if err != nil {
		log.Fatal(err)
	}

	res, err := report.NewPipeline().Run(context.Background(), req)
	if err != nil {
		log.Fatal(err)
	}

	switch *format {
	case "markdown":
		fmt.Print(res.ReportMarkdown)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown format %q (want json or markdown)", *format)
	}
}

func readRequest(path string) (report.RequestEnvelope, error) {
	var req report.RequestEnvelope
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read input: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse input: %w", err)
	}
	if req.DocumentID == "" {
		req.DocumentID = path
	}
	return req, nil
}
