package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wudi/flyerscan"
	"github.com/wudi/flyerscan/observability"
	"github.com/wudi/flyerscan/ocr"
	_ "github.com/wudi/flyerscan/ocr/tesseract"
)

type options struct {
	imagePath    string
	lang         string
	psm          int
	registryPath string
	debugDir     string
	workers      int
	timeout      time.Duration
	jsonOut      bool
	verbose      bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "flyerscan: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "flyerscan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: flyerscan [flags] <image>\n")
		flag.PrintDefaults()
	}
	lang := flag.String("lang", "eng", "Recognition language(s), comma separated")
	psm := flag.Int("psm", ocr.PSMSingleBlock, "Page segmentation mode")
	registry := flag.String("registry", "", "YAML file overriding the pipeline registry")
	debugDir := flag.String("debug-dir", "", "Directory for the winning preprocessed image")
	workers := flag.Int("workers", 0, "Concurrent pipeline workers (0 = sequential)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall scan timeout")
	jsonOut := flag.Bool("json", false, "Emit the extraction result as JSON")
	verbose := flag.Bool("v", false, "Verbose diagnostics on stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing image path")
	}
	opts.imagePath = flag.Arg(0)
	opts.lang = *lang
	opts.psm = *psm
	opts.registryPath = *registry
	opts.debugDir = *debugDir
	opts.workers = *workers
	opts.timeout = *timeout
	opts.jsonOut = *jsonOut
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options) error {
	cfg := flyerscan.DefaultConfig()
	cfg.Languages = strings.Split(opts.lang, ",")
	cfg.PageSegMode = opts.psm
	cfg.Workers = opts.workers
	cfg.DebugDir = opts.debugDir
	if opts.verbose {
		cfg.Logger = observability.NewWriterLogger(os.Stderr, observability.LevelDebug)
	} else {
		cfg.Logger = observability.NewWriterLogger(os.Stderr, observability.LevelWarn)
	}
	if opts.registryPath != "" {
		reg, err := flyerscan.LoadRegistry(opts.registryPath)
		if err != nil {
			return err
		}
		cfg.Registry = reg
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	res, err := flyerscan.New(cfg).ScanFile(ctx, opts.imagePath)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printReport(res)
	return nil
}

func printReport(res *flyerscan.ExtractionResult) {
	rule := strings.Repeat("-", 50)
	fmt.Println("Extracted Text:")
	fmt.Println(rule)
	fmt.Println(res.RawText)
	fmt.Println(rule)
	fmt.Printf("Pipeline: %s (confidence %.1f)\n", orNone(res.Pipeline), res.Confidence)

	if res.Title != "" {
		fmt.Printf("Title: %s\n", res.Title)
		fmt.Printf("  context: %q\n", res.TitleContext)
	} else {
		fmt.Println("No title found.")
	}

	if res.HasDate() {
		fmt.Printf("Date: %s (from %q)\n", res.Date.Format("Mon, 02 Jan 2006 15:04"), res.DateText)
	} else {
		fmt.Println("No dates found.")
	}

	if len(res.Locations) > 0 {
		fmt.Println("Locations:")
		for _, loc := range res.Locations {
			fmt.Printf("- %s\n", loc)
		}
	} else {
		fmt.Println("No locations found.")
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
