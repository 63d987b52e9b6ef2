package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/logging"
	"github.com/olegrjumin/threatlens/internal/patterns"
	"github.com/olegrjumin/threatlens/internal/service"
)

// Exit codes
const (
	exitSecure   = 0
	exitError    = 1
	exitInsecure = 2
)

type options struct {
	url         string
	list        string
	htmlFile    string
	patterns    string
	concurrency int
	jsonOut     bool
	silent      bool
	noMalware   bool
	noPhishing  bool
	noTrackers  bool
	noMiners    bool
	level       string
	whitelist   string
	verbose     bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run evaluates one URL, or every URL of opts.list, and returns the exit code
func run(opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := logging.NewWithWriter(io.Discard)
	if opts.verbose {
		logger = logging.NewWithWriter(stderr)
	}

	store := patterns.NewStore(nil)
	if opts.patterns != "" {
		set, err := patterns.Load(opts.patterns)
		if err != nil {
			fmt.Fprintf(stderr, "[-] Error: %v\n", err)
			return exitError
		}
		store = patterns.NewStore(set)
	}

	svc := service.New(store, nil, nil, logger, checker.DefaultSettings())
	overrides := buildOverrides(opts)

	if opts.list != "" {
		return runBatch(svc, overrides, opts, stdin, stdout, stderr)
	}

	var content *checker.PageContent
	if opts.htmlFile != "" {
		markup, err := os.ReadFile(opts.htmlFile)
		if err != nil {
			fmt.Fprintf(stderr, "[-] Error: %v\n", err)
			return exitError
		}
		extracted, err := checker.ExtractPageContent(opts.url, string(markup))
		if err != nil {
			fmt.Fprintf(stderr, "[-] Error: %v\n", err)
			return exitError
		}
		content = &extracted
	}

	report := analyzeOne(svc, opts.url, content, overrides)

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(stderr, "[-] Error: %v\n", err)
			return exitError
		}
	} else {
		if !opts.silent {
			printBanner(stdout)
		}
		printReport(stdout, report.Result, report.Verdict, report.Trackers)
	}

	if !report.Result.IsSecure {
		return exitInsecure
	}
	return exitSecure
}

type jsonReport struct {
	Result   checker.AnalysisResult    `json:"result"`
	Verdict  *service.VerdictResult    `json:"verdict"`
	Trackers []checker.TrackerDecision `json:"trackers,omitempty"`
}

// analyzeOne scores url and, when markup was given, classifies its external scripts
func analyzeOne(svc *service.Service, url string, content *checker.PageContent, overrides *service.SettingsOverride) jsonReport {
	result := svc.Analyze(url, content, overrides)

	var trackers []checker.TrackerDecision
	if content != nil {
		for _, script := range content.Scripts {
			if script.Src == "" {
				continue
			}
			if d := svc.ClassifyRequest("", script.Src, overrides); d.Block {
				trackers = append(trackers, d)
			}
		}
		result.TrackersBlocked = len(trackers)
	}

	return jsonReport{Result: result, Verdict: service.SummarizeResult(result), Trackers: trackers}
}

func buildOverrides(opts options) *service.SettingsOverride {
	off := false
	o := &service.SettingsOverride{NotificationLevel: opts.level}
	if opts.noMalware {
		o.BlockMaliciousSites = &off
	}
	if opts.noPhishing {
		o.BlockPhishing = &off
	}
	if opts.noTrackers {
		o.BlockTrackers = &off
	}
	if opts.noMiners {
		o.BlockCryptominers = &off
	}
	if opts.whitelist != "" {
		on := true
		o.WhitelistMode = &on
		for _, d := range strings.Split(opts.whitelist, ",") {
			if d = strings.TrimSpace(d); d != "" {
				o.Whitelist = append(o.Whitelist, d)
			}
		}
	}
	return o
}
