package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/olegrjumin/threatlens/internal/service"
)

// readTargets returns the non-empty, non-comment lines of path ("-" reads stdin)
func readTargets(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, scanner.Err()
}

// runBatch scores every listed URL with a bounded worker pool.
// Results are sorted by risk, highest first.
func runBatch(svc *service.Service, overrides *service.SettingsOverride, opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	targets, err := readTargets(opts.list, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "[-] Error reading targets: %v\n", err)
		return exitError
	}
	if len(targets) == 0 {
		fmt.Fprintln(stderr, "[-] Error: no targets found")
		return exitError
	}

	workers := opts.concurrency
	if workers < 1 {
		workers = 1
	}

	var bar *progressbar.ProgressBar
	if !opts.silent && !opts.jsonOut {
		printBanner(stdout)
		bar = progressbar.NewOptions(len(targets),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("Analyzing"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	reports := make([]jsonReport, len(targets))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			sem <- struct{}{}
			reports[i] = analyzeOne(svc, url, nil, overrides)
			<-sem
			if bar != nil {
				_ = bar.Add(1)
			}
		}(i, target)
	}
	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Result.RiskScore > reports[j].Result.RiskScore
	})

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(stderr, "[-] Error: %v\n", err)
			return exitError
		}
	} else {
		printSummary(stdout, reports)
	}

	for _, r := range reports {
		if !r.Result.IsSecure {
			return exitInsecure
		}
	}
	return exitSecure
}

// printSummary prints one line per URL and a closing tally
func printSummary(w io.Writer, reports []jsonReport) {
	insecure := 0
	for _, r := range reports {
		if !r.Result.IsSecure {
			insecure++
		}
		levelColor(r.Result.RiskLevel).Fprintf(w, "[%-10s] %3d  %s\n", r.Result.RiskLevel, r.Result.RiskScore, r.Result.URL)
	}

	summary := color.New(color.FgGreen)
	if insecure > 0 {
		summary = color.New(color.FgRed)
	}
	summary.Fprintf(w, "[+] %d URLs analyzed, %d insecure\n", len(reports), insecure)
}
