package main

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"

	"github.com/olegrjumin/threatlens/internal/checker"
	"github.com/olegrjumin/threatlens/internal/service"
)

func printBanner(w io.Writer) {
	fig := figure.NewFigure("THREATLENS", "doom", true)
	fmt.Fprint(w, fig.String())

	cyan := color.New(color.FgCyan)
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = cyan.Fprintln(w, "    URL and page threat analysis")
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}

// levelColor picks the verdict color for a risk level
func levelColor(level string) *color.Color {
	switch level {
	case checker.RiskSafe:
		return color.New(color.FgGreen, color.Bold)
	case checker.RiskSuspicious:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func severityColor(sev checker.Severity) *color.Color {
	switch sev {
	case checker.SeverityLow:
		return color.New(color.FgCyan)
	case checker.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func printReport(w io.Writer, result checker.AnalysisResult, verdict *service.VerdictResult, trackers []checker.TrackerDecision) {
	fmt.Fprintf(w, "[*] URL:    %s\n", result.URL)
	if result.Domain != "" {
		fmt.Fprintf(w, "[*] Domain: %s\n", result.Domain)
	}

	levelColor(result.RiskLevel).Fprintf(w, "[!] Verdict: %s (risk score %d/100)\n", result.RiskLevel, result.RiskScore)
	fmt.Fprintf(w, "    %s\n", verdict.Recommendation)

	if len(result.Threats) == 0 {
		color.New(color.FgGreen).Fprintln(w, "[+] No threats detected")
	} else {
		fmt.Fprintf(w, "[*] Threats (%d):\n", len(result.Threats))
		for _, t := range result.Threats {
			severityColor(t.Severity).Fprintf(w, "    - [%s] %s: %s (+%d)\n", t.Severity, t.Kind, t.Description, t.Score)
		}
	}

	if len(trackers) > 0 {
		fmt.Fprintf(w, "[*] Trackers blocked (%d):\n", len(trackers))
		for _, d := range trackers {
			vendor := d.Vendor
			if vendor == "" {
				vendor = d.Reason
			}
			fmt.Fprintf(w, "    - %s (%s)\n", d.Domain, vendor)
		}
	}

	for _, warn := range result.Warnings {
		severityColor(warn.Severity).Fprintf(w, "[!] Warning: %s\n", warn.Message)
	}
}
