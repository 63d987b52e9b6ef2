package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var errNoTarget = errors.New("provide a URL with -u or a list with -l")

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "threatlens",
		Short:         "Score URLs and saved pages for phishing, malware, trackers and miners",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.url == "" && opts.list == "" {
				return errNoTarget
			}
			if opts.list != "" && opts.htmlFile != "" {
				return errors.New("--html applies to a single URL, not a list")
			}
			*code = run(opts, stdin, stdout, stderr)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.url, "url", "u", "", "URL to evaluate")
	f.StringVarP(&opts.list, "list", "l", "", "File with one URL per line (- for stdin)")
	f.StringVar(&opts.htmlFile, "html", "", "Local HTML file with the page markup (never fetched)")
	f.StringVarP(&opts.patterns, "patterns", "p", "", "YAML pattern file (built-in lists when empty)")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 10, "Workers used for a list")
	f.BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")
	f.BoolVarP(&opts.silent, "silent", "s", false, "No banner or progress bar")
	f.BoolVar(&opts.noMalware, "no-malware", false, "Disable malicious domain detection")
	f.BoolVar(&opts.noPhishing, "no-phishing", false, "Disable phishing detection")
	f.BoolVar(&opts.noTrackers, "no-trackers", false, "Disable tracker classification of page scripts")
	f.BoolVar(&opts.noMiners, "no-miners", false, "Disable cryptominer detection")
	f.StringVar(&opts.level, "level", "", "Minimum severity to report (low, medium, high, critical)")
	f.StringVar(&opts.whitelist, "whitelist", "", "Comma-separated domains to skip")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine activity to stderr")

	return cmd
}

// execute parses args and runs the command, returning the process exit code
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := exitSecure
	cmd := newRootCmd(stdin, stdout, stderr, &code)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "[-] Error: %v\n", err)
		return exitError
	}
	return code
}
