// FILE: asynclog/src/cmd/asynclog/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
)

// FlagConfig holds the parsed command-line options.
type FlagConfig struct {
	ShowVersion bool
	ConfigFile  string
	Handler     string
	Quiet       bool
	LoggerName  string
	Level       string

	// Shutdown drain deadline in milliseconds
	DrainTimeoutMS int64
}

// ParseFlags parses the command line into a FlagConfig.
func ParseFlags(args []string) (*FlagConfig, error) {
	cfg := &FlagConfig{}

	fs := flag.NewFlagSet("asynclog", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	fs.StringVar(&cfg.Handler, "handler", "", "Delivery backend: stream, gcp, aws, azure (overrides config)")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress diagnostic output")
	fs.StringVar(&cfg.LoggerName, "name", "stdin", "Logger name attached to every record")
	fs.StringVar(&cfg.Level, "level", "info", "Severity assigned to piped lines: debug, info, warning, error, critical")
	fs.Int64Var(&cfg.DrainTimeoutMS, "drain-timeout", 5000, "Shutdown drain deadline in milliseconds")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %q", fs.Arg(0))
	}

	return cfg, nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "asynclog - pipe stdin lines to a logging backend\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")

	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -handler string\n\tDelivery backend: stream, gcp, aws, azure (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -name string\n\tLogger name attached to every record (default \"stdin\")\n")
	fmt.Fprintf(os.Stderr, "  -level string\n\tSeverity assigned to piped lines (default \"info\")\n")
	fmt.Fprintf(os.Stderr, "  -drain-timeout int\n\tShutdown drain deadline in milliseconds (default 5000)\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress diagnostic output\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Echo application output to stdout as formatted records\n")
	fmt.Fprintf(os.Stderr, "  myapp 2>&1 | %s\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Ship a file to Google Cloud Logging\n")
	fmt.Fprintf(os.Stderr, "  cat app.log | %s --handler gcp --name app\n", os.Args[0])
}
