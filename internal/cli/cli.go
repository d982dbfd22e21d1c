// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/seqqap/seqqap/internal/app"
)

// ExitError carries a specific process exit code along with its message.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating the program should exit cleanly (help), or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("seqqap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
seqqap - sequencing read QC and assembly pipeline orchestrator.

Usage:
  seqqap [options] FILE...

Arguments:
  FILE
    Input file(s) in optionally gzipped FASTA or fastq format.

The analyses to perform are selected with -t/--targets; use --list-targets
to see what is available. When a requested target depends on the output of
another target, the dependency is added automatically.

Options:
`)
		flagSet.PrintDefaults()
	}

	targetsFlag := flagSet.String("targets", "DEFAULT", "comma-separated analyses to perform.")
	tFlag := flagSet.String("t", "", "comma-separated analyses to perform (shorthand).")
	excludeFlag := flagSet.String("exclude", "", "comma-separated targets and/or services to exclude.")
	xFlag := flagSet.String("x", "", "targets and/or services to exclude (shorthand).")
	refFlag := flagSet.String("ref", "", "path to a reference genome FASTA.")
	rFlag := flagSet.String("r", "", "path to a reference genome FASTA (shorthand).")
	idFlag := flagSet.String("id", "", "identifier to use for the sample in reports.")
	iFlag := flagSet.String("i", "", "identifier to use for the sample in reports (shorthand).")
	outDirFlag := flagSet.String("out-dir", ".", "directory to write output to, created when missing.")
	oFlag := flagSet.String("o", "", "directory to write output to (shorthand).")
	catalogFlag := flagSet.String("catalog", "catalog", "path to the service/target declaration directory.")
	listTargetsFlag := flagSet.Bool("list-targets", false, "list the available targets.")
	listServicesFlag := flagSet.Bool("list-services", false, "list the available services.")
	var paramFlags stringList
	flagSet.Var(&paramFlags, "p", "service.param=value parameter override, repeatable.")
	paramsFileFlag := flagSet.String("params", "", "yaml file with per-service parameter overrides.")
	timeoutFlag := flagSet.Int("timeout", 0, "per-service timeout in seconds. 0 is unbounded.")
	pairingFlag := flagSet.String("sq-pairing", "", "read pairing override: 'paired' or 'unpaired'.")
	logFormatFlag := flagSet.String("log-format", "text", "log output format: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "logging level: 'debug', 'info', 'warn', or 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	targets := *targetsFlag
	if *tFlag != "" {
		targets = *tFlag
	}
	excludes := *excludeFlag
	if *xFlag != "" {
		excludes = *xFlag
	}
	outDir := *outDirFlag
	if *oFlag != "" {
		outDir = *oFlag
	}
	ref := *refFlag
	if *rFlag != "" {
		ref = *rFlag
	}
	sampleID := *idFlag
	if *iFlag != "" {
		sampleID = *iFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	switch *pairingFlag {
	case "", "paired", "unpaired":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid sq-pairing: must be 'paired' or 'unpaired'"}
	}

	files := flagSet.Args()
	if len(files) == 0 && !*listTargetsFlag && !*listServicesFlag {
		flagSet.Usage()
		return nil, true, nil
	}

	cfg, err := app.NewConfig(app.Config{
		Targets:        splitList(targets),
		Excludes:       splitList(excludes),
		Files:          files,
		Reference:      ref,
		SampleID:       sampleID,
		OutDir:         outDir,
		CatalogPath:    *catalogFlag,
		Pairing:        *pairingFlag,
		ParamOverrides: paramFlags,
		ParamsFile:     *paramsFileFlag,
		TimeoutSec:     *timeoutFlag,
		ListTargets:    *listTargetsFlag,
		ListServices:   *listServicesFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

// splitList splits a comma-separated flag value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
