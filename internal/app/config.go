package app

import "errors"

// Version is stamped into run records and reports.
const Version = "1.2.0"

// Config holds everything an App instance needs for one run.
type Config struct {
	Targets  []string // requested logical targets, default DEFAULT
	Excludes []string // targets and/or services to exclude
	Files    []string // input FASTA/fastq files

	Reference   string // optional reference genome FASTA
	SampleID    string // report identifier, derived from inputs when empty
	OutDir      string // workspace/output directory
	CatalogPath string // directory holding the .hcl declarations
	Pairing     string // "", "paired" or "unpaired" read pairing override

	ParamOverrides []string // repeated service.param=value settings
	ParamsFile     string   // yaml file with per-service overrides

	TimeoutSec int // per-service timeout, 0 means unbounded

	ListTargets  bool
	ListServices bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a parsed configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.CatalogPath == "" {
		return nil, errors.New("CatalogPath is a required configuration field and cannot be empty")
	}
	if cfg.OutDir == "" {
		return nil, errors.New("OutDir is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
