package app

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/seqqap/seqqap/internal/capability"
	"github.com/seqqap/seqqap/internal/filescan"
)

// scannedInputs is the translation of the user's input files into initial
// workspace state: file role bindings, the initial capability set, a sample
// identifier, and any assumptions worth reporting.
type scannedInputs struct {
	roles    map[string]string
	caps     []capability.Capability
	sampleID string
	warnings []string
}

// scanInputs classifies the input files and derives the initial capability
// set the planner sees. The pipeline handles one sample per run: more than
// one FASTA or more than one read set is rejected here, before anything is
// planned or locked.
func (a *App) scanInputs() (*scannedInputs, error) {
	cfg := a.config

	in, err := filescan.ScanInputs(cfg.Files)
	if err != nil {
		return nil, err
	}
	if len(in.Fastas) == 0 && len(in.Singles) == 0 && len(in.Pairs) == 0 {
		return nil, fmt.Errorf("no input files were provided")
	}
	if len(in.Fastas) > 1 {
		return nil, fmt.Errorf("more than one FASTA file passed")
	}
	if len(in.Pairs) > 1 || (len(in.Pairs) == 1 && len(in.Singles) > 0) || len(in.Singles) > 2 {
		return nil, fmt.Errorf("more than one read set passed")
	}

	out := &scannedInputs{roles: make(map[string]string)}

	for name, path := range in.Fastas {
		out.roles["contigs"] = path
		out.caps = append(out.caps, capability.Contigs)
		out.sampleID = name
	}

	switch {
	case len(in.Pairs) == 1:
		for name, pair := range in.Pairs {
			a.setReads(out, name, pair[0], pair[1])
		}
	case len(in.Singles) == 2 && cfg.Pairing != "unpaired":
		// Two fastqs that did not pair by name: follow the original
		// convention of assuming a pair, but say so.
		names := sortedKeys(in.Singles)
		fq1, fq2 := in.Singles[names[0]], in.Singles[names[1]]
		a.setReads(out, filescan.PairName(fq1, fq2), fq1, fq2)
		out.warnings = append(out.warnings, "assuming paired reads")
	case len(in.Singles) == 2:
		return nil, fmt.Errorf("more than one unpaired read set passed")
	case len(in.Singles) == 1:
		for name, fq := range in.Singles {
			out.roles["reads_1"] = fq
			out.caps = append(out.caps, capability.Reads, capability.SingleReads)
			if out.sampleID == "" {
				out.sampleID = name
			}
			if cfg.Pairing == "" {
				out.warnings = append(out.warnings, "assuming unpaired reads")
			}
			if filescan.IsIlluminaFastq(fq) {
				out.caps = append(out.caps, "illumina_reads")
			}
		}
	}

	if cfg.Reference != "" {
		t, err := filescan.DetectFileType(cfg.Reference)
		if err != nil {
			return nil, fmt.Errorf("reading reference: %w", err)
		}
		if t != filescan.TypeFasta {
			return nil, fmt.Errorf("reference is not a FASTA file: %s", cfg.Reference)
		}
		abs, err := filepath.Abs(cfg.Reference)
		if err != nil {
			return nil, err
		}
		out.roles["reference"] = abs
		out.caps = append(out.caps, capability.Reference)
	}

	if cfg.SampleID != "" {
		out.sampleID = cfg.SampleID
	}
	if out.sampleID == "" {
		out.sampleID = "SAMPLE"
	}
	return out, nil
}

// setReads binds a read pair and its capabilities.
func (a *App) setReads(out *scannedInputs, name, fq1, fq2 string) {
	out.roles["reads_1"] = fq1
	out.roles["reads_2"] = fq2
	out.caps = append(out.caps, capability.Reads, capability.PairedReads)
	if out.sampleID == "" {
		out.sampleID = name
	}
	if filescan.IsIlluminaFastq(fq1) && filescan.IsIlluminaFastq(fq2) {
		out.caps = append(out.caps, "illumina_reads")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
