// Package report renders the workspace's accumulated records at run end.
// The core only guarantees records are keyed by step/service and ordered by
// execution; formatting beyond that lives here, at the boundary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqqap/seqqap/internal/workspace"
)

const (
	resultsFileName = "seqqap-results.json"
	summaryFileName = "seqqap-summary.tsv"
)

// results is the shape of seqqap-results.json.
type results struct {
	RunInfo      workspace.RunInfo       `json:"run_info"`
	Warnings     []string                `json:"warnings,omitempty"`
	Capabilities []string                `json:"capabilities"`
	Files        map[string]string       `json:"files"`
	Steps        []*workspace.StepRecord `json:"steps"`
}

// Write renders both report files into the workspace directory.
func Write(ws *workspace.Workspace) error {
	if err := writeResults(ws); err != nil {
		return err
	}
	return writeSummary(ws)
}

func writeResults(ws *workspace.Workspace) error {
	caps := ws.Capabilities().Sorted()
	capNames := make([]string, len(caps))
	for i, c := range caps {
		capNames[i] = string(c)
	}

	res := results{
		RunInfo:      ws.Info(),
		Warnings:     ws.Warnings(),
		Capabilities: capNames,
		Files:        ws.Files(),
		Steps:        ws.Records(),
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	path := filepath.Join(ws.Dir(), resultsFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// summaryColumns are the key metrics of the one-line TSV summary, in order.
// Each maps a column header to the service and metric key it is pulled from.
var summaryColumns = []struct {
	header  string
	service string
	key     string
}{
	{"s_id", "", ""},
	{"n_reads", "ReadsMetrics", "n_reads"},
	{"nt_read", "ReadsMetrics", "n_bases"},
	{"pct_q30", "ReadsMetrics", "pct_q30"},
	{"n_ctgs", "ContigsMetrics", "n_seqs"},
	{"nt_ctgs", "ContigsMetrics", "tot_len"},
	{"n1", "ContigsMetrics", "max_len"},
	{"n50", "ContigsMetrics", "n50"},
	{"l50", "ContigsMetrics", "l50"},
	{"pct_gc", "ContigsMetrics", "pct_gc"},
}

func writeSummary(ws *workspace.Workspace) error {
	headers := make([]string, len(summaryColumns))
	values := make([]string, len(summaryColumns))
	for i, col := range summaryColumns {
		headers[i] = col.header
		if col.service == "" {
			values[i] = ws.Info().SampleID
			continue
		}
		values[i] = metric(ws.Records(), col.service, col.key)
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\t"))
	b.WriteByte('\n')
	b.WriteString(strings.Join(values, "\t"))
	b.WriteByte('\n')

	path := filepath.Join(ws.Dir(), summaryFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// metric finds a metric value recorded by the named service, in execution
// order, with "NA" when the service did not run or did not report the key.
func metric(records []*workspace.StepRecord, service, key string) string {
	for _, rec := range records {
		if rec.Service != service || rec.Metrics == nil {
			continue
		}
		if v, ok := rec.Metrics[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return "NA"
}
