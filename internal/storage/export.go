package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExportMarkdown renders runs as a markdown table.
func ExportMarkdown(runs []Run) string {
	var b strings.Builder

	b.WriteString("# Run history\n\n")
	if len(runs) == 0 {
		b.WriteString("_No runs recorded._\n")
		return b.String()
	}

	b.WriteString("| ID | Created | Dialect | Origin | Status | Fault | Duration | Output |\n")
	b.WriteString("|----|---------|---------|--------|--------|-------|----------|--------|\n")
	for _, r := range runs {
		fault := r.FaultKind
		if fault == "" {
			fault = "-"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %dms | %dB |\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Dialect, r.Origin,
			r.Status, fault, r.DurationMs, r.OutputBytes))
	}
	return b.String()
}

// ExportJSON renders runs as formatted JSON.
func ExportJSON(runs []Run) ([]byte, error) {
	export := struct {
		Runs []Run `json:"runs"`
	}{Runs: runs}
	return json.MarshalIndent(export, "", "  ")
}

// ExportYAML renders runs as a YAML document.
func ExportYAML(runs []Run) ([]byte, error) {
	export := struct {
		Runs []Run `yaml:"runs"`
	}{Runs: runs}
	return yaml.Marshal(export)
}
