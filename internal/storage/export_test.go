package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

var sampleRuns = []Run{
	{
		ID:          "11111111-aaaa",
		Dialect:     "ts",
		Status:      StatusFault,
		FaultKind:   "timeout",
		Origin:      OriginHTTP,
		OutputBytes: 52,
		DurationMs:  1501,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	},
	{
		ID:          "22222222-bbbb",
		Dialect:     "js",
		Status:      StatusOK,
		Origin:      OriginCLI,
		OutputBytes: 2,
		DurationMs:  3,
		CreatedAt:   time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	},
}

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown(sampleRuns)
	for _, want := range []string{
		"# Run history",
		"| 11111111-aaaa | 2026-03-01 12:00:00 | ts | http | fault | timeout | 1501ms | 52B |",
		"| 22222222-bbbb | 2026-03-01 11:00:00 | js | cli | ok | - | 3ms | 2B |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if !strings.Contains(ExportMarkdown(nil), "No runs recorded") {
		t.Error("empty export should say so")
	}
}

func TestExportJSONAndYAML(t *testing.T) {
	data, err := ExportJSON(sampleRuns)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON struct {
		Runs []Run `json:"runs"`
	}
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	if diff := cmp.Diff(sampleRuns, fromJSON.Runs); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}

	data, err = ExportYAML(sampleRuns)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "fault_kind: timeout") {
		t.Errorf("yaml = %s", data)
	}
	var fromYAML struct {
		Runs []Run `yaml:"runs"`
	}
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if len(fromYAML.Runs) != 2 || fromYAML.Runs[1].Origin != OriginCLI {
		t.Errorf("yaml runs = %+v", fromYAML.Runs)
	}
}
