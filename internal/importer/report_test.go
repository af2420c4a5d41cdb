package importer

import (
	"encoding/json"
	"strings"
	"testing"
)

// ============================================================================
// BuildReport Tests
// ============================================================================

func TestBuildReport_PrefersServerReport(t *testing.T) {
	status := JobStatus{
		Status: StatusCompleted,
		Result: json.RawMessage(`{"report":"5 rows imported, 0 skipped","created":5}`),
	}

	report := BuildReport("task-9", status)

	if string(report.Content) != "5 rows imported, 0 skipped" {
		t.Errorf("Content = %q, want the server-supplied report verbatim", report.Content)
	}
	if !strings.HasPrefix(report.Filename, "import-task-9-") || !strings.HasSuffix(report.Filename, ".txt") {
		t.Errorf("Filename = %q, want import-task-9-<timestamp>.txt", report.Filename)
	}
}

func TestBuildReport_SynthesizesFromCounts(t *testing.T) {
	status := JobStatus{
		Status:  StatusCompleted,
		Message: "done",
		Result:  json.RawMessage(`{"created":4,"updated":2,"failed":1,"errors":["row 3: bad sku"]}`),
	}

	report := BuildReport("task-9", status)
	content := string(report.Content)

	for _, want := range []string{
		"Import task task-9",
		"Created: 4",
		"Updated: 2",
		"Failed: 1",
		"row 3: bad sku",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("report missing %q:\n%s", want, content)
		}
	}
}

func TestBuildReport_UnparseablePayloadStillDumped(t *testing.T) {
	status := JobStatus{
		Status: StatusCompleted,
		Result: json.RawMessage(`"just a string"`),
	}

	report := BuildReport("task-9", status)
	if !strings.Contains(string(report.Content), `"just a string"`) {
		t.Errorf("raw payload missing from report:\n%s", report.Content)
	}
}

func TestBuildReport_NoResult(t *testing.T) {
	report := BuildReport("task-9", JobStatus{Status: StatusCompleted})
	content := string(report.Content)

	if !strings.Contains(content, "Created: 0") {
		t.Errorf("report missing zero counts:\n%s", content)
	}
	if strings.Contains(content, "Raw result") {
		t.Errorf("empty payload must not produce a raw dump:\n%s", content)
	}
}
