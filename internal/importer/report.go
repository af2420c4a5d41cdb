package importer

// report.go assembles the downloadable result summary for a completed
// import. The server may supply a pre-formatted report; when it does
// not, one is synthesized from the structured counts plus a raw dump
// of the payload so nothing the server said is lost.

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Report is the plain-text result handed to the caller for download.
type Report struct {
	Filename string
	Content  []byte
}

// jobResult is the structured shape of a completed job's result
// payload. Every field is optional.
type jobResult struct {
	Report  string   `json:"report"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// BuildReport builds the result report for a completed task, preferring
// a server-supplied pre-formatted report over synthesis.
func BuildReport(taskID string, status JobStatus) Report {
	name := fmt.Sprintf("import-%s-%s.txt", taskID, time.Now().Format("20060102-150405"))

	var res jobResult
	if len(status.Result) > 0 {
		// Best effort: an unparseable payload still gets dumped below.
		_ = json.Unmarshal(status.Result, &res)
	}

	if strings.TrimSpace(res.Report) != "" {
		return Report{Filename: name, Content: []byte(res.Report)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Import task %s\n", taskID)
	fmt.Fprintf(&b, "Status: %s\n", status.Status)
	if status.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", status.Message)
	}
	fmt.Fprintf(&b, "Created: %d\nUpdated: %d\nFailed: %d\n", res.Created, res.Updated, res.Failed)
	if len(res.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	if len(status.Result) > 0 {
		b.WriteString("\nRaw result:\n")
		b.Write(status.Result)
		b.WriteString("\n")
	}
	return Report{Filename: name, Content: []byte(b.String())}
}
