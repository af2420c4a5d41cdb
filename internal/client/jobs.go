package client

import (
	"bytes"
	"context"
	"time"

	"github.com/catalogkit/skuadmin/internal/importer"
	"github.com/go-resty/resty/v2"
)

// Jobs talks to the import job endpoints: multipart job submission and
// task status polling.
type Jobs struct {
	http *resty.Client
}

// NewJobs creates a job client for the given base URL.
func NewJobs(baseURL string, timeout time.Duration) *Jobs {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Jobs{http: c}
}

// submitResponse is the job-creation response. A missing taskId is a
// fatal submission error.
type submitResponse struct {
	TaskID string `json:"taskId"`
}

// SubmitJob uploads the file to the job-creation endpoint and returns
// the created task's id.
func (j *Jobs) SubmitJob(ctx context.Context, filename string, data []byte) (string, error) {
	var out submitResponse
	resp, err := j.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&out).
		Post("/api/import-jobs")
	if err != nil {
		return "", &importer.TaskSubmissionError{Message: "request failed", Err: err}
	}
	if resp.IsError() {
		return "", &importer.TaskSubmissionError{Message: resp.Status()}
	}
	if out.TaskID == "" {
		return "", &importer.TaskSubmissionError{Message: "response is missing taskId"}
	}
	return out.TaskID, nil
}

// GetJobStatus fetches the current status of a task.
func (j *Jobs) GetJobStatus(ctx context.Context, taskID string) (importer.JobStatus, error) {
	var out importer.JobStatus
	resp, err := j.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("id", taskID).
		Get("/api/import-jobs/{id}")
	if err != nil {
		return importer.JobStatus{}, err
	}
	if resp.IsError() {
		return importer.JobStatus{}, &importer.TaskPollError{TaskID: taskID, Err: errStatus(resp)}
	}
	return out, nil
}

type httpStatusError struct {
	status string
}

func (e *httpStatusError) Error() string { return e.status }

func errStatus(resp *resty.Response) error {
	return &httpStatusError{status: resp.Status()}
}
