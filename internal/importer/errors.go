package importer

import "fmt"

// TaskSubmissionError is a fatal failure to create an import job. The
// attempt is over; the user must resubmit.
type TaskSubmissionError struct {
	Message string
	Err     error
}

func (e *TaskSubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit import job: %s: %v", e.Message, e.Err)
	}
	return "submit import job: " + e.Message
}

func (e *TaskSubmissionError) Unwrap() error { return e.Err }

// TaskPollError is a transport or parse failure on a poll tick. The
// polling channel is considered broken: the loop stops immediately and
// nothing is retried.
type TaskPollError struct {
	TaskID string
	Err    error
}

func (e *TaskPollError) Error() string {
	return fmt.Sprintf("poll task %s: %v", e.TaskID, e.Err)
}

func (e *TaskPollError) Unwrap() error { return e.Err }

// TaskFailedError carries the server's failure message for a job that
// reached the failed status.
type TaskFailedError struct {
	TaskID  string
	Message string
}

func (e *TaskFailedError) Error() string {
	if e.Message == "" {
		return "import task " + e.TaskID + " failed"
	}
	return "import task " + e.TaskID + " failed: " + e.Message
}
