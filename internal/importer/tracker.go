// Package importer tracks asynchronous CSV import jobs: it submits a
// file to the job-creation endpoint and polls the task-status endpoint
// at a fixed interval until the task reaches a terminal state.
//
// A Tracker owns at most one task at a time. Submitting a new file
// while a polling loop is active replaces the slot atomically: the old
// loop's context is cancelled and any response still in flight for it
// is discarded by a generation check, so progress never regresses.
package importer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/catalogkit/skuadmin/internal/catalog"
)

// Task status values reported by the job endpoint.
const (
	StatusSubmitted  = "submitted"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// TaskState is the tracker's own lifecycle state.
type TaskState string

const (
	StateIdle       TaskState = "idle"
	StateSubmitting TaskState = "submitting"
	StatePolling    TaskState = "polling"
	StateCompleted  TaskState = "completed"
	StateFailed     TaskState = "failed"
)

// JobStatus is one poll response from the task-status endpoint.
type JobStatus struct {
	Status  string          `json:"status"`
	Percent int             `json:"percent"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// JobClient is the contract the tracker requires from the import job
// endpoint.
type JobClient interface {
	SubmitJob(ctx context.Context, filename string, data []byte) (string, error)
	GetJobStatus(ctx context.Context, taskID string) (JobStatus, error)
}

// DefaultPollInterval is the poll cadence when none is configured.
const DefaultPollInterval = 3 * time.Second

// TrackerOptions configures a Tracker. All callbacks are optional.
type TrackerOptions struct {
	PollInterval time.Duration                   // default: DefaultPollInterval
	Notifier     catalog.Notifier                // default: discard
	OnCompleted  func(Report)                    // fired once per completed task
	OnFailed     func(error)                     // fired once per failed attempt
	Reload       func(context.Context) error     // cache reload hook, fired after completion
}

// Snapshot is a point-in-time view of the tracked task.
type Snapshot struct {
	State   TaskState `json:"state"`
	TaskID  string    `json:"taskId,omitempty"`
	Percent int       `json:"percent"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Tracker submits import jobs and polls them to completion.
type Tracker struct {
	client   JobClient
	interval time.Duration
	notifier catalog.Notifier
	onDone   func(Report)
	onFail   func(error)
	reload   func(context.Context) error

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	state   TaskState
	taskID  string
	percent int
	message string
	errMsg  string
	report  *Report
}

// NewTracker creates an idle tracker over the given job client.
func NewTracker(client JobClient, opts TrackerOptions) *Tracker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Notifier == nil {
		opts.Notifier = catalog.NopNotifier{}
	}
	return &Tracker{
		client:   client,
		interval: opts.PollInterval,
		notifier: opts.Notifier,
		onDone:   opts.OnCompleted,
		onFail:   opts.OnFailed,
		reload:   opts.Reload,
		state:    StateIdle,
	}
}

// Snapshot returns the current task view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		State:   t.state,
		TaskID:  t.taskID,
		Percent: t.percent,
		Message: t.message,
		Error:   t.errMsg,
	}
}

// Report returns the result report of the last completed task, if any.
func (t *Tracker) Report() (Report, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.report == nil {
		return Report{}, false
	}
	return *t.report, true
}

// Done returns the completion channel of the active polling loop, or
// nil when no loop is running. The channel is closed when the loop
// exits for any reason.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Cancel tears down any active polling loop. Called when the owning
// context goes away; the task keeps running server-side.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replaceLocked()
	if t.state == StateSubmitting || t.state == StatePolling {
		t.state = StateIdle
		t.taskID = ""
		t.percent = 0
		t.message = ""
	}
}

// replaceLocked cancels the current loop and bumps the generation so
// any of its in-flight responses are discarded. Caller holds t.mu.
func (t *Tracker) replaceLocked() uint64 {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
	return t.gen
}

// Submit sends the file to the job-creation endpoint and, on success,
// starts the polling loop. A prior loop is cancelled first: the
// tracker does not support concurrent tasks.
func (t *Tracker) Submit(ctx context.Context, filename string, data []byte) error {
	t.mu.Lock()
	gen := t.replaceLocked()
	t.state = StateSubmitting
	t.taskID = ""
	t.percent = 0
	t.message = ""
	t.errMsg = ""
	t.report = nil
	t.done = nil
	t.mu.Unlock()

	taskID, err := t.client.SubmitJob(ctx, filename, data)
	if err == nil && taskID == "" {
		err = &TaskSubmissionError{Message: "response is missing taskId"}
	}
	if err != nil {
		if _, ok := err.(*TaskSubmissionError); !ok {
			err = &TaskSubmissionError{Message: "request failed", Err: err}
		}
		t.fail(gen, err, true)
		return err
	}

	// The loop must outlive the submitting request's context.
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	t.mu.Lock()
	if gen != t.gen {
		// Replaced while the submission was in flight.
		t.mu.Unlock()
		cancel()
		close(done)
		return nil
	}
	t.cancel = cancel
	t.done = done
	t.state = StatePolling
	t.taskID = taskID
	t.mu.Unlock()

	go t.poll(loopCtx, gen, taskID, done)
	return nil
}

// poll runs the fixed-interval status loop for one task. Requests are
// issued strictly one at a time; the loop exits on a terminal status,
// on the first transport error, or when its context is cancelled.
func (t *Tracker) poll(ctx context.Context, gen uint64, taskID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := t.client.GetJobStatus(ctx, taskID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Fail fast: a broken polling channel is not retried.
				t.fail(gen, &TaskPollError{TaskID: taskID, Err: err}, false)
				return
			}

			if !t.applyTick(gen, status) {
				return // replaced; stale response discarded
			}

			switch status.Status {
			case StatusCompleted:
				t.complete(ctx, gen, taskID, status)
				return
			case StatusFailed:
				t.fail(gen, &TaskFailedError{TaskID: taskID, Message: status.Message}, true)
				return
			}
		}
	}
}

// applyTick folds one poll response into the task state, regardless of
// its status value. Returns false when the response belongs to a
// replaced loop.
func (t *Tracker) applyTick(gen uint64, status JobStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return false
	}
	t.percent = clampPercent(status.Percent)
	t.message = status.Message
	return true
}

// complete transitions to Completed, assembles the downloadable
// report, fires the success callback once, and triggers a cache
// reload.
func (t *Tracker) complete(ctx context.Context, gen uint64, taskID string, status JobStatus) {
	report := BuildReport(taskID, status)

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.state = StateCompleted
	t.percent = clampPercent(status.Percent)
	t.message = status.Message
	t.report = &report
	t.cancel = nil
	t.mu.Unlock()

	t.notifier.Notify(catalog.NewNotification(catalog.NoteSuccess,
		"import completed", taskID))
	if t.reload != nil {
		if err := t.reload(ctx); err != nil {
			t.notifier.Notify(catalog.NewNotification(catalog.NoteWarning,
				"import completed but the record list could not be refreshed", err.Error()))
		}
	}
	if t.onDone != nil {
		t.onDone(report)
	}
}

// fail transitions to Failed. resetPercent clears the progress bar so
// a server-reported failure does not show a misleading partial bar.
func (t *Tracker) fail(gen uint64, err error, resetPercent bool) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.state = StateFailed
	t.errMsg = err.Error()
	if resetPercent {
		t.percent = 0
	}
	t.cancel = nil
	t.mu.Unlock()

	t.notifier.Notify(catalog.NewNotification(catalog.NoteError, "import failed", err.Error()))
	if t.onFail != nil {
		t.onFail(err)
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
