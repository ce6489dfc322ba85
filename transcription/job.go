package transcription

import (
	"fmt"

	"github.com/kbukum/smartsearch/errors"
)

// JobStatus is the lifecycle state of an asynchronous transcription.
type JobStatus string

const (
	// JobSubmitted means the job exists upstream but has no result yet.
	JobSubmitted JobStatus = "submitted"
	// JobCompleted means the transcript is available.
	JobCompleted JobStatus = "completed"
	// JobFailed means the job ended without a transcript.
	JobFailed JobStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job tracks one in-flight asynchronous transcription. Status only moves
// from submitted to completed or failed; attempts only grow.
type Job struct {
	ID       string    `json:"id"`
	Status   JobStatus `json:"status"`
	Attempts int       `json:"attempts"`
	Text     string    `json:"text,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// NewJob creates a submitted job.
func NewJob(id string) *Job {
	return &Job{ID: id, Status: JobSubmitted}
}

// RecordAttempt counts one status request. It fails once the job is
// terminal or the attempt would exceed max.
func (j *Job) RecordAttempt(max int) error {
	if j.Status.Terminal() {
		return errors.InvalidState(fmt.Sprintf("job %s is already %s", j.ID, j.Status))
	}
	if max > 0 && j.Attempts >= max {
		return errors.InvalidState(fmt.Sprintf("job %s exceeded %d attempts", j.ID, max))
	}
	j.Attempts++
	return nil
}

// Complete moves the job to completed with its transcript.
func (j *Job) Complete(text string) error {
	if err := j.transition(JobCompleted); err != nil {
		return err
	}
	j.Text = text
	return nil
}

// Fail moves the job to failed with a reason.
func (j *Job) Fail(reason string) error {
	if err := j.transition(JobFailed); err != nil {
		return err
	}
	j.Error = reason
	return nil
}

func (j *Job) transition(to JobStatus) error {
	if j.Status != JobSubmitted {
		return errors.InvalidState(fmt.Sprintf("job %s cannot move from %s to %s", j.ID, j.Status, to))
	}
	j.Status = to
	return nil
}
