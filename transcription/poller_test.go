package transcription

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/logger"
)

func testPoller(max int, opts ...PollerOption) *Poller {
	return NewPoller("assemblyai", PollConfig{MaxAttempts: max, Interval: time.Millisecond}, logger.NewDefault("test"), opts...)
}

func scripted(statuses ...StatusUpdate) (StatusFunc, *int) {
	calls := 0
	return func(_ context.Context, _ string) (StatusUpdate, error) {
		calls++
		if calls <= len(statuses) {
			return statuses[calls-1], nil
		}
		return StatusUpdate{Status: JobSubmitted}, nil
	}, &calls
}

func TestPoller_CompletesOnThirdAttempt(t *testing.T) {
	fetch, calls := scripted(
		StatusUpdate{Status: JobSubmitted},
		StatusUpdate{Status: JobSubmitted},
		StatusUpdate{Status: JobCompleted, Text: "red shoes"},
	)
	job := NewJob("abc")

	text, err := testPoller(30).Poll(context.Background(), job, fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "red shoes" {
		t.Errorf("expected 'red shoes', got %q", text)
	}
	if *calls != 3 {
		t.Errorf("expected 3 status requests, got %d", *calls)
	}
	if job.Status != JobCompleted || job.Attempts != 3 {
		t.Errorf("unexpected job state: %+v", job)
	}
}

func TestPoller_StopsAtCompletingAttempt(t *testing.T) {
	for _, k := range []int{1, 15, 30} {
		statuses := make([]StatusUpdate, k)
		for i := range statuses {
			statuses[i] = StatusUpdate{Status: JobSubmitted}
		}
		statuses[k-1] = StatusUpdate{Status: JobCompleted, Text: "done"}
		fetch, calls := scripted(statuses...)

		if _, err := testPoller(30).Poll(context.Background(), NewJob("j"), fetch); err != nil {
			t.Fatalf("k=%d: unexpected error %v", k, err)
		}
		if *calls != k {
			t.Errorf("k=%d: expected exactly %d requests, got %d", k, k, *calls)
		}
	}
}

func TestPoller_TimeoutAfterExactlyMaxAttempts(t *testing.T) {
	fetch, calls := scripted()
	job := NewJob("slow")

	_, err := testPoller(30).Poll(context.Background(), job, fetch)
	if !errors.HasCode(err, errors.ErrCodeTranscriptionTimeout) {
		t.Fatalf("expected TRANSCRIPTION_TIMEOUT, got %v", err)
	}
	if *calls != 30 {
		t.Errorf("expected exactly 30 requests, got %d", *calls)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["attempts"] != 30 || appErr.Details["job_id"] != "slow" {
		t.Errorf("unexpected details: %v", appErr.Details)
	}
	if job.Status != JobFailed {
		t.Errorf("expected failed job, got %s", job.Status)
	}
}

func TestPoller_ErrorStatusFailsImmediately(t *testing.T) {
	fetch, calls := scripted(
		StatusUpdate{Status: JobSubmitted},
		StatusUpdate{Status: JobFailed, Error: "audio too short"},
	)
	job := NewJob("bad")

	_, err := testPoller(30).Poll(context.Background(), job, fetch)
	if !errors.HasCode(err, errors.ErrCodeUpstreamReported) {
		t.Fatalf("expected UPSTREAM_REPORTED_ERROR, got %v", err)
	}
	if *calls != 2 {
		t.Errorf("expected 2 requests, got %d", *calls)
	}
	if job.Error != "audio too short" {
		t.Errorf("expected job error recorded, got %q", job.Error)
	}
}

func TestPoller_FetchErrorStopsPolling(t *testing.T) {
	boom := errors.UpstreamRequest("assemblyai", 500, nil)
	calls := 0
	fetch := func(context.Context, string) (StatusUpdate, error) {
		calls++
		return StatusUpdate{}, boom
	}

	_, err := testPoller(30).Poll(context.Background(), NewJob("x"), fetch)
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
}

func TestPoller_AttemptHook(t *testing.T) {
	var seen []int
	fetch, _ := scripted(StatusUpdate{Status: JobSubmitted}, StatusUpdate{Status: JobCompleted, Text: "x"})
	p := testPoller(30, WithAttemptHook(func(n int) { seen = append(seen, n) }))

	if _, err := p.Poll(context.Background(), NewJob("j"), fetch); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected [1 2], got %v", seen)
	}
}

func TestPollConfig_Defaults(t *testing.T) {
	var cfg PollConfig
	cfg.ApplyDefaults()
	if cfg.MaxAttempts != 30 || cfg.Interval != time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
