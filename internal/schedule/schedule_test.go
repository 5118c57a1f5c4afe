package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerRunsJobsOnInterval(t *testing.T) {
	var runs atomic.Int64
	r := NewRunner(nil, Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	r.Start(context.Background())
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("job ran %d times, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunnerStopHaltsJobs(t *testing.T) {
	var runs atomic.Int64
	r := NewRunner(nil, Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	r.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	at := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != at {
		t.Fatalf("job kept running after Stop: %d -> %d", at, runs.Load())
	}

	// Stop twice is harmless.
	r.Stop()
}

func TestRunnerSurvivesFailuresAndPanics(t *testing.T) {
	var runs atomic.Int64
	r := NewRunner(nil,
		Job{
			Name:     "failing",
			Interval: 5 * time.Millisecond,
			Run: func(ctx context.Context) error {
				return errors.New("boom")
			},
		},
		Job{
			Name:     "panicking",
			Interval: 5 * time.Millisecond,
			Run: func(ctx context.Context) error {
				runs.Add(1)
				if runs.Load() == 1 {
					panic("first run panics")
				}
				return nil
			},
		},
	)

	r.Start(context.Background())
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("panicking job did not keep running: %d runs", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunnerIgnoresMisconfiguredJobs(t *testing.T) {
	r := NewRunner(nil,
		Job{Name: "no-interval", Run: func(ctx context.Context) error { return nil }},
		Job{Name: "no-func", Interval: time.Millisecond},
	)
	r.Start(context.Background())
	r.Stop()
}
