package services

import (
	"fmt"
	"testing"
	"time"
	"vidgrab/config"
	"vidgrab/models"
)

func TestNewJobID_UniqueAndOrderable(t *testing.T) {
	a := NewJobID()
	b := NewJobID()
	if a == b {
		t.Error("Job ids must be unique")
	}

	aTime, ok := jobCreatedAt(t, a)
	if !ok {
		t.Fatalf("Job id %q does not encode a timestamp", a)
	}
	if time.Since(aTime) > time.Minute {
		t.Errorf("Encoded timestamp is not recent: %v", aTime)
	}
}

func jobCreatedAt(t *testing.T, id string) (time.Time, bool) {
	t.Helper()
	var ms int64
	var suffix string
	if _, err := fmt.Sscanf(id, "%d-%s", &ms, &suffix); err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func TestTracker_CreateThenGet(t *testing.T) {
	tracker := NewTracker()
	id := NewJobID()

	tracker.Create(id, "My Video")

	job, ok := tracker.Get(id)
	if !ok {
		t.Fatal("Created job must be visible immediately")
	}
	if job.State != models.StateStarting {
		t.Errorf("New job state = %s, expected starting", job.State)
	}
	if !job.Active {
		t.Error("New job must be active")
	}
	if job.Title != "My Video" {
		t.Errorf("Title = %q", job.Title)
	}
}

func TestTracker_GetUnknownID(t *testing.T) {
	tracker := NewTracker()

	if _, ok := tracker.Get("1000000000000-aaaaaaaa"); ok {
		t.Error("Ancient unknown id must report not found")
	}
	if _, ok := tracker.Get("garbage"); ok {
		t.Error("Malformed id must report not found")
	}
}

func TestTracker_RecentIDGetsPlaceholder(t *testing.T) {
	tracker := NewTracker()

	// An id issued moments ago but not yet created: the poll may have
	// raced job creation, so the tracker synthesizes a Starting entry.
	recentID := fmt.Sprintf("%d-abcdefgh", time.Now().UnixMilli())

	job, ok := tracker.Get(recentID)
	if !ok {
		t.Fatal("Recently issued id must get a placeholder, not a miss")
	}
	if job.State != models.StateStarting {
		t.Errorf("Placeholder state = %s, expected starting", job.State)
	}
	if job.Active {
		t.Error("Placeholder must be inactive: no worker owns it")
	}
}

func TestTracker_StalePlaceholderIsReclaimed(t *testing.T) {
	tracker := NewTracker()

	// Crafted ids with a fresh timestamp pass validation, so polls can
	// mint placeholders at will. They must not accumulate forever.
	for _, suffix := range []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"} {
		id := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
		if _, ok := tracker.Get(id); !ok {
			t.Fatalf("Expected a placeholder for %s", id)
		}
	}
	if tracker.Len() != 3 {
		t.Fatalf("Expected 3 placeholders, got %d", tracker.Len())
	}

	tracker.now = func() time.Time { return time.Now().Add(config.InactiveJobAge + time.Minute) }
	tracker.Sweep()

	if tracker.Len() != 0 {
		t.Errorf("Stale placeholders must be swept, %d remain", tracker.Len())
	}
}

func TestTracker_UpdateProgressMonotonic(t *testing.T) {
	tracker := NewTracker()
	id := NewJobID()
	tracker.Create(id, "")

	tracker.Update(id, func(j *models.Job) {
		j.State = models.StateDownloading
		j.Progress = 50
	})
	// Duplicated/reordered event with a lower percent.
	tracker.Update(id, func(j *models.Job) {
		j.State = models.StateDownloading
		j.Progress = 30
	})

	job, _ := tracker.Get(id)
	if job.Progress != 50 {
		t.Errorf("Progress regressed to %.0f, expected 50", job.Progress)
	}
}

func TestTracker_PostTerminalUpdatesIgnored(t *testing.T) {
	tracker := NewTracker()
	id := NewJobID()
	tracker.Create(id, "")

	tracker.Update(id, func(j *models.Job) {
		j.State = models.StateFinished
		j.FilePath = "/tmp/x.mp4"
	})

	applied := tracker.Update(id, func(j *models.Job) {
		j.State = models.StateError
		j.Error = "too late"
	})
	if applied {
		t.Error("Update after a terminal state must be ignored")
	}

	job, _ := tracker.Get(id)
	if job.State != models.StateFinished {
		t.Errorf("Terminal state was overwritten: %s", job.State)
	}
	if job.Progress != 100 {
		t.Errorf("Finished job progress = %.0f, expected 100", job.Progress)
	}
	if job.Active {
		t.Error("Terminal job must be inactive")
	}
}

func TestTracker_UpdateEvictedIDNoOps(t *testing.T) {
	tracker := NewTracker()
	id := "1000000000000-aaaaaaaa" // old enough that Get won't resurrect it

	if applied := tracker.Update(id, func(j *models.Job) { j.Progress = 10 }); applied {
		t.Error("Update on an evicted/unknown id must no-op")
	}
}

func TestTracker_SweepNeverEvictsActive(t *testing.T) {
	tracker := NewTracker()
	id := NewJobID()
	tracker.Create(id, "")

	// Pretend hours have passed.
	tracker.now = func() time.Time { return time.Now().Add(5 * time.Hour) }
	tracker.Sweep()

	if _, ok := tracker.Get(id); !ok {
		t.Error("Sweep evicted an active job")
	}
}

func TestTracker_SweepEvictsStaleJobs(t *testing.T) {
	tests := []struct {
		name    string
		state   models.JobState
		age     time.Duration
		evicted bool
	}{
		{"fresh finished job kept", models.StateFinished, 2 * time.Minute, false},
		{"old finished job evicted", models.StateFinished, 6 * time.Minute, true},
		{"old errored job evicted", models.StateError, 6 * time.Minute, true},
		{"stuck inactive job kept briefly", models.StateDownloading, 8 * time.Minute, false},
		{"stuck inactive job evicted eventually", models.StateDownloading, 11 * time.Minute, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tracker := NewTracker()
			id := NewJobID()
			tracker.Create(id, "")
			tracker.Update(id, func(j *models.Job) {
				j.State = test.state
				j.Active = false
			})

			// Keep the clock advanced: otherwise Get would treat the
			// evicted id as freshly issued and resurrect a placeholder.
			tracker.now = func() time.Time { return time.Now().Add(test.age) }
			tracker.Sweep()

			_, ok := tracker.Get(id)
			if test.evicted && ok {
				t.Error("Expected job to be evicted")
			}
			if !test.evicted && !ok {
				t.Error("Expected job to survive the sweep")
			}
		})
	}
}
