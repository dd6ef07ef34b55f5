package services

import (
	"fmt"
	"log"
	"sync"
	"time"
	"vidgrab/config"
	"vidgrab/utils"

	"github.com/jaevor/go-nanoid"
	"github.com/robfig/cron/v3"

	"vidgrab/models"
)

var generateSuffix func() string

func init() {
	var err error
	generateSuffix, err = nanoid.Standard(config.JobIDSuffixLength)
	if err != nil {
		panic(err)
	}
}

// NewJobID returns a unique job id ordered by creation time:
// <unix-ms>-<random suffix>.
func NewJobID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), generateSuffix())
}

// Tracker is the process-wide store of job state. It owns every Job: all
// reads return copies and all writes go through Update, so the progress
// callback, the poll handlers, and the reaper never race on an entry.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]*models.Job

	now func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*models.Job),
		now:  time.Now,
	}
}

// Create registers a job in Starting state. Must happen before the async
// unit of work is spawned so an immediate poll never misses it.
func (t *Tracker) Create(id, title string) models.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := &models.Job{
		ID:        id,
		State:     models.StateStarting,
		CreatedAt: t.now(),
		Active:    true,
		Title:     title,
	}
	t.jobs[id] = job
	return *job
}

// Get returns a snapshot of a job. A miss for an id issued within the last
// few seconds returns a synthesized Starting placeholder: a poll can win the
// race against the creating request without surfacing a bogus 404.
func (t *Tracker) Get(id string) (models.Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.jobs[id]; ok {
		return *job, true
	}

	if createdAt, ok := utils.JobIDTime(id); ok {
		if age := t.now().Sub(createdAt); age >= 0 && age < config.RecentJobWindow {
			// Inactive: no worker owns this entry, so the sweep must be
			// able to reclaim it. If the real creation lands, Create
			// replaces it wholesale.
			job := &models.Job{
				ID:        id,
				State:     models.StateStarting,
				CreatedAt: createdAt,
			}
			t.jobs[id] = job
			return *job, true
		}
	}

	return models.Job{}, false
}

// Update applies an atomic read-modify-write to one job. Updates against a
// terminal job are ignored, progress never regresses within a state, and an
// update for an evicted id no-ops. Returns whether the mutation was applied.
func (t *Tracker) Update(id string, mutate func(*models.Job)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return false
	}
	if job.State.Terminal() {
		return false
	}

	prevState := job.State
	prevProgress := job.Progress

	mutate(job)

	if job.Progress < 0 {
		job.Progress = 0
	}
	if job.Progress > 100 {
		job.Progress = 100
	}
	// Duplicated or reordered progress events must not walk backwards.
	if job.State == prevState && job.Progress < prevProgress {
		job.Progress = prevProgress
	}
	if job.State.Terminal() {
		job.Active = false
		if job.State == models.StateFinished {
			job.Progress = 100
		}
	}

	return true
}

// Evict removes a job from the tracker.
func (t *Tracker) Evict(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// Sweep evicts stale inactive jobs: terminal ones past TerminalJobAge, any
// inactive one past InactiveJobAge. Active jobs are never evicted, whatever
// their age; the in-flight worker still needs to land its terminal update.
func (t *Tracker) Sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	evicted := 0
	for id, job := range t.jobs {
		if job.Active {
			continue
		}
		age := now.Sub(job.CreatedAt)
		if (job.State.Terminal() && age > config.TerminalJobAge) || age > config.InactiveJobAge {
			delete(t.jobs, id)
			evicted++
		}
	}

	if evicted > 0 {
		log.Printf("[Sweep] Evicted %d stale jobs\n", evicted)
	}
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// StartReaper schedules the periodic sweep of tracker entries and on-disk
// job directories, plus one pass at startup for leftovers from a previous
// run.
func StartReaper(t *Tracker) *cron.Cron {
	c := cron.New()

	c.AddFunc(config.SweepSchedule, func() {
		t.Sweep()
		utils.CleanupJobDirs()
	})

	c.Start()
	go utils.CleanupJobDirs()

	log.Println("[Sweep] Reaper started")
	return c
}
