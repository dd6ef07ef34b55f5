package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"vidgrab/config"
	"vidgrab/models"
	"vidgrab/utils"
)

// Downloader launches and supervises download jobs. Start returns
// immediately with a job id; the work runs in a bounded pool of goroutines
// and reports through the tracker.
type Downloader struct {
	tracker   *Tracker
	fetcher   Fetcher
	transcode Transcoder
	sem       chan struct{}
}

// NewDownloader wires a downloader against its capabilities.
func NewDownloader(tracker *Tracker, fetcher Fetcher, transcode Transcoder) *Downloader {
	return &Downloader{
		tracker:   tracker,
		fetcher:   fetcher,
		transcode: transcode,
		sem:       make(chan struct{}, config.MaxWorkers),
	}
}

// Start validates the request, registers the job, and spawns the async unit
// of work. The tracker entry exists before the goroutine starts, so an
// immediate status poll never 404s.
func (d *Downloader) Start(req *models.DownloadRequest) (string, error) {
	if err := utils.ValidateDownloadRequest(req); err != nil {
		return "", err
	}

	jobID := NewJobID()
	if err := utils.CreateJobDir(jobID); err != nil {
		return "", fmt.Errorf("failed to create job directory: %w", err)
	}

	d.tracker.Create(jobID, "")
	go d.run(jobID, req)

	return jobID, nil
}

// run is the async unit of work: fetch, optionally transcode, record the
// result. Exactly one terminal transition happens per job; the tracker
// ignores anything after it.
func (d *Downloader) run(jobID string, req *models.DownloadRequest) {
	d.sem <- struct{}{}
	defer func() { <-d.sem }()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Job %s] Panic: %v\n", jobID, r)
			d.fail(jobID, "Internal error")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), config.JobTimeout)
	defer cancel()

	jobDir := utils.GetJobDir(jobID)
	selector := buildSelector(req)

	log.Printf("[Job %s] Starting download (format: %s)\n", jobID, selector)

	err := d.fetcher.Fetch(ctx, req.URL, selector, jobDir, func(event ProgressEvent) {
		d.tracker.Update(jobID, func(job *models.Job) {
			switch event.Status {
			case "downloading":
				job.State = models.StateDownloading
				job.Progress = event.Percent
			case "finished":
				// Download phase done; the terminal update below
				// decides Finished vs Converting.
				job.Progress = event.Percent
			}
		})
	})
	if err != nil {
		log.Printf("[Job %s] Download error: %v\n", jobID, err)
		d.fail(jobID, sanitizeErrMessage(err))
		return
	}

	resultPath, ok := utils.LargestMediaFile(jobDir)
	if !ok {
		d.fail(jobID, "No media file was produced")
		return
	}

	warning := ""
	native := strings.TrimPrefix(filepath.Ext(resultPath), ".")
	target := targetContainer(req)

	if target != "" && target != native {
		d.tracker.Update(jobID, func(job *models.Job) {
			job.State = models.StateConverting
		})

		converted, convErr := d.transcode.Convert(ctx, resultPath, target)
		switch {
		case convErr == nil:
			resultPath = converted
			log.Printf("[Job %s] Converted to %s\n", jobID, target)
		case req.MustConvert:
			log.Printf("[Job %s] Transcode error: %v\n", jobID, convErr)
			d.fail(jobID, sanitizeErrMessage(convErr))
			return
		default:
			// Keep the native file rather than failing the job.
			warning = fmt.Sprintf("Conversion to %s failed; serving the native %s file", target, native)
			log.Printf("[Job %s] %s: %v\n", jobID, warning, convErr)
		}
	}

	filename := filepath.Base(resultPath)
	d.tracker.Update(jobID, func(job *models.Job) {
		job.State = models.StateFinished
		job.Progress = 100
		job.Active = false
		job.FilePath = resultPath
		job.Filename = filename
		job.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
		job.Warning = warning
		job.DownloadURL = utils.GenerateFileURL(jobID)
	})

	log.Printf("[Job %s] Completed: %s\n", jobID, filename)
}

// fail records the single terminal Error transition.
func (d *Downloader) fail(jobID, message string) {
	d.tracker.Update(jobID, func(job *models.Job) {
		job.State = models.StateError
		job.Active = false
		job.Error = message
	})
}

// buildSelector resolves the request into a format selector with a
// degradation chain, so a too-specific request falls back through lower
// quality tiers instead of failing outright.
func buildSelector(req *models.DownloadRequest) string {
	if req.AudioOnly {
		return "bestaudio[ext=m4a]/bestaudio/best"
	}

	if req.FormatID != "" && req.FormatID != "best" {
		return fmt.Sprintf("%s+bestaudio[ext=m4a]/%s/best[height<=%d]+bestaudio/best",
			req.FormatID, req.FormatID, config.DefaultMaxHeight)
	}

	return fmt.Sprintf("best[ext=mp4][height<=%d]/best[height<=%d]/best",
		config.DefaultMaxHeight, config.DefaultMaxHeight)
}

// targetContainer returns the requested container, or empty when the native
// container should be kept as-is.
func targetContainer(req *models.DownloadRequest) string {
	if req.AudioOnly {
		if req.Container != "" {
			return req.Container
		}
		return "" // keep native audio container
	}
	if req.Container == "" || req.Container == "mp4" {
		return ""
	}
	return req.Container
}

// sanitizeErrMessage trims engine noise out of messages shown to users.
func sanitizeErrMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, "\n"); idx > 0 {
		msg = msg[:idx]
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
