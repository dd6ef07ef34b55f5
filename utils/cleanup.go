package utils

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"vidgrab/config"
)

// GetJobDir returns the working directory for a job
func GetJobDir(jobID string) string {
	return filepath.Join(config.StorageDir, jobID)
}

// CreateJobDir creates the job working directory
func CreateJobDir(jobID string) error {
	return os.MkdirAll(GetJobDir(jobID), 0755)
}

// DeleteJobDir deletes the job directory and all contents
func DeleteJobDir(jobID string) error {
	return os.RemoveAll(GetJobDir(jobID))
}

// JobIDTime recovers the creation time encoded in a job id
// (<unix-ms>-<suffix>). Returns false for malformed ids.
func JobIDTime(jobID string) (time.Time, bool) {
	prefix, _, found := strings.Cut(jobID, "-")
	if !found {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// CleanupJobDirs removes on-disk working directories past their age limit.
// Directory age comes from the timestamp encoded in the job id; directories
// with unparseable names are removed outright.
func CleanupJobDirs() {
	if _, err := os.Stat(config.StorageDir); os.IsNotExist(err) {
		return
	}

	entries, err := os.ReadDir(config.StorageDir)
	if err != nil {
		log.Printf("[Cleanup] Error reading storage directory: %v\n", err)
		return
	}

	now := time.Now()
	deleted := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		jobID := entry.Name()
		createdAt, ok := JobIDTime(jobID)
		if !ok || !ValidateJobID(jobID) {
			if err := DeleteJobDir(jobID); err == nil {
				deleted++
				log.Printf("[Cleanup] Deleted invalid job dir: %s\n", jobID)
			}
			continue
		}

		if age := now.Sub(createdAt); age > config.MaxJobDirAge {
			if err := DeleteJobDir(jobID); err == nil {
				deleted++
				log.Printf("[Cleanup] Deleted old job dir: %s (age: %v)\n", jobID, age.Round(time.Minute))
			}
		}
	}

	if deleted > 0 {
		log.Printf("[Cleanup] Removed %d job dirs\n", deleted)
	}
}
