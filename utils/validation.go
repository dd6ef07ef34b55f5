package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"vidgrab/config"
	"vidgrab/models"
)

// Platform classifies a URL for strategy selection.
type Platform int

const (
	PlatformGeneric Platform = iota
	PlatformRestricted
	PlatformUnsupported
)

var (
	restrictedURLPattern = regexp.MustCompile(`(?:youtube\.com\/(?:watch\?v=|embed\/|v\/|shorts\/)|youtu\.be\/)([a-zA-Z0-9_-]{6,})`)
	jobIDPattern         = regexp.MustCompile(config.JobIDRegex)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ClassifyPlatform decides which strategy list a URL gets: the restricted
// platform uses the full bypass registry, unknown hosts use the generic
// single strategy, and known non-video hosts are rejected outright.
// Matching is on the host only; a rejected domain appearing in the path or
// query of some other site must not taint the classification.
func ClassifyPlatform(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return PlatformGeneric
	}
	host := strings.ToLower(u.Hostname())

	for _, domain := range config.UnsupportedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return PlatformUnsupported
		}
	}

	if host == "youtube.com" || host == "youtu.be" || strings.HasSuffix(host, ".youtube.com") {
		return PlatformRestricted
	}

	return PlatformGeneric
}

// ExtractVideoID extracts the platform video ID from a restricted-platform
// URL. Returns empty string when the URL carries no recognizable ID.
func ExtractVideoID(rawURL string) string {
	matches := restrictedURLPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// ValidateURL rejects empty or unparseable URLs before any work starts.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ValidationError{Field: "url", Message: "URL is required"}
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{Field: "url", Message: "Invalid URL"}
	}
	return nil
}

// ValidateDownloadRequest validates the download request at the boundary,
// before a job is created.
func ValidateDownloadRequest(req *models.DownloadRequest) error {
	if err := ValidateURL(req.URL); err != nil {
		return err
	}

	if req.Container != "" {
		if req.AudioOnly {
			if !slices.Contains(config.AudioContainers, req.Container) {
				return ValidationError{
					Field:   "container",
					Message: fmt.Sprintf("Invalid audio container. Must be one of: %v", config.AudioContainers),
				}
			}
		} else if req.Container != "mp4" && !slices.Contains(config.TranscodeContainers, req.Container) {
			return ValidationError{
				Field:   "container",
				Message: fmt.Sprintf("Invalid container. Must be mp4 or one of: %v", config.TranscodeContainers),
			}
		}
	}

	if req.MustConvert && req.Container == "" {
		return ValidationError{Field: "mustConvert", Message: "mustConvert requires a container"}
	}

	return nil
}

// ValidateJobID validates the job ID format
func ValidateJobID(jobID string) bool {
	return jobIDPattern.MatchString(jobID)
}
