package models

import "time"

// VideoInfo is the canonical, immutable result of extraction.
type VideoInfo struct {
	Title           string         `json:"title"`
	Uploader        string         `json:"uploader"`
	Duration        string         `json:"duration"` // H:MM:SS or M:SS
	DurationSeconds int            `json:"durationSeconds"`
	Thumbnail       string         `json:"thumbnail"`
	ViewCount       int64          `json:"viewCount"`
	Formats         []FormatOption `json:"formats"`
	SourceURL       string         `json:"sourceUrl"`
	// Advisory is set when live extraction failed and the record was
	// synthesized from the URL alone. Callers must surface it.
	Advisory string `json:"advisory,omitempty"`
}

// FormatOption is one selectable quality. Selector is opaque: it may be a
// concrete format id or a declarative expression like "best[height<=720]".
type FormatOption struct {
	Selector   string `json:"formatId"`
	Height     int    `json:"height"`
	Width      int    `json:"width"`
	Container  string `json:"ext"`
	VideoCodec string `json:"vcodec"`
	AudioCodec string `json:"acodec"`
	Filesize   int64  `json:"filesize,omitempty"`
	Quality    string `json:"quality"` // "720p"
}

// RawInfo is the loosely-typed metadata object returned by the extraction
// engine before normalization. Any field may be missing.
type RawInfo struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Duration   float64     `json:"duration"`
	Thumbnail  string      `json:"thumbnail"`
	ViewCount  int64       `json:"view_count"`
	WebpageURL string      `json:"webpage_url"`
	Formats    []RawFormat `json:"formats"`
}

// RawFormat is one raw format entry.
type RawFormat struct {
	FormatID string `json:"format_id"`
	Ext      string `json:"ext"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
	Filesize int64  `json:"filesize"`
}

// ExtractKind classifies an extraction failure.
type ExtractKind string

const (
	KindPrivate           ExtractKind = "private"
	KindUnavailable       ExtractKind = "unavailable"
	KindAgeRestricted     ExtractKind = "age_restricted"
	KindCopyright         ExtractKind = "copyright"
	KindRegionBlocked     ExtractKind = "region_blocked"
	KindUnsupportedSite   ExtractKind = "unsupported_site"
	KindBotCheck          ExtractKind = "bot_check"
	KindAuthRequired      ExtractKind = "auth_required"
	KindBadPlayerResponse ExtractKind = "bad_player_response"
	KindUnknown           ExtractKind = "unknown"
)

// ExtractionError is a classified extraction failure. Terminal errors are
// invariant across client profiles and stop the strategy chain.
type ExtractionError struct {
	Kind     ExtractKind `json:"kind"`
	Message  string      `json:"message"`
	Terminal bool        `json:"-"`
}

func (e *ExtractionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// ExtractionErrorResponse is the 200 payload delivered when extraction hit a
// terminal condition. The kind lets clients branch without string matching.
type ExtractionErrorResponse struct {
	Error string      `json:"error"`
	Kind  ExtractKind `json:"kind"`
}

// JobState is the lifecycle state of a download job.
type JobState string

const (
	StateStarting    JobState = "starting"
	StateDownloading JobState = "downloading"
	StateConverting  JobState = "converting"
	StateFinished    JobState = "finished"
	StateError       JobState = "error"
)

// Terminal reports whether no further transitions may leave the state.
func (s JobState) Terminal() bool {
	return s == StateFinished || s == StateError
}

// Job is the mutable record tracked per download. It is owned by the job
// tracker; all mutation goes through the tracker's Update.
type Job struct {
	ID        string    `json:"id"`
	State     JobState  `json:"state"`
	Progress  float64   `json:"progress"` // 0..100
	CreatedAt time.Time `json:"createdAt"`
	// Active guards the job against eviction while work is in flight,
	// independent of State.
	Active      bool   `json:"active"`
	Title       string `json:"title,omitempty"`
	FilePath    string `json:"-"`
	Filename    string `json:"filename,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Error       string `json:"error,omitempty"`
}

// InfoRequest is the body of POST /api/info.
type InfoRequest struct {
	URL string `json:"url"`
}

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	URL       string `json:"url"`
	FormatID  string `json:"formatId,omitempty"`
	AudioOnly bool   `json:"audioOnly,omitempty"`
	Container string `json:"container,omitempty"`
	// MustConvert makes a failed transcode fail the job instead of
	// falling back to the native file.
	MustConvert bool `json:"mustConvert,omitempty"`
}

// DownloadResponse is returned when a job is created.
type DownloadResponse struct {
	ID string `json:"id"`
}

// DeleteResponse is returned when a job is deleted.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// HealthResponse for the health check.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
