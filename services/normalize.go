package services

import (
	"fmt"
	"slices"
	"sort"
	"vidgrab/config"
	"vidgrab/models"
)

const maxFormats = 10

// Normalize converts a raw extraction result into the canonical VideoInfo.
// It is total: any field may be missing from the raw object and the result
// is still well-formed. A nil raw yields a minimal record with no formats.
func Normalize(raw *models.RawInfo, sourceURL string) *models.VideoInfo {
	if raw == nil {
		return &models.VideoInfo{
			Title:     "Video",
			Uploader:  "Unknown",
			Duration:  "0:00",
			Formats:   []models.FormatOption{},
			SourceURL: sourceURL,
		}
	}

	info := &models.VideoInfo{
		Title:           raw.Title,
		Uploader:        raw.Uploader,
		Duration:        FormatDuration(int(raw.Duration)),
		DurationSeconds: int(raw.Duration),
		Thumbnail:       raw.Thumbnail,
		ViewCount:       raw.ViewCount,
		Formats:         normalizeFormats(raw.Formats),
		SourceURL:       sourceURL,
	}

	if info.Title == "" {
		info.Title = "Video"
	}
	if info.Uploader == "" {
		info.Uploader = "Unknown"
	}
	if info.ViewCount < 0 {
		info.ViewCount = 0
	}
	if raw.WebpageURL != "" {
		// A strategy may canonicalize the input URL.
		info.SourceURL = raw.WebpageURL
	}

	return info
}

// normalizeFormats filters to real video formats, sorts by height descending
// and keeps the first entry per height, capped at maxFormats.
func normalizeFormats(raw []models.RawFormat) []models.FormatOption {
	var candidates []models.RawFormat
	for _, fmtEntry := range raw {
		if fmtEntry.Height <= 0 {
			continue
		}
		if fmtEntry.VCodec == "" || fmtEntry.VCodec == "none" {
			continue
		}
		if slices.Contains(config.AuxiliaryFormats, fmtEntry.Ext) {
			continue
		}
		candidates = append(candidates, fmtEntry)
	}

	// Stable so the first-seen entry per height wins when input is
	// already in preference order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Height > candidates[j].Height
	})

	formats := make([]models.FormatOption, 0, maxFormats)
	seen := make(map[int]bool)
	for _, fmtEntry := range candidates {
		if seen[fmtEntry.Height] {
			continue
		}
		seen[fmtEntry.Height] = true

		option := models.FormatOption{
			Selector:   fmtEntry.FormatID,
			Height:     fmtEntry.Height,
			Width:      fmtEntry.Width,
			Container:  fmtEntry.Ext,
			VideoCodec: fmtEntry.VCodec,
			AudioCodec: fmtEntry.ACodec,
			Filesize:   fmtEntry.Filesize,
			Quality:    fmt.Sprintf("%dp", fmtEntry.Height),
		}
		if option.Selector == "" {
			option.Selector = fmt.Sprintf("best[height<=%d]", fmtEntry.Height)
		}
		if option.Container == "" {
			option.Container = "mp4"
		}
		if option.Width <= 0 {
			option.Width = fmtEntry.Height * 16 / 9
		}
		if option.VideoCodec == "" {
			option.VideoCodec = "unknown"
		}
		if option.AudioCodec == "" {
			option.AudioCodec = "unknown"
		}

		formats = append(formats, option)
		if len(formats) >= maxFormats {
			break
		}
	}

	return formats
}

// FormatDuration renders seconds as H:MM:SS when at least an hour, else
// M:SS. Zero or negative renders as "0:00".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
