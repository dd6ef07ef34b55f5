package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"vidgrab/config"
)

var (
	// Characters not allowed in filenames
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Multiple spaces/underscores
	multipleSpaces = regexp.MustCompile(`[\s_]+`)
)

// SanitizeFilename removes invalid characters from filename
func SanitizeFilename(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = multipleSpaces.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_ ")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}

// IsSidecarPath reports whether a path names a metadata sidecar rather than
// the media file itself.
func IsSidecarPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(config.SidecarExtensions, ext)
}

// IsServableMedia enforces the extension allow-list at the serving boundary.
// A sidecar path is refused even if it was recorded as a job result.
func IsServableMedia(path string) bool {
	if IsSidecarPath(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(config.MediaExtensions, ext)
}

// LargestMediaFile picks the job result out of a working directory: the
// biggest file that is not a sidecar or partial download. The download
// engine may leave several files behind; the media file is the largest.
func LargestMediaFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var best string
	var bestSize int64 = -1
	for _, entry := range entries {
		if entry.IsDir() || IsSidecarPath(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}

// ContentTypeFromExt returns content type for file extension
func ContentTypeFromExt(ext string) string {
	switch ext {
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "mkv":
		return "video/x-matroska"
	case "avi":
		return "video/x-msvideo"
	case "3gp":
		return "video/3gpp"
	case "flv":
		return "video/x-flv"
	case "mp3":
		return "audio/mpeg"
	case "m4a":
		return "audio/mp4"
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/opus"
	case "flac":
		return "audio/flac"
	case "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
