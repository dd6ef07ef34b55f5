package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"vidgrab/config"
	"vidgrab/models"
)

// ProgressEvent is one lifecycle signal from the download engine. Events may
// arrive duplicated or out of order; consumers must apply them monotonically.
type ProgressEvent struct {
	Status  string // "downloading", "finished", "error"
	Percent float64
}

// Fetcher is the opaque download capability.
type Fetcher interface {
	Fetch(ctx context.Context, url, selector, destDir string, onProgress func(ProgressEvent)) error
}

// YTDLP drives the yt-dlp binary as both the metadata extraction capability
// and the download capability.
type YTDLP struct {
	Binary string
}

// NewYTDLP returns a capability backed by the yt-dlp binary on PATH.
func NewYTDLP() *YTDLP {
	return &YTDLP{Binary: "yt-dlp"}
}

// CheckBinary verifies the engine is installed.
func (y *YTDLP) CheckBinary() error {
	if _, err := exec.LookPath(y.Binary); err != nil {
		return fmt.Errorf("missing dependency: %s is not installed or not on PATH", y.Binary)
	}
	return nil
}

// ExtractRaw fetches raw metadata for a URL under a client profile.
func (y *YTDLP) ExtractRaw(ctx context.Context, url string, profile config.ClientProfile) (*models.RawInfo, error) {
	args := []string{"-J", "--no-warnings", "--no-playlist"}
	args = append(args, profileArgs(profile)...)
	args = append(args, url)

	cmd := exec.CommandContext(ctx, y.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("extraction failed: %s", detail)
	}

	var raw models.RawInfo
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("malformed player response: %w", err)
	}

	return &raw, nil
}

// profileArgs translates a client profile into engine flags.
func profileArgs(profile config.ClientProfile) []string {
	var args []string
	if profile.Client != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+profile.Client)
	}
	if len(profile.Skip) > 0 {
		args = append(args, "--extractor-args", "youtube:skip="+strings.Join(profile.Skip, ","))
	}
	if len(profile.PlayerSkip) > 0 {
		args = append(args, "--extractor-args", "youtube:player_skip="+strings.Join(profile.PlayerSkip, ","))
	}
	if profile.UserAgent != "" {
		args = append(args, "--user-agent", profile.UserAgent)
	}
	if profile.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(profile.Retries))
	}
	if profile.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(int(profile.SocketTimeout.Seconds())))
	}
	return args
}

// percentPattern matches "[download]  42.3% of ..." progress lines.
var percentPattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)

// Fetch downloads media into destDir, streaming progress events parsed from
// the engine's line output.
func (y *YTDLP) Fetch(ctx context.Context, url, selector, destDir string, onProgress func(ProgressEvent)) error {
	args := []string{
		"-f", selector,
		"-o", filepath.Join(destDir, "%(title)s.%(ext)s"),
		"--newline",
		"--no-warnings",
		"--no-playlist",
		url,
	}

	cmd := exec.CommandContext(ctx, y.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to engine output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start download engine: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "[download]") {
			continue
		}
		match := percentPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		percent, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if onProgress != nil {
			onProgress(ProgressEvent{Status: "downloading", Percent: percent})
		}
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		if onProgress != nil {
			onProgress(ProgressEvent{Status: "error"})
		}
		return fmt.Errorf("download failed: %s", detail)
	}

	if onProgress != nil {
		onProgress(ProgressEvent{Status: "finished", Percent: 100})
	}
	return nil
}
