package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"vidgrab/config"
)

// Transcoder is the opaque transcode capability: rewrap/re-encode a media
// file into a target container, returning the output path.
type Transcoder interface {
	Convert(ctx context.Context, inputPath, container string) (string, error)
}

// FFmpeg implements Transcoder with the ffmpeg binary.
type FFmpeg struct {
	Binary string
}

// NewFFmpeg returns a transcoder backed by ffmpeg on PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Binary: "ffmpeg"}
}

// Convert transcodes inputPath into the target container next to the input.
// The input file is left untouched so callers can fall back to it when the
// conversion fails.
func (f *FFmpeg) Convert(ctx context.Context, inputPath, container string) (string, error) {
	dot := strings.LastIndex(inputPath, ".")
	if dot < 0 {
		dot = len(inputPath)
	}
	outputPath := inputPath[:dot] + "." + container

	ctx, cancel := context.WithTimeout(ctx, config.TranscodeTimeout)
	defer cancel()

	args := append([]string{"-y", "-i", inputPath}, containerArgs(container)...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > 300 {
			detail = detail[len(detail)-300:]
		}
		return "", fmt.Errorf("conversion to %s failed: %s", container, detail)
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outputPath)
		return "", fmt.Errorf("conversion to %s produced no output", container)
	}

	return outputPath, nil
}

// containerArgs returns the codec arguments for a target container.
func containerArgs(container string) []string {
	if audioCodec, ok := config.AudioCodecMap[container]; ok {
		if _, video := config.VideoCodecMap[container]; !video {
			// Audio-only target: drop the video stream.
			return []string{"-vn", "-c:a", audioCodec}
		}
	}

	videoCodec := config.VideoCodecMap[container]
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	audioCodec := config.AudioCodecMap[container]
	if audioCodec == "" {
		audioCodec = "aac"
	}

	args := []string{"-c:v", videoCodec, "-c:a", audioCodec}
	if container == "3gp" {
		args = append(args, "-s", "320x240")
	}
	return args
}
