package config

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Auto-load .env file
	"golang.org/x/net/proxy"
)

const (
	// Server
	Port = 5000

	// Storage
	StorageDir = "./storage"

	// Extraction
	ExtractRatePerSecond = 2 // global pacing across all strategy attempts
	ExtractBurst         = 4
	MinStrategyDelay     = 1 * time.Second // randomized delay before retry strategies
	MaxStrategyDelay     = 3 * time.Second
	ProbeTimeout         = 5 * time.Second // thumbnail availability probe

	// Download
	JobTimeout       = 30 * time.Minute // hard ceiling per job
	TranscodeTimeout = 5 * time.Minute
	MaxWorkers       = 4   // concurrent download jobs
	DefaultMaxHeight = 720 // quality cap when no format requested

	// Job tracker
	SweepSchedule   = "@every 10m"
	TerminalJobAge  = 5 * time.Minute  // evict finished/error jobs after this
	InactiveJobAge  = 10 * time.Minute // evict any inactive job after this
	MaxJobDirAge    = 1 * time.Hour    // on-disk job directories
	RecentJobWindow = 10 * time.Second // polls for ids this fresh get a placeholder

	// Job ID: <unix-ms>-<suffix>
	JobIDSuffixLength = 8
	JobIDRegex        = `^\d{10,16}-[a-zA-Z0-9_-]{8}$`

	// Signed URL
	SignedURLExpiration = 1 * time.Hour
)

// SignedURLSecret signs file download links. Override in production.
var SignedURLSecret = getEnv("VIDGRAB_URL_SECRET", "dev-secret-change-me")

// StrategyFilePath optionally points at a YAML file overriding the built-in
// strategy registry and error classification rules.
var StrategyFilePath = os.Getenv("VIDGRAB_STRATEGY_FILE")

// ProxyAddr optionally routes probe traffic through a SOCKS5 proxy.
var ProxyAddr = os.Getenv("VIDGRAB_PROXY_ADDR")

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TranscodeContainers are the video containers the transcode step accepts.
var TranscodeContainers = []string{"mkv", "webm", "avi", "3gp", "flv"}

// AudioContainers are the audio-only target containers.
var AudioContainers = []string{"mp3", "m4a", "wav", "opus", "flac"}

// VideoCodecMap maps a target container to its ffmpeg video codec.
var VideoCodecMap = map[string]string{
	"mkv":  "libx264",
	"webm": "libvpx-vp9",
	"avi":  "libx264",
	"3gp":  "libx264",
	"flv":  "libx264",
	"mp4":  "libx264",
}

// AudioCodecMap maps a target container to its ffmpeg audio codec.
var AudioCodecMap = map[string]string{
	"mkv":  "aac",
	"webm": "libopus",
	"avi":  "libmp3lame",
	"3gp":  "aac",
	"flv":  "aac",
	"mp4":  "aac",
	"mp3":  "libmp3lame",
	"m4a":  "aac",
	"wav":  "pcm_s16le",
	"opus": "libopus",
	"flac": "flac",
}

// SidecarExtensions are metadata artifacts written next to the media file.
// They must never be selected as a result or served to a client.
var SidecarExtensions = []string{
	".json", ".info", ".description", ".annotations",
	".srt", ".vtt", ".part", ".tmp", ".ytdl",
}

// MediaExtensions is the allow-list enforced when serving a result file.
var MediaExtensions = []string{
	".mp4", ".webm", ".mkv", ".avi", ".3gp", ".flv", ".mov",
	".mp3", ".m4a", ".wav", ".opus", ".flac", ".ogg",
}

// AuxiliaryFormats are raw format containers that are not playable video
// (storyboards, thumbnails, subtitle tracks).
var AuxiliaryFormats = []string{"mhtml", "webp", "jpg", "jpeg", "png", "json", "srt", "vtt"}

// UnsupportedDomains are hosts that never carry downloadable video; requests
// for them are rejected up front with a helpful message.
var UnsupportedDomains = []string{
	"replit.com", "github.com", "gitlab.com", "bitbucket.org",
	"codepen.io", "jsfiddle.net", "stackoverflow.com",
	"microsoft.com", "apple.com", "amazon.com", "netflix.com",
}

// ProbeClient is used for lightweight availability probes (e.g. checking
// which thumbnail variant exists for the fallback response).
var ProbeClient *http.Client

func init() {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if ProxyAddr != "" {
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer, err := proxy.SOCKS5("tcp", ProxyAddr, nil, proxy.Direct)
			if err != nil {
				return nil, err
			}
			return dialer.Dial(network, addr)
		}
	}

	ProbeClient = &http.Client{
		Transport: transport,
		Timeout:   ProbeTimeout,
	}
}
