package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
	"vidgrab/config"
	"vidgrab/models"
	"vidgrab/utils"

	"golang.org/x/time/rate"
)

// MetadataExtractor is the opaque extraction capability: fetch raw metadata
// for a URL while impersonating the given client profile.
type MetadataExtractor interface {
	ExtractRaw(ctx context.Context, url string, profile config.ClientProfile) (*models.RawInfo, error)
}

// Orchestrator runs the strategy registry against a target URL: strategies
// in priority order, first success wins, terminal errors short-circuit,
// everything else falls through to the next profile. When the whole registry
// is exhausted it synthesizes a guaranteed fallback so the caller always has
// something to render.
type Orchestrator struct {
	meta       MetadataExtractor
	strategies []config.Strategy
	classifier *Classifier
	limiter    *rate.Limiter

	// delay is the randomized pause before attempts after the first;
	// injectable so tests do not sleep.
	delay func() time.Duration
}

// NewOrchestrator wires an orchestrator with the given registry and rules.
func NewOrchestrator(meta MetadataExtractor, strategies []config.Strategy, rules []config.ClassifyRule) *Orchestrator {
	return &Orchestrator{
		meta:       meta,
		strategies: strategies,
		classifier: NewClassifier(rules),
		limiter:    rate.NewLimiter(rate.Limit(config.ExtractRatePerSecond), config.ExtractBurst),
		delay: func() time.Duration {
			spread := config.MaxStrategyDelay - config.MinStrategyDelay
			return config.MinStrategyDelay + time.Duration(rand.Int63n(int64(spread)))
		},
	}
}

// Extract resolves a URL to a VideoInfo. A non-nil ExtractionError is always
// terminal and user-facing; transient failures never escape this method.
func (o *Orchestrator) Extract(ctx context.Context, url string) (*models.VideoInfo, *models.ExtractionError) {
	switch utils.ClassifyPlatform(url) {
	case utils.PlatformUnsupported:
		return nil, &models.ExtractionError{
			Kind:     models.KindUnsupportedSite,
			Message:  "This URL is not supported for video downloading. Use a video URL from a supported platform.",
			Terminal: true,
		}
	case utils.PlatformGeneric:
		return o.run(ctx, url, []config.Strategy{config.GenericStrategy()})
	default:
		return o.run(ctx, url, o.strategies)
	}
}

func (o *Orchestrator) run(ctx context.Context, url string, strategies []config.Strategy) (*models.VideoInfo, *models.ExtractionError) {
	for i, strategy := range strategies {
		if i > 0 {
			// Spread retries so rapid strategy hops do not look like
			// a burst to the platform's rate limiting.
			select {
			case <-time.After(o.delay()):
			case <-ctx.Done():
				return o.fallback(url), nil
			}
		}
		if err := o.limiter.Wait(ctx); err != nil {
			return o.fallback(url), nil
		}

		attemptCtx, cancel := context.WithTimeout(ctx, strategy.Profile.SocketTimeout)
		raw, err := o.meta.ExtractRaw(attemptCtx, url, strategy.Profile)
		cancel()

		if err == nil && raw != nil && raw.Title != "" {
			log.Printf("[Extract] %s succeeded for %s\n", strategy.Name, url)
			return Normalize(raw, url), nil
		}

		if err == nil {
			// Empty result without an error: treat like a malformed
			// player response and move on.
			err = fmt.Errorf("empty metadata from %s", strategy.Name)
		}

		classified := o.classifier.Classify(err)
		log.Printf("[Extract] %s failed (%s): %v\n", strategy.Name, classified.Kind, err)

		if classified.Terminal {
			return nil, classified
		}
	}

	return o.fallback(url), nil
}

// fallback synthesizes a minimal VideoInfo from the URL alone. It carries an
// advisory instead of failing: the UI always has something to render, and
// a download attempt may still succeed even when metadata extraction did not.
func (o *Orchestrator) fallback(url string) *models.VideoInfo {
	info := &models.VideoInfo{
		Title:     "Video",
		Uploader:  "Unknown",
		Duration:  "0:00",
		Formats:   fallbackFormats(),
		SourceURL: url,
		Advisory:  "Live metadata extraction failed; showing generic quality options. The download itself may still succeed.",
	}

	if videoID := utils.ExtractVideoID(url); videoID != "" {
		short := videoID
		if len(short) > 8 {
			short = short[:8]
		}
		info.Title = fmt.Sprintf("Video %s", short)
		info.Thumbnail = probeThumbnail(videoID)
	}

	return info
}

// probeThumbnail returns the platform's predictable thumbnail URL, preferring
// the high-res variant when it actually exists.
func probeThumbnail(videoID string) string {
	maxres := fmt.Sprintf("https://i.ytimg.com/vi/%s/maxresdefault.jpg", videoID)
	resp, err := config.ProbeClient.Head(maxres)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return maxres
		}
	}
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
}

// fallbackFormats are declarative selectors known to resolve on virtually
// every video, used when no real format list is available.
func fallbackFormats() []models.FormatOption {
	return []models.FormatOption{
		{
			Selector:   "best[height<=720]",
			Height:     720,
			Width:      1280,
			Container:  "mp4",
			VideoCodec: "avc1",
			AudioCodec: "mp4a",
			Quality:    "720p",
		},
		{
			Selector:   "best[height<=360]",
			Height:     360,
			Width:      640,
			Container:  "mp4",
			VideoCodec: "avc1",
			AudioCodec: "mp4a",
			Quality:    "360p",
		},
	}
}
