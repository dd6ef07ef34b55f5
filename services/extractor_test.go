package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	"vidgrab/config"
	"vidgrab/models"
)

type scriptedExtractor struct {
	results []func() (*models.RawInfo, error)
	calls   int
}

func (s *scriptedExtractor) ExtractRaw(ctx context.Context, url string, profile config.ClientProfile) (*models.RawInfo, error) {
	if s.calls >= len(s.results) {
		return nil, errors.New("no more scripted results")
	}
	result := s.results[s.calls]
	s.calls++
	return result()
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestOrchestrator(t *testing.T, meta MetadataExtractor) *Orchestrator {
	t.Helper()

	// No thumbnail probing over the network during tests.
	previous := config.ProbeClient
	config.ProbeClient = &http.Client{
		Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("network disabled in tests")
		}),
	}
	t.Cleanup(func() { config.ProbeClient = previous })

	o := NewOrchestrator(meta, config.DefaultStrategies(), config.DefaultClassifyRules())
	o.delay = func() time.Duration { return 0 }
	return o
}

const restrictedURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func succeed(title string) func() (*models.RawInfo, error) {
	return func() (*models.RawInfo, error) {
		return &models.RawInfo{Title: title}, nil
	}
}

func failWith(message string) func() (*models.RawInfo, error) {
	return func() (*models.RawInfo, error) {
		return nil, errors.New(message)
	}
}

func TestExtract_FirstSuccessWins(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		succeed("First Try"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), restrictedURL)
	if xerr != nil {
		t.Fatalf("Unexpected extraction error: %v", xerr)
	}
	if info.Title != "First Try" {
		t.Errorf("Expected title 'First Try', got '%s'", info.Title)
	}
	if meta.calls != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", meta.calls)
	}
}

func TestExtract_TransientErrorsFallThrough(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		failWith("Sign in to confirm you're not a bot"),
		failWith("failed to extract player response"),
		failWith("something completely new"), // unclassified: also transient
		succeed("Fourth Client"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), restrictedURL)
	if xerr != nil {
		t.Fatalf("Unexpected extraction error: %v", xerr)
	}
	if info.Title != "Fourth Client" {
		t.Errorf("Expected last strategy's result, got '%s'", info.Title)
	}
	if meta.calls != 4 {
		t.Errorf("Expected 4 attempts, got %d", meta.calls)
	}
	if info.Advisory != "" {
		t.Errorf("A real success must not carry an advisory, got %q", info.Advisory)
	}
}

func TestExtract_TerminalErrorShortCircuits(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		failWith("ERROR: Private video"),
		succeed("Never Reached"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), restrictedURL)
	if info != nil {
		t.Fatalf("Expected no VideoInfo for terminal error, got %+v", info)
	}
	if xerr == nil {
		t.Fatal("Expected an extraction error")
	}
	if xerr.Kind != models.KindPrivate {
		t.Errorf("Expected kind 'private', got '%s'", xerr.Kind)
	}
	if meta.calls != 1 {
		t.Errorf("Terminal error must stop the chain after 1 attempt, got %d", meta.calls)
	}
}

func TestExtract_AllFailReturnsFallbackWithAdvisory(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		failWith("bot check"),
		failWith("bot check"),
		failWith("bot check"),
		failWith("bot check"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), restrictedURL)
	if xerr != nil {
		t.Fatalf("Exhausted strategies must not surface an error, got %v", xerr)
	}
	if info == nil {
		t.Fatal("Expected a fallback VideoInfo")
	}
	if info.Advisory == "" {
		t.Error("Fallback info must carry an advisory")
	}
	if info.Title != "Video dQw4w9Wg" {
		t.Errorf("Expected title derived from video id, got '%s'", info.Title)
	}
	if info.Thumbnail == "" {
		t.Error("Expected a predictable thumbnail URL in the fallback")
	}
	if len(info.Formats) == 0 {
		t.Error("Fallback must offer generic format options")
	}
	for i := 1; i < len(info.Formats); i++ {
		if info.Formats[i].Height >= info.Formats[i-1].Height {
			t.Error("Fallback formats must be descending by height")
		}
	}
}

func TestExtract_EmptyTitleTreatedAsFailure(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		func() (*models.RawInfo, error) { return &models.RawInfo{}, nil }, // no title
		succeed("Recovered"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), restrictedURL)
	if xerr != nil {
		t.Fatalf("Unexpected extraction error: %v", xerr)
	}
	if info.Title != "Recovered" {
		t.Errorf("Expected next strategy to run after empty result, got '%s'", info.Title)
	}
}

func TestExtract_GenericPlatformUsesSingleStrategy(t *testing.T) {
	meta := &scriptedExtractor{results: []func() (*models.RawInfo, error){
		failWith("some transient failure"),
		succeed("Should Not Happen"),
	}}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), "https://vimeo.com/12345")
	if xerr != nil {
		t.Fatalf("Unexpected extraction error: %v", xerr)
	}
	if meta.calls != 1 {
		t.Errorf("Generic platform gets exactly one strategy, got %d attempts", meta.calls)
	}
	if info.Advisory == "" {
		t.Error("Exhausted generic strategy must return the advisory fallback")
	}
}

func TestExtract_UnsupportedDomainRejected(t *testing.T) {
	meta := &scriptedExtractor{}
	o := newTestOrchestrator(t, meta)

	info, xerr := o.Extract(context.Background(), "https://github.com/some/repo")
	if info != nil {
		t.Fatal("Unsupported domain must not yield a VideoInfo")
	}
	if xerr == nil || xerr.Kind != models.KindUnsupportedSite {
		t.Fatalf("Expected unsupported_site error, got %v", xerr)
	}
	if meta.calls != 0 {
		t.Errorf("No extraction attempt should run for unsupported domains, got %d", meta.calls)
	}
}
