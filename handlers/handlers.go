package handlers

import (
	"vidgrab/services"
)

// Handler bundles the service handles the web layer needs. The tracker and
// orchestrators are injected rather than ambient so the same instances are
// shared with the async job runners.
type Handler struct {
	Extractor  *services.Orchestrator
	Downloader *services.Downloader
	Tracker    *services.Tracker
}

// New returns a Handler wired against the given services.
func New(extractor *services.Orchestrator, downloader *services.Downloader, tracker *services.Tracker) *Handler {
	return &Handler{
		Extractor:  extractor,
		Downloader: downloader,
		Tracker:    tracker,
	}
}
