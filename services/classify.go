package services

import (
	"strings"
	"vidgrab/config"
	"vidgrab/models"
)

// userMessages are the user-facing messages for terminal kinds. The raw
// engine error is platform jargon; these are actionable.
var userMessages = map[models.ExtractKind]string{
	models.KindPrivate:       "This video is private and cannot be downloaded.",
	models.KindUnavailable:   "This video is not available. It may have been deleted or restricted.",
	models.KindAgeRestricted: "This video is age-restricted and cannot be accessed.",
	models.KindCopyright:     "This video is blocked for copyright reasons.",
	models.KindRegionBlocked: "This video is not available in this region.",
}

// Classifier maps raw extraction errors onto the transient/terminal
// taxonomy using an ordered substring-rule table.
type Classifier struct {
	rules []config.ClassifyRule
}

// NewClassifier builds a classifier from a rule table.
func NewClassifier(rules []config.ClassifyRule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify turns an engine error into a classified ExtractionError. Errors
// matching no rule are treated as potentially transient.
func (c *Classifier) Classify(err error) *models.ExtractionError {
	msg := strings.ToLower(err.Error())

	for _, rule := range c.rules {
		if !strings.Contains(msg, strings.ToLower(rule.Match)) {
			continue
		}
		kind := models.ExtractKind(rule.Kind)
		out := &models.ExtractionError{
			Kind:     kind,
			Message:  err.Error(),
			Terminal: rule.Terminal,
		}
		if friendly, ok := userMessages[kind]; ok && rule.Terminal {
			out.Message = friendly
		}
		return out
	}

	return &models.ExtractionError{
		Kind:    models.KindUnknown,
		Message: err.Error(),
	}
}
