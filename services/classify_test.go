package services

import (
	"errors"
	"testing"
	"vidgrab/config"
	"vidgrab/models"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(config.DefaultClassifyRules())

	tests := []struct {
		message  string
		kind     models.ExtractKind
		terminal bool
	}{
		{"ERROR: Private video. Sign in if you've been granted access", models.KindPrivate, true},
		{"ERROR: Video unavailable", models.KindUnavailable, true},
		{"This video is age-restricted", models.KindAgeRestricted, true},
		{"blocked on copyright grounds", models.KindCopyright, true},
		{"The uploader has not made this video available in your country", models.KindRegionBlocked, true},
		{"Sign in to confirm you're not a bot", models.KindBotCheck, false},
		{"Failed to extract any player response", models.KindBadPlayerResponse, false},
		{"connection reset by peer", models.KindUnknown, false},
	}

	for _, test := range tests {
		result := classifier.Classify(errors.New(test.message))
		if result.Kind != test.kind {
			t.Errorf("Classify(%q) kind = %s, expected %s", test.message, result.Kind, test.kind)
		}
		if result.Terminal != test.terminal {
			t.Errorf("Classify(%q) terminal = %v, expected %v", test.message, result.Terminal, test.terminal)
		}
	}
}

func TestClassifier_TerminalMessagesAreUserFacing(t *testing.T) {
	classifier := NewClassifier(config.DefaultClassifyRules())

	result := classifier.Classify(errors.New("ERROR: [youtube] x: Private video"))
	if result.Message != "This video is private and cannot be downloaded." {
		t.Errorf("Expected friendly message for private video, got %q", result.Message)
	}

	// Transient errors keep the raw message for logging.
	transient := classifier.Classify(errors.New("failed to extract player response"))
	if transient.Message != "failed to extract player response" {
		t.Errorf("Expected raw message preserved for transient error, got %q", transient.Message)
	}
}
