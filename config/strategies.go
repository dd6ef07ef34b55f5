package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientProfile describes how an extraction attempt impersonates a viewing
// client: which player client to declare, the matching user agent, and the
// per-attempt limits passed to the extraction engine.
type ClientProfile struct {
	Client        string        `yaml:"client"`
	UserAgent     string        `yaml:"user_agent"`
	SocketTimeout time.Duration `yaml:"socket_timeout"`
	Retries       int           `yaml:"retries"`
	Skip          []string      `yaml:"skip"`
	PlayerSkip    []string      `yaml:"player_skip"`
}

// UnmarshalYAML accepts socket_timeout as a duration string ("15s").
func (p *ClientProfile) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Client        string   `yaml:"client"`
		UserAgent     string   `yaml:"user_agent"`
		SocketTimeout string   `yaml:"socket_timeout"`
		Retries       int      `yaml:"retries"`
		Skip          []string `yaml:"skip"`
		PlayerSkip    []string `yaml:"player_skip"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	p.Client = raw.Client
	p.UserAgent = raw.UserAgent
	p.Retries = raw.Retries
	p.Skip = raw.Skip
	p.PlayerSkip = raw.PlayerSkip

	if raw.SocketTimeout != "" {
		d, err := time.ParseDuration(raw.SocketTimeout)
		if err != nil {
			return fmt.Errorf("invalid socket_timeout %q: %w", raw.SocketTimeout, err)
		}
		p.SocketTimeout = d
	}
	return nil
}

// Strategy is one entry of the extraction strategy registry. Strategies are
// values, not code: adding or removing a bypass attempt is a data change.
type Strategy struct {
	Name    string        `yaml:"name"`
	Profile ClientProfile `yaml:"profile"`
}

// ClassifyRule maps a substring of an extraction error message to an error
// kind. Terminal rules stop the strategy chain; the rest fall through to the
// next strategy. The set is heuristic and platform-dependent, so it can be
// overridden from a YAML file without a rebuild.
type ClassifyRule struct {
	Match    string `yaml:"match"`
	Kind     string `yaml:"kind"`
	Terminal bool   `yaml:"terminal"`
}

// StrategyFile is the on-disk override format.
type StrategyFile struct {
	Strategies []Strategy     `yaml:"strategies"`
	Rules      []ClassifyRule `yaml:"rules"`
}

// DefaultStrategies returns the built-in registry for the restricted
// platform, in priority order. TV and mobile clients go first: they skip the
// JS player challenges that trip up the web client on hosted IPs.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "android-tv",
			Profile: ClientProfile{
				Client:        "android_tv",
				UserAgent:     "com.google.android.youtube/17.36.4 (Linux; U; Android 12; TV) gzip",
				SocketTimeout: 20 * time.Second,
				Retries:       1,
				Skip:          []string{"hls", "dash"},
				PlayerSkip:    []string{"js", "configs"},
			},
		},
		{
			Name: "ios",
			Profile: ClientProfile{
				Client:        "ios",
				UserAgent:     "com.google.ios.youtube/19.29.1 (iPhone16,2; U; CPU OS 17_5_1 like Mac OS X)",
				SocketTimeout: 15 * time.Second,
				Retries:       1,
				Skip:          []string{"hls"},
			},
		},
		{
			Name: "android-creator",
			Profile: ClientProfile{
				Client:        "android_creator",
				UserAgent:     "Mozilla/5.0 (Linux; Android 12; SM-G973F) AppleWebKit/537.36",
				SocketTimeout: 15 * time.Second,
				Retries:       1,
				Skip:          []string{"hls", "dash"},
			},
		},
		{
			Name: "web-minimal",
			Profile: ClientProfile{
				Client:        "web",
				UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				SocketTimeout: 10 * time.Second,
				Retries:       1,
				Skip:          []string{"hls", "dash"},
				PlayerSkip:    []string{"js", "configs"},
			},
		},
	}
}

// GenericStrategy is the single strategy used for platforms that do not need
// client impersonation.
func GenericStrategy() Strategy {
	return Strategy{
		Name: "generic",
		Profile: ClientProfile{
			SocketTimeout: 20 * time.Second,
			Retries:       2,
		},
	}
}

// DefaultClassifyRules returns the built-in error classification table.
// Terminal kinds are conditions invariant across client profiles.
func DefaultClassifyRules() []ClassifyRule {
	return []ClassifyRule{
		{Match: "private video", Kind: "private", Terminal: true},
		{Match: "video unavailable", Kind: "unavailable", Terminal: true},
		{Match: "has been removed", Kind: "unavailable", Terminal: true},
		{Match: "age-restricted", Kind: "age_restricted", Terminal: true},
		{Match: "age gate", Kind: "age_restricted", Terminal: true},
		{Match: "copyright", Kind: "copyright", Terminal: true},
		{Match: "not available in your country", Kind: "region_blocked", Terminal: true},
		{Match: "sign in to confirm", Kind: "bot_check", Terminal: false},
		{Match: "not a bot", Kind: "bot_check", Terminal: false},
		{Match: "sign in", Kind: "auth_required", Terminal: false},
		{Match: "login required", Kind: "auth_required", Terminal: false},
		{Match: "player response", Kind: "bad_player_response", Terminal: false},
	}
}

// LoadStrategyFile reads a YAML override. Missing sections fall back to the
// built-in defaults so a file may override only the rules or only the
// registry.
func LoadStrategyFile(path string) ([]Strategy, []ClassifyRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read strategy file: %w", err)
	}

	var file StrategyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse strategy file: %w", err)
	}

	strategies := file.Strategies
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	for i := range strategies {
		if strategies[i].Profile.SocketTimeout <= 0 {
			strategies[i].Profile.SocketTimeout = 15 * time.Second
		}
	}

	rules := file.Rules
	if len(rules) == 0 {
		rules = DefaultClassifyRules()
	}

	return strategies, rules, nil
}
