package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/muurk/videohub/internal/hub"
)

// DefaultPort is the Videohub control port
const DefaultPort = hub.DefaultPort

// EnvPrefix prefixes every environment variable read by LoadSettings
const EnvPrefix = "VIDEOHUB"

// Settings are the effective values for one invocation
type Settings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Hub             string        `mapstructure:"hub"` // registry entry the target came from
	PresetDir       string        `mapstructure:"preset_dir"`
	Strict          bool          `mapstructure:"strict"`
	LogLevel        string        `mapstructure:"log_level"`
	InitialTimeout  time.Duration `mapstructure:"initial_timeout"`
	FollowupTimeout time.Duration `mapstructure:"followup_timeout"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	AckTimeout      time.Duration `mapstructure:"ack_timeout"`
}

// settingFlags maps setting keys to the command-line flags that set them
var settingFlags = map[string]string{
	"host":             "host",
	"port":             "port",
	"hub":              "hub",
	"preset_dir":       "preset-dir",
	"strict":           "strict",
	"log_level":        "log-level",
	"initial_timeout":  "initial-timeout",
	"followup_timeout": "followup-timeout",
	"fetch_timeout":    "fetch-timeout",
	"ack_timeout":      "ack-timeout",
}

// LoadSettings resolves settings with precedence flags > environment >
// registry > built-in defaults. flags and reg may be nil.
//
// When no host is given, the hub named by --hub (or the registry default)
// supplies host and port.
func LoadSettings(flags *pflag.FlagSet, reg *Registry) (*Settings, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	prefs := reg.Preferences
	if prefs == nil {
		prefs = &Preferences{}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("hub", prefs.DefaultHub)
	v.SetDefault("preset_dir", orString(prefs.PresetDir, "presets"))
	v.SetDefault("strict", prefs.StrictParsing)
	v.SetDefault("log_level", "")
	v.SetDefault("initial_timeout", orDuration(prefs.InitialTimeout, hub.DefaultInitialTimeout))
	v.SetDefault("followup_timeout", orDuration(prefs.FollowupTimeout, hub.DefaultFollowupTimeout))
	v.SetDefault("fetch_timeout", orDuration(prefs.FetchTimeout, hub.DefaultFetchInitialTimeout))
	v.SetDefault("ack_timeout", orDuration(prefs.AckTimeout, hub.DefaultAckTimeout))

	if flags != nil {
		for key, name := range settingFlags {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// A named hub supplies the target unless a host is given directly
	fromRegistry := false
	if name := v.GetString("hub"); name != "" && v.GetString("host") == "" {
		h := reg.GetHub(name)
		if h == nil {
			return nil, fmt.Errorf("unknown hub %q (see 'videohub-cfg hubs list')", name)
		}
		v.SetDefault("host", h.Host)
		v.SetDefault("port", h.EffectivePort())
		fromRegistry = true
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if !fromRegistry {
		s.Hub = reg.FindHub(s.Host, s.Port)
	}
	return &s, nil
}

// HasTarget reports whether a hub address is configured
func (s *Settings) HasTarget() bool {
	return s.Host != ""
}

// Client builds a protocol client from the settings
func (s *Settings) Client() *hub.Client {
	c := hub.NewClient(s.Host, s.Port)
	c.InitialTimeout = s.InitialTimeout
	c.FollowupTimeout = s.FollowupTimeout
	c.FetchInitialTimeout = s.FetchTimeout
	c.AckTimeout = s.AckTimeout
	if s.Strict {
		c.Policy = hub.Strict
	}
	return c
}

// Policy returns the record parsing policy
func (s *Settings) Policy() hub.ParsePolicy {
	if s.Strict {
		return hub.Strict
	}
	return hub.Lenient
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
