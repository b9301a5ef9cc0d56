package util

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort          = 5555
	DefaultCapacity      = 32
	DefaultReadChunk     = 1024
	DefaultPrompt        = "> "
	DefaultPoolGrow      = 256
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultSupportScript = "scripts/write.scm"
	DefaultMainScript    = "scripts/main.scm"
	DefaultFrameEntry    = "frame-entry"
)

// Configuration is the resolved settings of one console process. Build
// metadata is filled in by main; everything else may come from a TOML
// file and then from flags.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Port          int           `toml:"port"`
	Capacity      int           `toml:"capacity"`
	ReadChunk     int           `toml:"read_chunk"`
	Prompt        string        `toml:"prompt"`
	PoolGrow      int           `toml:"pool_grow"`
	FrameInterval time.Duration `toml:"frame_interval"`
	SupportScript string        `toml:"support_script"`
	MainScript    string        `toml:"main_script"`
	FrameEntry    string        `toml:"frame_entry"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Port:          DefaultPort,
		Capacity:      DefaultCapacity,
		ReadChunk:     DefaultReadChunk,
		Prompt:        DefaultPrompt,
		PoolGrow:      DefaultPoolGrow,
		FrameInterval: DefaultFrameInterval,
		SupportScript: DefaultSupportScript,
		MainScript:    DefaultMainScript,
		FrameEntry:    DefaultFrameEntry,
	}
}

// LoadFile overlays the settings present in the TOML file at path onto
// cfg. Keys the file does not set keep their current value. Unknown keys
// are logged and ignored.
func (cfg *Configuration) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("ignoring unknown config keys",
			slog.String("path", path),
			slog.String("keys", strings.Join(keys, ", ")))
	}
	return nil
}

// Validate rejects settings the console cannot run with.
func (cfg *Configuration) Validate() error {
	switch {
	case cfg.Port < 0 || cfg.Port > 65535:
		return fmt.Errorf("config: port %d out of range", cfg.Port)
	case cfg.Capacity < 1:
		return fmt.Errorf("config: capacity must be at least 1, got %d", cfg.Capacity)
	case cfg.ReadChunk < 1:
		return fmt.Errorf("config: read_chunk must be at least 1, got %d", cfg.ReadChunk)
	case cfg.PoolGrow < 1:
		return fmt.Errorf("config: pool_grow must be at least 1, got %d", cfg.PoolGrow)
	case cfg.FrameInterval < 0:
		return fmt.Errorf("config: frame_interval must not be negative, got %s", cfg.FrameInterval)
	case cfg.FrameEntry == "":
		return fmt.Errorf("config: frame_entry must not be empty")
	}
	return nil
}
