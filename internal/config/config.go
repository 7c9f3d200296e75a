// Package config loads voicetake settings from an optional config file,
// applying defaults for everything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/voicetake/voicetake/internal/processor"
)

// Config is the resolved application configuration.
type Config struct {
	Audio   AudioConfig   `mapstructure:"audio"`
	Output  OutputConfig  `mapstructure:"output"`
	Enhance EnhanceConfig `mapstructure:"enhance"`
}

// AudioConfig describes the capture format.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`
}

// OutputConfig describes where and how exports are written.
type OutputConfig struct {
	Directory   string `mapstructure:"directory"`
	Format      string `mapstructure:"format"` // wav, mp3 or raw
	BitrateKbps int    `mapstructure:"bitrate_kbps"`
	Report      bool   `mapstructure:"report"`
}

// EnhanceConfig controls the enhancement chain.
type EnhanceConfig struct {
	Auto        bool   `mapstructure:"auto"`
	VolumeLevel string `mapstructure:"volume_level"` // low, standard or high
	HumNotch    bool   `mapstructure:"hum_notch"`
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults, not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("output.directory", defaultOutputDir())
	v.SetDefault("output.format", "wav")
	v.SetDefault("output.bitrate_kbps", 128)
	v.SetDefault("output.report", false)
	v.SetDefault("enhance.auto", true)
	v.SetDefault("enhance.volume_level", string(processor.VolumeStandard))
	v.SetDefault("enhance.hum_notch", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("voicetake")
		v.SetConfigType("toml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "voicetake"))
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("config: sample_rate %d out of range [8000, 192000]", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("config: channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	switch c.Output.Format {
	case "wav", "mp3", "raw":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}
	switch processor.VolumeLevel(c.Enhance.VolumeLevel) {
	case processor.VolumeLow, processor.VolumeStandard, processor.VolumeHigh:
	default:
		return fmt.Errorf("config: unknown volume_level %q", c.Enhance.VolumeLevel)
	}
	return nil
}

// Volume returns the configured volume level as its typed form.
func (c *Config) Volume() processor.VolumeLevel {
	return processor.VolumeLevel(c.Enhance.VolumeLevel)
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Recordings")
}
