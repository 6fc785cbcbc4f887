package config

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// EnvPrefix prefixes environment overrides, e.g. FLUTETUNER_DETECTION_MIN_FREQUENCY
const EnvPrefix = "FLUTETUNER"

// ErrInvalidSettings is wrapped by loop and logging validation failures.
// Detection failures wrap tonal.ErrInvalidConfig instead.
var ErrInvalidSettings = errors.New("invalid settings")

// LoopSettings configures the detection loop and the window source feeding it
type LoopSettings struct {
	Method     string  `json:"method" mapstructure:"method"`         // "autocorrelation", "yin" or "both"
	FrameRate  float64 `json:"frame_rate" mapstructure:"frame_rate"` // ticks per second in real-time mode
	WindowSize int     `json:"window_size" mapstructure:"window_size"`
	HopSize    int     `json:"hop_size" mapstructure:"hop_size"`
}

// InputSettings configures preprocessing of decoded audio
type InputSettings struct {
	RemoveDC bool    `json:"remove_dc" mapstructure:"remove_dc"`
	DCCutoff float64 `json:"dc_cutoff" mapstructure:"dc_cutoff"` // Hz
}

// Settings is the full flutetuner configuration
type Settings struct {
	Detection tonal.DetectionConfig `json:"detection" mapstructure:"detection"`
	Loop      LoopSettings          `json:"loop" mapstructure:"loop"`
	Input     InputSettings         `json:"input" mapstructure:"input"`
	LogLevel  string                `json:"log_level" mapstructure:"log_level"`
}

// Defaults returns the settings used when nothing is configured
func Defaults() Settings {
	return Settings{
		Detection: tonal.DefaultDetectionConfig(),
		Loop: LoopSettings{
			Method:     tonal.MethodYin.String(),
			FrameRate:  60,
			WindowSize: 2048,
			HopSize:    1024,
		},
		Input: InputSettings{
			DCCutoff: filters.DefaultDCCutoff,
		},
		LogLevel: "info",
	}
}

// Validate checks the detection config (without a sample rate, which is only
// known once audio is opened), the loop settings and the log level
func (s Settings) Validate() error {
	if err := s.Detection.Validate(0); err != nil {
		return fmt.Errorf("detection: %w", err)
	}

	if !strings.EqualFold(strings.TrimSpace(s.Loop.Method), "both") {
		if _, err := tonal.ParseMethod(s.Loop.Method); err != nil {
			return fmt.Errorf("%w: loop: %v", ErrInvalidSettings, err)
		}
	}
	if s.Loop.FrameRate <= 0 {
		return fmt.Errorf("%w: loop: frame rate %.2f must be positive", ErrInvalidSettings, s.Loop.FrameRate)
	}
	if s.Loop.WindowSize < 2 || bits.OnesCount(uint(s.Loop.WindowSize)) != 1 {
		return fmt.Errorf("%w: loop: window size %d must be a power of two", ErrInvalidSettings, s.Loop.WindowSize)
	}
	if s.Loop.HopSize <= 0 {
		return fmt.Errorf("%w: loop: hop size %d must be positive", ErrInvalidSettings, s.Loop.HopSize)
	}

	// the blocker must not eat into the detection band
	if s.Input.DCCutoff <= 0 || s.Input.DCCutoff >= s.Detection.MinFrequency {
		return fmt.Errorf("%w: input: dc cutoff %.2f Hz must lie in (0, %.2f)",
			ErrInvalidSettings, s.Input.DCCutoff, s.Detection.MinFrequency)
	}

	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Load builds Settings from defaults, the optional config file at path
// (YAML, JSON or TOML by extension) and FLUTETUNER_* environment variables,
// in increasing order of precedence. The result is validated.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}
	return settings, nil
}

// setDefaults registers every key so environment overrides resolve
func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("detection.min_frequency", d.Detection.MinFrequency)
	v.SetDefault("detection.max_frequency", d.Detection.MaxFrequency)
	v.SetDefault("detection.rms_threshold", d.Detection.RMSThreshold)
	v.SetDefault("detection.clarity_threshold", d.Detection.ClarityThreshold)
	v.SetDefault("detection.yin_threshold", d.Detection.YinThreshold)
	v.SetDefault("detection.use_fft", d.Detection.UseFFT)

	v.SetDefault("loop.method", d.Loop.Method)
	v.SetDefault("loop.frame_rate", d.Loop.FrameRate)
	v.SetDefault("loop.window_size", d.Loop.WindowSize)
	v.SetDefault("loop.hop_size", d.Loop.HopSize)

	v.SetDefault("input.remove_dc", d.Input.RemoveDC)
	v.SetDefault("input.dc_cutoff", d.Input.DCCutoff)

	v.SetDefault("log_level", d.LogLevel)
}
