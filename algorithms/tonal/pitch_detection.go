package tonal

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
)

// ErrInvalidConfig is wrapped by every DetectionConfig validation failure
var ErrInvalidConfig = errors.New("invalid detection config")

// Method identifies a pitch detection algorithm
type Method int

const (
	MethodAutocorrelation Method = iota
	MethodYin
)

func (m Method) String() string {
	switch m {
	case MethodAutocorrelation:
		return "autocorrelation"
	case MethodYin:
		return "yin"
	default:
		return "unknown"
	}
}

// ParseMethod maps a method name ("autocorrelation", "acf", "yin") to a Method
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "autocorrelation", "acf":
		return MethodAutocorrelation, nil
	case "yin":
		return MethodYin, nil
	default:
		return 0, fmt.Errorf("unsupported pitch detection method: %q", name)
	}
}

// Rejection says why an estimate carries no frequency
type Rejection int

const (
	RejectNone Rejection = iota
	RejectSilence
	RejectNoPeak
	RejectLowClarity
	RejectOutOfRange
)

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectSilence:
		return "silence"
	case RejectNoPeak:
		return "no_peak"
	case RejectLowClarity:
		return "low_clarity"
	case RejectOutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// SampleWindow is one snapshot of time-domain samples from the capture side.
// Detectors only read it.
type SampleWindow struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// PitchEstimate is the result of one detector over one window.
// Frequency and Note are only meaningful when Detected is true; Note is nil otherwise.
type PitchEstimate struct {
	Detected  bool      `json:"detected"`
	Frequency float64   `json:"frequency,omitempty"` // Hz, one decimal place
	Clarity   float64   `json:"clarity"`             // 0-1
	Note      *NoteInfo `json:"note,omitempty"`
	Method    Method    `json:"method"`
	RMS       float64   `json:"rms"`
	Rejection Rejection `json:"rejection"`
}

// DetectionConfig holds range and threshold settings shared by both detectors
type DetectionConfig struct {
	MinFrequency float64 `json:"min_frequency" mapstructure:"min_frequency"` // Hz
	MaxFrequency float64 `json:"max_frequency" mapstructure:"max_frequency"` // Hz
	RMSThreshold float64 `json:"rms_threshold" mapstructure:"rms_threshold"`

	// Autocorrelation: minimum normalized peak height
	ClarityThreshold float64 `json:"clarity_threshold" mapstructure:"clarity_threshold"`
	// YIN: absolute threshold on the cumulative mean normalized difference
	YinThreshold float64 `json:"yin_threshold" mapstructure:"yin_threshold"`

	// Compute the autocorrelation through an FFT instead of direct sums
	UseFFT bool `json:"use_fft" mapstructure:"use_fft"`
}

// DefaultDetectionConfig returns settings tuned for a concert flute
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		MinFrequency:     80.0,
		MaxFrequency:     2500.0,
		RMSThreshold:     temporal.DefaultRMSThreshold,
		ClarityThreshold: 0.5,
		YinThreshold:     0.15,
	}
}

// Validate checks 0 < min < max < sampleRate/2 and that thresholds lie in [0,1].
// A zero sampleRate skips the Nyquist check, for configs loaded before capture starts.
func (c DetectionConfig) Validate(sampleRate int) error {
	if sampleRate < 0 {
		return fmt.Errorf("%w: sample rate %d is negative", ErrInvalidConfig, sampleRate)
	}
	if !common.IsFinite(c.MinFrequency) || c.MinFrequency <= 0 {
		return fmt.Errorf("%w: min frequency %.2f must be positive", ErrInvalidConfig, c.MinFrequency)
	}
	if !common.IsFinite(c.MaxFrequency) || c.MaxFrequency <= c.MinFrequency {
		return fmt.Errorf("%w: max frequency %.2f must exceed min frequency %.2f",
			ErrInvalidConfig, c.MaxFrequency, c.MinFrequency)
	}
	if sampleRate > 0 && c.MaxFrequency >= float64(sampleRate)/2 {
		return fmt.Errorf("%w: max frequency %.2f is not below Nyquist (%d Hz sample rate)",
			ErrInvalidConfig, c.MaxFrequency, sampleRate)
	}

	thresholds := []struct {
		name  string
		value float64
	}{
		{"rms threshold", c.RMSThreshold},
		{"clarity threshold", c.ClarityThreshold},
		{"yin threshold", c.YinThreshold},
	}
	for _, th := range thresholds {
		if math.IsNaN(th.value) || th.value < 0 || th.value > 1 {
			return fmt.Errorf("%w: %s %.3f outside [0,1]", ErrInvalidConfig, th.name, th.value)
		}
	}
	return nil
}

// InRange reports whether f lies in [MinFrequency, MaxFrequency], bounds inclusive
func (c DetectionConfig) InRange(f float64) bool {
	return f >= c.MinFrequency && f <= c.MaxFrequency
}

// lagBounds returns minLag = floor(sr/max) and maxLag = floor(sr/min), both capped at n
func (c DetectionConfig) lagBounds(sampleRate, n int) (minLag, maxLag int) {
	return lagFor(sampleRate, c.MaxFrequency, n), lagFor(sampleRate, c.MinFrequency, n)
}

func lagFor(sampleRate int, freq float64, n int) int {
	if sampleRate <= 0 {
		return 0
	}
	if !common.IsFinite(freq) || freq <= 0 {
		return n
	}
	lag := math.Floor(float64(sampleRate) / freq)
	if lag >= float64(n) {
		return n
	}
	return int(lag)
}

// Detector estimates the pitch of one window. Implementations are pure:
// the same window and config always give the same estimate.
type Detector interface {
	Detect(window SampleWindow) PitchEstimate
	Method() Method
}

// NewDetector builds the detector for method
func NewDetector(method Method, config DetectionConfig) (Detector, error) {
	switch method {
	case MethodAutocorrelation:
		return NewAutocorrelationDetector(config), nil
	case MethodYin:
		return NewYinDetector(config), nil
	default:
		return nil, fmt.Errorf("unsupported pitch detection method: %d", method)
	}
}

func rejectedEstimate(method Method, rms, clarity float64, reason Rejection) PitchEstimate {
	return PitchEstimate{
		Clarity:   common.Clamp(clarity, 0, 1),
		Method:    method,
		RMS:       rms,
		Rejection: reason,
	}
}

func detectedEstimate(method Method, rms, frequency, clarity float64) PitchEstimate {
	est := PitchEstimate{
		Detected:  true,
		Frequency: common.RoundTo(frequency, 1),
		Clarity:   common.Clamp(clarity, 0, 1),
		Method:    method,
		RMS:       rms,
	}
	if note, ok := FrequencyToNote(est.Frequency); ok {
		est.Note = &note
	}
	return est
}
