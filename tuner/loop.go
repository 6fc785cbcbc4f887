package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ErrLoopNotIdle is returned by Start on a loop that was already started or stopped
var ErrLoopNotIdle = errors.New("detection loop is not idle")

// DetectionLoop runs the configured detectors once per tick over the latest
// window from a WindowSource and publishes each estimate to a Sink.
//
// Ticks never overlap. The state is checked immediately before every publish,
// so once Stop has moved the loop to StateCancelled no further estimate
// reaches the sink.
type DetectionLoop struct {
	source    WindowSource
	sink      Sink
	detectors []tonal.Detector
	ticker    Ticker
	logger    logging.Logger
	metrics   *Metrics

	state atomic.Int32

	tickMu      sync.Mutex // serializes Tick
	lifecycleMu sync.Mutex // serializes Start/Stop
	cancel      context.CancelFunc
	done        chan struct{}
	doneOnce    sync.Once

	errMu sync.Mutex
	err   error
}

// Option configures a DetectionLoop
type Option func(*DetectionLoop)

// WithDetectors sets the detectors run on every window, in publish order
func WithDetectors(detectors ...tonal.Detector) Option {
	return func(l *DetectionLoop) {
		l.detectors = detectors
	}
}

func WithTicker(ticker Ticker) Option {
	return func(l *DetectionLoop) {
		l.ticker = ticker
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(l *DetectionLoop) {
		l.logger = logger
	}
}

// WithMetrics enables Prometheus metrics. Nil disables them.
func WithMetrics(metrics *Metrics) Option {
	return func(l *DetectionLoop) {
		l.metrics = metrics
	}
}

// NewDetectionLoop creates an idle loop. Without options it runs YIN with the
// default detection config at DefaultFrameRate.
func NewDetectionLoop(source WindowSource, sink Sink, opts ...Option) (*DetectionLoop, error) {
	if source == nil {
		return nil, errors.New("window source is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}

	l := &DetectionLoop{
		source: source,
		sink:   sink,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	if len(l.detectors) == 0 {
		l.detectors = []tonal.Detector{tonal.NewYinDetector(tonal.DefaultDetectionConfig())}
	}
	for i, d := range l.detectors {
		if d == nil {
			return nil, fmt.Errorf("detector %d is nil", i)
		}
	}
	if l.ticker == nil {
		l.ticker = NewFrameTicker(DefaultFrameRate)
	}
	if l.logger == nil {
		l.logger = logging.GetGlobalLogger().WithFields(logging.Fields{"component": "tuner"})
	}

	return l, nil
}

// NewDetectors builds the detectors for a selection name: "autocorrelation"
// (or "acf"), "yin", or "both" (autocorrelation first, then YIN).
func NewDetectors(selection string, config tonal.DetectionConfig) ([]tonal.Detector, error) {
	if strings.EqualFold(strings.TrimSpace(selection), "both") {
		return []tonal.Detector{
			tonal.NewAutocorrelationDetector(config),
			tonal.NewYinDetector(config),
		}, nil
	}

	method, err := tonal.ParseMethod(selection)
	if err != nil {
		return nil, err
	}
	d, err := tonal.NewDetector(method, config)
	if err != nil {
		return nil, err
	}
	return []tonal.Detector{d}, nil
}

func (l *DetectionLoop) State() State {
	return State(l.state.Load())
}

// Done is closed once the loop goroutine has exited, or when an idle loop is stopped
func (l *DetectionLoop) Done() <-chan struct{} {
	return l.done
}

// Err returns the source error that ended the loop, nil on a clean end
func (l *DetectionLoop) Err() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	return l.err
}

// Start moves the loop from Idle to Active and begins ticking on a new goroutine.
// The loop runs until Stop, until ctx is done, or until the source ends.
func (l *DetectionLoop) Start(ctx context.Context) error {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	if !l.state.CompareAndSwap(int32(StateIdle), int32(StateActive)) {
		return fmt.Errorf("%w: state is %s", ErrLoopNotIdle, l.State())
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.recordState(StateActive)
	l.logger.Info("detection loop started", logging.Fields{
		"detectors": l.methodNames(),
	})

	go l.run(ctx)
	return nil
}

// Stop cancels the loop and waits for its goroutine to exit. Stop is
// idempotent and safe on a loop that was never started.
func (l *DetectionLoop) Stop() {
	l.lifecycleMu.Lock()
	defer l.lifecycleMu.Unlock()

	prev := State(l.state.Swap(int32(StateCancelled)))
	if l.cancel == nil {
		// never started
		l.ticker.Stop()
		l.closeDone()
	} else {
		l.cancel()
		<-l.done
	}

	if prev != StateCancelled {
		l.recordState(StateCancelled)
		l.logger.Info("detection loop stopped", logging.Fields{"previous_state": prev.String()})
	}
}

// Tick runs one detection cycle: pull a window, run every detector, publish.
// It is safe to call directly, including concurrently with a running loop;
// cycles are serialized. A cancelled loop publishes nothing.
func (l *DetectionLoop) Tick(ctx context.Context) error {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()

	if l.State() == StateCancelled {
		return nil
	}

	window, err := l.source.NextWindow(ctx)
	if err != nil {
		return err
	}

	for _, d := range l.detectors {
		start := time.Now()
		est := d.Detect(window)
		if l.metrics != nil {
			l.metrics.RecordEstimate(est, time.Since(start))
		}

		if l.State() == StateCancelled {
			l.logger.Debug("dropping estimate after stop", logging.Fields{"method": est.Method.String()})
			return nil
		}
		l.sink.Publish(est)

		l.logger.Debug("published estimate", logging.Fields{
			"method":    est.Method.String(),
			"detected":  est.Detected,
			"frequency": est.Frequency,
			"clarity":   est.Clarity,
			"rejection": est.Rejection.String(),
		})
	}
	return nil
}

func (l *DetectionLoop) run(ctx context.Context) {
	defer l.closeDone()
	defer l.ticker.Stop()
	defer func() {
		if l.state.CompareAndSwap(int32(StateActive), int32(StateCancelled)) {
			l.recordState(StateCancelled)
		}
	}()

	for {
		if err := l.ticker.Wait(ctx); err != nil {
			return
		}

		err := l.Tick(ctx)
		if err == nil {
			continue
		}

		switch {
		case ctx.Err() != nil:
			// stopped while the source was blocked
		case errors.Is(err, io.EOF):
			l.logger.Info("window source exhausted")
		default:
			l.setErr(err)
			if l.metrics != nil {
				l.metrics.RecordSourceError()
			}
			l.logger.Error(err, "window source failed")
		}
		return
	}
}

func (l *DetectionLoop) setErr(err error) {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	l.err = err
}

func (l *DetectionLoop) closeDone() {
	l.doneOnce.Do(func() { close(l.done) })
}

func (l *DetectionLoop) recordState(state State) {
	if l.metrics != nil {
		l.metrics.RecordState(state)
	}
}

func (l *DetectionLoop) methodNames() string {
	names := make([]string, len(l.detectors))
	for i, d := range l.detectors {
		names[i] = d.Method().String()
	}
	return strings.Join(names, ",")
}
