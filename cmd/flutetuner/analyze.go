package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

type analyzeFlags struct {
	method      string
	window      int
	hop         int
	realtime    bool
	removeDC    bool
	metricsAddr string
}

func analyzeCommand(opts *options) *cobra.Command {
	flags := &analyzeFlags{}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "analyze [input.wav]",
		Short: "Detect the pitch of a WAV recording window by window",
		Long: `Decode a WAV file and run the detection loop over it, printing one line
per estimate. With --realtime the file is played against the clock and sampled
at the configured frame rate, as a live tuner would.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := *opts.settings
			if cmd.Flags().Changed("method") {
				settings.Loop.Method = flags.method
			}
			if cmd.Flags().Changed("window") {
				settings.Loop.WindowSize = flags.window
			}
			if cmd.Flags().Changed("hop") {
				settings.Loop.HopSize = flags.hop
			}
			if cmd.Flags().Changed("remove-dc") {
				settings.Input.RemoveDC = flags.removeDC
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], settings, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.method, "method", "m", defaults.Loop.Method, "Detection method: autocorrelation, yin, both")
	cmd.Flags().IntVarP(&flags.window, "window", "w", defaults.Loop.WindowSize, "Window size in samples (power of two)")
	cmd.Flags().IntVar(&flags.hop, "hop", defaults.Loop.HopSize, "Samples between window starts in offline mode")
	cmd.Flags().BoolVar(&flags.removeDC, "remove-dc", defaults.Input.RemoveDC, "Run the audio through a DC blocker before detection")
	cmd.Flags().BoolVar(&flags.realtime, "realtime", false, "Play the file in real time and tick at the frame rate")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	return cmd
}

// offsetSource is a window source that knows where its last window started
type offsetSource interface {
	tuner.WindowSource
	Offset() time.Duration
}

func runAnalyze(ctx context.Context, out io.Writer, path string, settings config.Settings, flags *analyzeFlags) error {
	logger := logging.WithFields(logging.Fields{
		"component": "cli",
		"file":      path,
	})

	data, err := transcode.DecodeFile(path)
	if err != nil {
		return err
	}
	logger.Info("Decoded audio", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"bit_depth":   data.BitDepth,
		"duration":    data.Duration,
	})

	if settings.Input.RemoveDC {
		if err := data.RemoveDC(settings.Input.DCCutoff); err != nil {
			return err
		}
		logger.Debug("Removed DC offset", logging.Fields{"cutoff_hz": settings.Input.DCCutoff})
	}

	if err := settings.Detection.Validate(data.SampleRate); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	detectors, err := tuner.NewDetectors(settings.Loop.Method, settings.Detection)
	if err != nil {
		return err
	}

	var (
		source offsetSource
		ticker tuner.Ticker
	)
	if flags.realtime {
		source, err = transcode.NewLiveReader(data, settings.Loop.WindowSize)
		ticker = tuner.NewFrameTicker(settings.Loop.FrameRate)
	} else {
		source, err = transcode.NewWindowReader(data, settings.Loop.WindowSize, settings.Loop.HopSize)
		ticker = tuner.ImmediateTicker{}
	}
	if err != nil {
		ticker.Stop()
		return err
	}

	var metrics *tuner.Metrics
	if flags.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		if metrics, err = tuner.NewMetrics(registry); err != nil {
			ticker.Stop()
			return err
		}
		srv, err := serveMetrics(flags.metricsAddr, registry, logger)
		if err != nil {
			ticker.Stop()
			return err
		}
		defer shutdownMetrics(srv, logger)
	}

	printer := &estimatePrinter{out: out, source: source}
	loop, err := tuner.NewDetectionLoop(source, printer,
		tuner.WithDetectors(detectors...),
		tuner.WithTicker(ticker),
		tuner.WithMetrics(metrics),
		tuner.WithLogger(logging.WithFields(logging.Fields{"component": "tuner"})),
	)
	if err != nil {
		ticker.Stop()
		return err
	}

	if err := loop.Start(ctx); err != nil {
		return err
	}
	<-loop.Done()
	loop.Stop()

	if err := loop.Err(); err != nil {
		return fmt.Errorf("analysis of %s failed: %w", path, err)
	}
	if printer.err != nil {
		return fmt.Errorf("failed to write output: %w", printer.err)
	}

	_, err = fmt.Fprintf(out, "%d estimates, %d detected\n", printer.total, printer.detected)
	return err
}

// estimatePrinter writes one line per estimate. It runs on the loop goroutine.
type estimatePrinter struct {
	out      io.Writer
	source   offsetSource
	total    int
	detected int
	err      error
}

func (p *estimatePrinter) Publish(est tonal.PitchEstimate) {
	p.total++
	if p.err != nil {
		return
	}

	offset := p.source.Offset().Seconds()
	if est.Detected && est.Note != nil {
		p.detected++
		_, p.err = fmt.Fprintf(p.out, "%9.3fs  %-15s  %7.1f Hz  %-4s %+3d¢  clarity %.2f\n",
			offset, est.Method, est.Frequency, est.Note.FullName, est.Note.CentsOff, est.Clarity)
		return
	}
	_, p.err = fmt.Fprintf(p.out, "%9.3fs  %-15s  %10s  %-10s clarity %.2f\n",
		offset, est.Method, "-", est.Rejection, est.Clarity)
}

func serveMetrics(addr string, registry *prometheus.Registry, logger logging.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Metrics server stopped")
		}
	}()
	logger.Info("Serving metrics", logging.Fields{"addr": ln.Addr().String()})
	return srv, nil
}

func shutdownMetrics(srv *http.Server, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error(err, "Metrics server shutdown failed")
	}
}
