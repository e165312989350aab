// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"spectro/internal/audio"
	"spectro/internal/config"
	"spectro/internal/log"
	"spectro/internal/spectrogram"
	"spectro/internal/transport"
	"spectro/internal/transport/udp"

	"github.com/spf13/cobra"
)

var liveLogger = log.New("live")

type liveFlags struct {
	device     int
	sampleRate float64
	record     bool
	wsAddress  string
	udpTarget  string
	dryRun     bool
}

func newLiveCommand(opts *options) *cobra.Command {
	var f liveFlags

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Capture from an input device and stream spectrogram columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("device") {
				opts.cfg.Audio.InputDevice = f.device
			}
			if cmd.Flags().Changed("sample-rate") {
				opts.cfg.Audio.SampleRate = f.sampleRate
			}
			if f.record {
				opts.cfg.Recording.Enabled = true
			}
			if f.wsAddress != "" {
				opts.cfg.Transport.WebSocketEnabled = true
				opts.cfg.Transport.WebSocketAddress = f.wsAddress
			}
			if f.udpTarget != "" {
				opts.cfg.Transport.UDPEnabled = true
				opts.cfg.Transport.UDPTargetAddress = f.udpTarget
			}
			if f.dryRun {
				opts.cfg.Transport.WebSocketEnabled = false
				opts.cfg.Transport.UDPEnabled = false
			}
			if err := opts.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runLive(ctx, opts.cfg)
		},
	}

	cmd.Flags().IntVarP(&f.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the 'devices' command to see available devices")
	cmd.Flags().Float64VarP(&f.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	cmd.Flags().BoolVarP(&f.record, "record", "r", false,
		"Also record the input to a WAV file in recording.output_dir")
	cmd.Flags().StringVar(&f.wsAddress, "ws", "", "Serve columns over WebSocket on this address")
	cmd.Flags().StringVar(&f.udpTarget, "udp", "", "Send column packets to this UDP address")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Log columns instead of sending them")
	return cmd
}

// runLive captures until ctx is cancelled. Startup runs in order: PortAudio,
// renderer, transports, pump, input stream, recording. Shutdown unwinds it.
func runLive(ctx context.Context, cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	ro, err := cfg.RendererOptions()
	if err != nil {
		return err
	}
	window, err := cfg.Window()
	if err != nil {
		return err
	}
	lut, err := cfg.LUT()
	if err != nil {
		return err
	}
	scaler, err := cfg.Scaler()
	if err != nil {
		return err
	}
	pipeline, err := spectrogram.NewPipeline(ro, window, lut, scaler)
	if err != nil {
		return err
	}
	if err := pipeline.SetHop(cfg.Spectrogram.Hop); err != nil {
		return err
	}

	transports, err := openTransports(cfg.Transport)
	if err != nil {
		return err
	}
	pump, err := transport.NewPump(cfg.Transport.SendInterval, pipeline.Renderer(), transports...)
	if err != nil {
		closeAll(transports)
		return err
	}
	defer func() {
		if err := pump.Close(); err != nil {
			liveLogger.Errorf("closing transports: %v", err)
		}
	}()

	engine, err := audio.NewEngine(cfg.AudioOptions(), pipeline)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			liveLogger.Errorf("closing audio engine: %v", err)
		}
	}()

	pump.Start()
	if err := engine.StartInputStream(); err != nil {
		return err
	}

	var recording string
	if cfg.Recording.Enabled {
		if err := os.MkdirAll(cfg.Recording.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
		recording = filepath.Join(cfg.Recording.OutputDir,
			"recording-"+time.Now().UTC().Format("02-01-2006-150405")+".wav")
		if err := engine.StartRecording(recording); err != nil {
			return err
		}
	}

	liveLogger.Infof("capturing at %g Hz, %d-point FFT, %s axis; Ctrl+C to stop",
		cfg.Audio.SampleRate, cfg.Analysis.FFTSize, ro.Axis)
	<-ctx.Done()

	if recording != "" {
		if err := engine.StopRecording(); err != nil {
			liveLogger.Errorf("stopping recording: %v", err)
		} else {
			liveLogger.Infof("recording saved to %s", recording)
		}
	}
	if err := engine.StopInputStream(); err != nil {
		liveLogger.Warnf("stopping input stream: %v", err)
	}
	s := engine.Stats()
	liveLogger.Infof("processed %d buffers, %d gated, %d sink errors", s.Buffers, s.Gated, s.SinkErrors)
	return nil
}

// openTransports starts every enabled transport, or a LoggingTransport when
// none is enabled.
func openTransports(tc config.TransportConfig) ([]transport.Transport, error) {
	var ts []transport.Transport

	if tc.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(tc.WebSocketAddress)
		if err := ws.Start(); err != nil {
			return nil, err
		}
		liveLogger.Infof("serving columns on ws://%s/ws", ws.Addr())
		ts = append(ts, ws)
	}

	if tc.UDPEnabled {
		sender, err := udp.NewSender(tc.UDPTargetAddress)
		if err != nil {
			closeAll(ts)
			return nil, err
		}
		pub, err := udp.NewPublisher(sender)
		if err != nil {
			sender.Close()
			closeAll(ts)
			return nil, err
		}
		liveLogger.Infof("sending column packets to %s", sender.Target())
		ts = append(ts, pub)
	}

	if len(ts) == 0 {
		ts = append(ts, transport.NewLoggingTransport())
	}
	return ts, nil
}

func closeAll(ts []transport.Transport) {
	var errs []error
	for _, t := range ts {
		errs = append(errs, t.Close())
	}
	if err := errors.Join(errs...); err != nil {
		liveLogger.Warnf("closing transports: %v", err)
	}
}
