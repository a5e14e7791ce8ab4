// Command rfsniffer records a 433MHz receiver pin and decodes the remote-control code it carries.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/rfsniffer/internal/config"
	"github.com/sweeney/rfsniffer/internal/dump"
	"github.com/sweeney/rfsniffer/internal/gpio"
	"github.com/sweeney/rfsniffer/internal/logic"
	"github.com/sweeney/rfsniffer/internal/mqtt"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&flags{}).ExecuteContext(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type flags struct {
	configPath string
	dumpPath   string
	chip       string
	pin        int
	duration   time.Duration
	broker     string
	short      time.Duration
	long       time.Duration
	extended   time.Duration
	winStart   time.Duration
	winEnd     time.Duration
	verbose    bool
}

func newRootCmd(f *flags) *cobra.Command {
	root := &cobra.Command{
		Use:           "rfsniffer",
		Short:         "Record a 433MHz receiver and decode the remote code",
		Long:          "rfsniffer samples a 433MHz receiver on a GPIO pin for a fixed duration and decodes the code of the remote control that was pressed.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.close()
			return a.capture(cmd.Context(), f.dumpPath)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file")
	pf.StringVar(&f.broker, "broker", "", "MQTT broker to publish codes to (empty to disable)")
	pf.DurationVar(&f.short, "short", logic.DefaultThresholds.Short, "short pulse length")
	pf.DurationVar(&f.long, "long", logic.DefaultThresholds.Long, "long pulse length")
	pf.DurationVar(&f.extended, "extended", logic.DefaultThresholds.Extended, "gap that marks a frame boundary")
	pf.DurationVar(&f.winStart, "window-start", logic.DefaultWindow.Start, "decode samples after this offset")
	pf.DurationVar(&f.winEnd, "window-end", logic.DefaultWindow.End, "decode samples before this offset (0 for no limit)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	root.Flags().IntVarP(&f.pin, "pin", "p", gpio.DefaultPin, "BCM pin the receiver data line is wired to")
	root.Flags().StringVar(&f.chip, "chip", gpio.DefaultChip, "GPIO chip")
	root.Flags().DurationVar(&f.duration, "duration", gpio.DefaultDuration, "capture duration")
	root.Flags().StringVar(&f.dumpPath, "dump", "", "dump samples to file (.json, .json.gz or .json.zst)")

	root.AddCommand(&cobra.Command{
		Use:   "replay FILE...",
		Short: "Decode previously dumped captures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.close()
			return a.replay(args)
		},
	})

	return root
}

// resolveConfig layers flags the user set over the config file (or defaults).
func resolveConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	set := cmd.Flags().Changed
	if set("pin") {
		cfg.Pin = f.pin
	}
	if set("chip") {
		cfg.Chip = f.chip
	}
	if set("duration") {
		cfg.Duration = f.duration
	}
	if set("broker") {
		cfg.Broker = f.broker
	}
	if set("short") {
		cfg.Thresholds.Short = f.short
	}
	if set("long") {
		cfg.Thresholds.Long = f.long
	}
	if set("extended") {
		cfg.Thresholds.Extended = f.extended
	}
	if set("window-start") {
		cfg.Window.Start = f.winStart
	}
	if set("window-end") {
		cfg.Window.End = f.winEnd
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command, f *flags) (*app, error) {
	if f.verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		out: cmd.OutOrStdout(),
		openReader: func(chip string, pin int) (gpio.Reader, error) {
			return gpio.NewRealReader(chip, pin)
		},
		now: time.Now,
	}

	if cfg.Broker != "" {
		pub, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, cfg.Topic)
		if err != nil {
			// Decoding still works without the broker.
			log.WithError(err).WithField("broker", cfg.Broker).Warn("mqtt publishing disabled")
		} else {
			a.publisher = pub
		}
	}
	return a, nil
}

type app struct {
	cfg        config.Config
	out        io.Writer
	openReader func(chip string, pin int) (gpio.Reader, error)
	publisher  mqtt.Publisher // nil disables publishing
	now        func() time.Time
}

func (a *app) close() {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Close(); err != nil {
		log.WithError(err).Debug("mqtt close")
	}
}

// capture records the pin, decodes the samples and optionally dumps them.
// An interrupted capture still decodes what was recorded.
func (a *app) capture(ctx context.Context, dumpPath string) error {
	reader, err := a.openReader(a.cfg.Chip, a.cfg.Pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	fmt.Fprintln(a.out, "**Started recording**")
	samples, err := gpio.Record(ctx, reader, a.cfg.Duration, a.now)
	if cerr := reader.Close(); cerr != nil {
		log.WithError(cerr).Warn("failed to release gpio")
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn("capture interrupted")
	case err != nil:
		return fmt.Errorf("capture: %w", err)
	}
	fmt.Fprintln(a.out, "**Ended recording**")
	fmt.Fprintf(a.out, "%d samples recorded\n", len(samples))

	fmt.Fprintln(a.out, "**Processing results**")
	res, err := logic.Decode(samples, a.cfg.DecodeThresholds(), a.cfg.DecodeWindow())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Code found: %s\n", res.Code)
	a.report("gpio", res)

	if dumpPath != "" {
		if err := dump.Save(dumpPath, samples); err != nil {
			return err
		}
		log.WithField("path", dumpPath).Info("samples dumped")
	}
	return nil
}

// replay decodes dumped captures. A file that cannot be loaded fails the run.
func (a *app) replay(paths []string) error {
	for _, path := range paths {
		samples, err := dump.Load(path)
		if err != nil {
			return err
		}
		res, err := logic.Decode(samples, a.cfg.DecodeThresholds(), a.cfg.DecodeWindow())
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s: %s\n", path, res.Code)
		a.report(path, res)
	}
	return nil
}

// report logs diagnostics and publishes the result.
func (a *app) report(source string, res logic.Result) {
	entry := log.WithFields(log.Fields{
		"source":      source,
		"samples":     res.Retained,
		"transitions": res.Transitions,
		"frame":       res.Frame,
	})
	entry.Infof("delays: %s", res.Diagnostics)

	if w := res.Warning(); w != nil {
		entry.WithError(w).Warn("no code decoded")
	}
	if res.Unclassified > 0 {
		entry.WithField("count", res.Unclassified).Warn("delays on the short/long cut line were skipped")
	}

	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(mqtt.NewCodeEvent(a.now(), source, res)); err != nil {
		// Don't fail the run on publish failure
		log.WithError(err).Error("publish error")
	}
}
