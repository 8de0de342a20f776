package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/shazow/wifiqr/internal/config"
	wifilog "github.com/shazow/wifiqr/internal/log"
	"github.com/shazow/wifiqr/internal/provision"
	"github.com/shazow/wifiqr/internal/report"
	"github.com/shazow/wifiqr/internal/scan"
	"github.com/shazow/wifiqr/wifi"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

// options holds the root command's flag values.
type options struct {
	Device          string
	Retries         int
	Interval        time.Duration
	Wifi            bool
	Interface       string
	Combined        bool
	DeleteOnFailure bool
	Wait            time.Duration
	Theme           string
	Verbose         bool
	Version         bool
	Config          string
}

func newRootFlagSet(o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("wifiqr", flag.ExitOnError)
	fs.StringVar(&o.Device, "device", "-", "path to read decoded QR payloads from, - for stdin")
	fs.StringVar(&o.Device, "d", "-", "short for -device")
	fs.IntVar(&o.Retries, "retries", scan.DefaultRetries, "number of times to try reading a payload")
	fs.IntVar(&o.Retries, "r", scan.DefaultRetries, "short for -retries")
	fs.DurationVar(&o.Interval, "interval", scan.DefaultInterval, "delay between read attempts")
	fs.BoolVar(&o.Wifi, "wifi", false, "add and activate scanned networks in NetworkManager")
	fs.BoolVar(&o.Wifi, "w", false, "short for -wifi")
	fs.StringVar(&o.Interface, "interface", "wlan0", "network interface to activate connections on")
	fs.StringVar(&o.Interface, "i", "wlan0", "short for -interface")
	fs.BoolVar(&o.Combined, "combined", false, "add and activate with a single NetworkManager call")
	fs.BoolVar(&o.DeleteOnFailure, "delete-on-failure", false, "delete an added connection when its activation fails")
	fs.DurationVar(&o.Wait, "wait", 0, "wait up to this long for each activation to complete")
	fs.StringVar(&o.Theme, "theme", "", "path to theme toml file")
	fs.BoolVar(&o.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&o.Verbose, "v", false, "short for -verbose")
	fs.BoolVar(&o.Version, "version", false, "display version")
	fs.StringVar(&o.Config, "config", "", "path to config toml file")
	return fs
}

func rootOptions() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("WIFIQR"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(config.Parser),
	}
}

// main is the entry point of the application
func main() {
	var opts options
	rootFlagSet := newRootFlagSet(&opts)

	var logger *slog.Logger

	parseFlagSet := flag.NewFlagSet("parse", flag.ExitOnError)
	parseFormat := parseFlagSet.String("format", "json", "output format (json, yaml)")
	parseShowSecret := parseFlagSet.Bool("show-secret", false, "include the passphrase in the output")
	parseCmd := &ffcli.Command{
		Name:       "parse",
		ShortUsage: "wifiqr parse [-format json|yaml] <payload>",
		ShortHelp:  "Show the NetworkManager settings for a QR payload",
		FlagSet:    parseFlagSet,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("parse requires a payload")
			}
			return runParse(os.Stdout, args[0], *parseFormat, *parseShowSecret)
		},
	}

	qrCmd := &ffcli.Command{
		Name:       "qr",
		ShortUsage: "wifiqr qr <ssid> <passphrase>",
		ShortHelp:  "Print a WiFi QR code",
		FlagSet:    flag.NewFlagSet("qr", flag.ExitOnError),
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("qr requires an ssid and a passphrase")
			}
			return runQR(os.Stdout, args[0], args[1])
		},
	}

	root := &ffcli.Command{
		ShortUsage:  "wifiqr [flags] [<subcommand> [args...]]",
		ShortHelp:   "Connect to WiFi networks from scanned QR codes",
		FlagSet:     rootFlagSet,
		Subcommands: []*ffcli.Command{parseCmd, qrCmd},
		Options:     rootOptions(),
		Exec: func(ctx context.Context, args []string) error {
			src, err := scan.Open(opts.Device)
			if err != nil {
				return err
			}
			defer src.Close()
			src.Timeout = opts.Interval

			var backend wifi.Backend
			if opts.Wifi {
				logger.Info("activating scanned connections", "interface", opts.Interface)
				backend, err = GetBackend(logger)
				if err != nil {
					return err
				}
			}

			scanner := &scan.Scanner{
				Source:   src,
				Retries:  opts.Retries,
				Interval: opts.Interval,
				Logger:   logger,
			}
			provisionOpts := provision.Options{
				Interface:       opts.Interface,
				Combined:        opts.Combined,
				DeleteOnFailure: opts.DeleteOnFailure,
				WaitTimeout:     opts.Wait,
			}
			return runScan(ctx, os.Stdout, scanner, backend, provisionOpts, logger)
		},
	}

	if err := root.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if opts.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger = wifilog.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if opts.Theme != "" {
		if err := loadTheme(opts.Theme); err != nil {
			fmt.Fprintf(os.Stderr, "error loading theme: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func loadTheme(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.LoadTheme(f)
}
