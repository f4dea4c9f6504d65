package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cancalib/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "canmon",
		Short:        "Decode CAN frames into calibrated signal values",
		SilenceUsage: true,
	}
	root.AddCommand(newMonitorCmd(), newValidateCmd())
	return root
}

func newMonitorCmd() *cobra.Command {
	var (
		cfg      RunnerConfig
		logLevel string
		logFile  string
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Listen on a SocketCAN interface and log calibrated signals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := utils.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}

			var log *utils.Logger
			if logFile == "" {
				log = utils.NewLogger(cmd.OutOrStdout(), level)
			} else {
				log, err = utils.NewFileLogger(logFile, level, true)
				if err != nil {
					return fmt.Errorf("cannot open %s: %w", logFile, err)
				}
			}
			defer log.Close()

			cfg.Stdout = cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := NewRunner(ctx, cfg, log)
			if err != nil {
				log.Critical("Startup failed: %v", err)
				return err
			}
			defer runner.Close()

			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Critical("Run failed: %v", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Interface, "iface", "i", "vcan0", "SocketCAN interface name")
	f.StringVarP(&cfg.MapPath, "map", "m", "config/can/signals.csv", "Signal map (.csv or .yaml)")
	f.StringVar(&cfg.StatsPath, "stats", "-", "Write per-signal statistics on exit to this file (\"-\" for stdout, empty to disable)")
	f.IntVar(&cfg.StatsWindow, "stats-window", defaultStatsWindow, "Samples kept per signal for statistics")
	f.StringVar(&logLevel, "log", "info", "trace|debug|info|warn|error|critical")
	f.StringVar(&logFile, "log-file", "canmon.log", "Log file (empty logs to stdout only)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <signal-map>",
		Short: "Check a signal map for layout errors without opening a socket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateMap(cmd.OutOrStdout(), args[0])
		},
	}
}

func validateMap(w io.Writer, path string) error {
	cmap, err := utils.LoadSignalMap(path)
	if err != nil {
		return err
	}
	defs, err := cmap.Definitions()
	if err != nil {
		return err
	}
	for _, def := range defs {
		name := ""
		if fd, err := cmap.FrameByID(def.ID); err == nil {
			name = fd.Name
		}
		fmt.Fprintf(w, "0x%03X %-20s %d signal(s)\n", def.ID, name, len(def.Signals))
		for _, s := range def.Signals {
			fmt.Fprintf(w, "      %-20s %2d@%-2d %-6s signed=%-5v x%g %+g %s\n",
				s.Name(), s.DataLength(), s.StartBit(), s.Endianness(), s.IsSigned(), s.Gain(), s.Offset(), s.Unit())
		}
	}
	fmt.Fprintf(w, "%s: %d frame(s) OK\n", path, len(defs))
	return nil
}
