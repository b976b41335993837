package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ChicagoDave/bubblepoint/internal/config"
	"github.com/ChicagoDave/bubblepoint/internal/logger"
	"github.com/ChicagoDave/bubblepoint/internal/server"
)

func main() {
	a := &app{cfg: config.FromEnv(), out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:          "bubblepoint",
		Short:        "Bubble-point temperatures and T-x-y curves for ideal binary mixtures",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			log, err := logger.New(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "log format (text or json)")

	rootCmd.AddCommand(solveCmd(a))
	rootCmd.AddCommand(curveCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(componentsCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd(a *app) *cobra.Command {
	var (
		x      float64
		guess  float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "solve [project-path]",
		Short: "Solve the bubble point of a single liquid composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var g *float64
			if cmd.Flags().Changed("guess") {
				g = &guess
			}
			return a.runSolve(args[0], x, g, asJSON)
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0.5, "liquid mole fraction of the first component")
	cmd.Flags().Float64Var(&guess, "guess", 0, "initial temperature guess in °C (default: sweep.initial_guess or interpolated)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the point as JSON")
	return cmd
}

func curveCmd(a *app) *cobra.Command {
	var (
		format string
		points int
	)

	cmd := &cobra.Command{
		Use:   "curve [project-path]",
		Short: "Generate the T-x-y equilibrium curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runCurve(args[0], format, points)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json, csv)")
	cmd.Flags().IntVarP(&points, "points", "n", 0, "evenly spaced compositions (overrides sweep.points and sweep.fractions)")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a system spec and its curve without printing the curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			valid, err := a.runValidate(args[0])
			if err != nil {
				return err
			}
			if !valid {
				os.Exit(1)
			}
			return nil
		},
	}
}

func componentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the built-in Antoine component library",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runComponents()
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local dev server exposing curves as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			srv := server.New(args[0], a.cfg.Addr, a.log, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "HTTP listen address")
	return cmd
}
