package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Andre13Filho/FII-AI/internal/config"
	"github.com/Andre13Filho/FII-AI/internal/di"
	"github.com/Andre13Filho/FII-AI/internal/modules/report"
	"github.com/Andre13Filho/FII-AI/pkg/logger"
)

// app carries the state shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	container *di.Container

	jsonOut bool
	plain   bool
	style   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "fii",
		Short:         "Recomendações de fundos imobiliários e controle de carteira",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.container == nil {
				return nil
			}
			return a.container.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of a report")
	flags.BoolVar(&a.plain, "plain", false, "print raw markdown without terminal styling")
	flags.StringVar(&a.style, "style", "dark", "glamour style for reports (dark, light, notty, ...)")

	root.AddCommand(
		newRecommendCmd(a),
		newFundsCmd(a),
		newBuyCmd(a),
		newSellCmd(a),
		newPositionsCmd(a),
		newSummaryCmd(a),
		newPerformanceCmd(a),
		newHistoryCmd(a),
		newRebalanceCmd(a),
		newChartCmd(a),
		newBackupCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	// Logs go to stderr so reports on stdout stay pipeable
	a.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: cmd.ErrOrStderr()})
	logger.SetGlobalLogger(a.log)

	container, err := di.Wire(cmd.Context(), cfg, a.log)
	if err != nil {
		return err
	}
	a.container = container
	return nil
}

// output prints v as JSON when --json is set, otherwise the markdown that
// render produces.
func (a *app) output(w io.Writer, v interface{}, render func() (string, error)) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	md, err := render()
	if err != nil {
		return err
	}
	if !a.plain {
		if md, err = report.Render(md, a.style); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}

// parseDate reads a YYYY-MM-DD flag; empty means today.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", raw)
	}
	return t, nil
}
