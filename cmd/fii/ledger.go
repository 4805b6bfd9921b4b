package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/report"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
)

// tradeFlags are shared by buy and sell.
type tradeFlags struct {
	price  float64
	shares int
	date   string
}

func (f *tradeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.price, "price", 0, "unit price in BRL")
	cmd.Flags().IntVar(&f.shares, "shares", 0, "number of shares")
	cmd.Flags().StringVar(&f.date, "date", "", "trade date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("shares")
}

func newBuyCmd(a *app) *cobra.Command {
	var (
		trade    tradeFlags
		category string
	)

	cmd := &cobra.Command{
		Use:   "buy TICKER",
		Short: "Registra uma compra",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(trade.date)
			if err != nil {
				return err
			}
			cat, err := resolveCategory(args[0], category)
			if err != nil {
				return err
			}

			pos, err := a.container.Ledger.RecordBuy(args[0], cat, trade.price, trade.shares, date)
			if err != nil {
				return err
			}
			return a.printPosition(cmd.OutOrStdout(), "Compra registrada", pos)
		},
	}
	trade.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "fund category; inferred from the catalog when omitted")
	return cmd
}

// resolveCategory parses an explicit category, or looks the ticker up in the
// catalog. An unknown ticker without a category is left to the ledger, which
// accepts it only for an existing position.
func resolveCategory(ticker, raw string) (domain.Category, error) {
	if raw != "" {
		return domain.ParseCategory(raw)
	}
	if cats := universe.CategoriesOf(ticker); len(cats) > 0 {
		return cats[0], nil
	}
	return "", nil
}

func newSellCmd(a *app) *cobra.Command {
	var trade tradeFlags

	cmd := &cobra.Command{
		Use:   "sell TICKER",
		Short: "Registra uma venda",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(trade.date)
			if err != nil {
				return err
			}
			pos, err := a.container.Ledger.RecordSell(args[0], trade.shares, trade.price, date)
			if err != nil {
				return err
			}
			return a.printPosition(cmd.OutOrStdout(), "Venda registrada", pos)
		},
	}
	trade.register(cmd)
	return cmd
}

func (a *app) printPosition(w io.Writer, title string, pos portfolio.Position) error {
	return a.output(w, pos, func() (string, error) {
		if pos.ShareCount == 0 {
			return fmt.Sprintf("# %s\n\nPosição em %s encerrada.\n", title, pos.Ticker), nil
		}
		return report.Ledger(report.LedgerView{
			Summary:   portfolio.Summarize([]portfolio.Position{pos}),
			Positions: []portfolio.Position{pos},
		})
	})
}

func newPositionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Lista as posições abertas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions := a.container.Ledger.CurrentPositions()
			return a.output(cmd.OutOrStdout(), positions, func() (string, error) {
				return report.Ledger(report.LedgerView{
					Summary:   portfolio.Summarize(positions),
					Positions: positions,
				})
			})
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Resume o total investido por categoria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary := a.container.Ledger.Summary()
			return a.output(cmd.OutOrStdout(), summary, func() (string, error) {
				return report.Ledger(report.LedgerView{Summary: summary})
			})
		},
	}
}

func newPerformanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "performance",
		Short: "Compara o custo das posições com as cotações atuais",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger := a.container.Ledger
			prices := ledger.Prices(cmd.Context(), a.container.Market)
			perf := ledger.Performance(prices)
			return a.output(cmd.OutOrStdout(), perf, func() (string, error) {
				positions := ledger.CurrentPositions()
				return report.Ledger(report.LedgerView{
					Summary:     portfolio.Summarize(positions),
					Positions:   positions,
					Performance: &perf,
				})
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "history [TICKER]",
		Short: "Mostra o histórico de transações",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger := a.container.Ledger
			if csvPath != "" {
				return exportCSV(ledger, csvPath, cmd.OutOrStdout())
			}

			var ticker string
			if len(args) == 1 {
				ticker = args[0]
			}
			entries := ledger.History(ticker)
			return a.output(cmd.OutOrStdout(), entries, func() (string, error) {
				return report.History(entries)
			})
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", `export every transaction as CSV to a file ("-" for stdout)`)
	return cmd
}

func exportCSV(ledger *portfolio.Ledger, path string, stdout io.Writer) error {
	if path == "-" {
		return ledger.ExportCSV(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ledger.ExportCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
