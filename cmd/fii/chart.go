package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Andre13Filho/FII-AI/internal/modules/charts"
)

// Chart kinds.
const (
	chartAllocation = "allocation"
	chartBalance    = "balance"
	chartPrice      = "price"
)

func newChartCmd(a *app) *cobra.Command {
	var (
		out    string
		kind   string
		ticker string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Gera um gráfico PNG da carteira ou do preço de um fundo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				png []byte
				err error
			)
			switch kind {
			case chartAllocation:
				png, err = charts.RenderAllocationPie("Carteira de FIIs", a.container.Ledger.Summary().InvestedByCategory)
			case chartBalance:
				png, err = charts.RenderCurrentVsTarget(a.container.Ledger.Summary().ByCategory, a.container.Target)
			case chartPrice:
				if ticker == "" {
					return fmt.Errorf("--ticker is required for price charts")
				}
				png, err = a.container.Charts.PriceChart(ticker)
			default:
				return fmt.Errorf("unknown chart kind %q (allocation, balance or price)", kind)
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "carteira.png", "output PNG file")
	cmd.Flags().StringVar(&kind, "kind", chartAllocation, "allocation, balance or price")
	cmd.Flags().StringVar(&ticker, "ticker", "", "fund for price charts")
	return cmd
}
