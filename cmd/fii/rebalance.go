package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Andre13Filho/FII-AI/internal/modules/report"
)

func newRebalanceCmd(a *app) *cobra.Command {
	var amount float64

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Sugere compras para aproximar a carteira da alocação alvo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount < 0 {
				return fmt.Errorf("--amount must not be negative")
			}
			result := a.container.Advisor.Rebalance(cmd.Context(), a.container.Ledger.Summary(), a.container.Target, amount)
			return a.output(cmd.OutOrStdout(), result, func() (string, error) {
				return report.Rebalance(result)
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to invest in BRL (default 5% of the amount invested)")
	return cmd
}
