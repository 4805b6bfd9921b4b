package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/report"
)

func newRecommendCmd(a *app) *cobra.Command {
	var capital float64

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recomenda uma carteira de FIIs para o capital informado",
		RunE: func(cmd *cobra.Command, args []string) error {
			if capital <= 0 {
				return fmt.Errorf("--capital must be positive")
			}
			rec, err := a.container.Allocation.Recommend(cmd.Context(), capital)
			if err != nil {
				return err
			}
			return a.output(cmd.OutOrStdout(), rec, func() (string, error) {
				return report.Recommendation(rec)
			})
		},
	}
	cmd.Flags().Float64Var(&capital, "capital", 0, "total capital in BRL; 25% goes to FIIs by default")
	_ = cmd.MarkFlagRequired("capital")
	return cmd
}

func newFundsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "funds CATEGORY",
		Short: "Lista os fundos de uma categoria, do melhor para o pior",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			funds, err := a.container.Allocation.BestFunds(cmd.Context(), category)
			if err != nil {
				return err
			}
			return a.output(cmd.OutOrStdout(), funds, func() (string, error) {
				return report.Funds(category, funds)
			})
		},
	}
}
