package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/model"
)

var (
	analyzeAnalysisID string
	analyzeOwner      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the performance analysis for one stored batch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		orch, err := initOrchestrator(st)
		if err != nil {
			return err
		}

		result, err := orch.Run(ctx, analyzeOwner, analyzeAnalysisID)
		if err != nil {
			return err
		}

		if result.MessageErr != nil {
			zap.L().Warn("messages were not generated", zap.Error(result.MessageErr))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "analysis %s complete: %d suppliers scored, %d messages created\n",
			analyzeAnalysisID, result.SuppliersUpdated, result.MessagesCreated)
		if result.Fallback {
			fmt.Fprintln(out, "AI was unavailable; local scoring was used")
		}
		for _, sup := range result.Suppliers {
			category := model.Category("")
			if sup.Category != nil {
				category = *sup.Category
			}
			performance := 0.0
			if sup.Performance != nil {
				performance = *sup.Performance
			}
			fmt.Fprintf(out, "  %-30s %6.1f  %s\n", sup.Name, performance, category)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeAnalysisID, "analysis", "", "analysis ID (required)")
	analyzeCmd.Flags().StringVar(&analyzeOwner, "owner", "local", "owner ID")
	_ = analyzeCmd.MarkFlagRequired("analysis")
	rootCmd.AddCommand(analyzeCmd)
}
