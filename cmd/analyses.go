package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/internal/store"
)

var (
	analysesStatus string
	analysesLimit  int
	analysesOwner  string
)

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "List stored analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter := store.AnalysisFilter{
			OwnerID: analysesOwner,
			Limit:   analysesLimit,
		}
		if analysesStatus != "" {
			filter.Status = model.AnalysisStatus(strings.ToUpper(analysesStatus))
		}

		analyses, total, err := st.ListAnalyses(ctx, filter)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d analyses (%d shown)\n", total, len(analyses))
		for _, a := range analyses {
			line := fmt.Sprintf("%s  %-10s  %s", a.ID, a.Status, a.Title)
			if a.Fallback {
				line += "  [fallback]"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	analysesCmd.Flags().StringVar(&analysesStatus, "status", "", "filter by status (PENDING, PROCESSING, COMPLETED, FAILED)")
	analysesCmd.Flags().IntVar(&analysesLimit, "limit", 20, "maximum number of analyses to show")
	analysesCmd.Flags().StringVar(&analysesOwner, "owner", "local", "owner ID")
	rootCmd.AddCommand(analysesCmd)
}
