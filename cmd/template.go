package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/supplier-cli/internal/ingest"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the expected spreadsheet header and an example row",
	RunE: func(cmd *cobra.Command, _ []string) error {
		headers := []string{
			ingest.FieldName, ingest.FieldProduct, ingest.FieldQuantity,
			ingest.FieldQuality, ingest.FieldDelay, ingest.FieldPrice,
			ingest.FieldDeliveryDate,
		}
		example := []string{"Acme Corp", "Widget", "100", "8.5", "5", "150.50", "2024-01-15"}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, strings.Join(headers, ","))
		fmt.Fprintln(out, strings.Join(example, ","))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
}
