package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/ingest"
)

var (
	importFilePath   string
	importAnalysisID string
	importTitle      string
	importOwner      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a supplier spreadsheet into an analysis",
	Long:  "Parses a CSV/XLSX file, validates every row, and persists the batch. A single invalid row blocks the whole import.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(importFilePath)
		if err != nil {
			return eris.Wrap(err, "read import file")
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(importFilePath), "."))
		rows, err := ingest.ParseFile(data, ext)
		if err != nil {
			return err
		}

		if validationErrors := ingest.Validate(rows); len(validationErrors) > 0 {
			display := validationErrors
			if len(display) > cfg.Upload.MaxDisplayErrors {
				display = display[:cfg.Upload.MaxDisplayErrors]
			}
			for _, ve := range display {
				fmt.Fprintln(cmd.ErrOrStderr(), ve.Error())
			}
			return eris.Errorf("%d validation errors, nothing imported", len(validationErrors))
		}

		suppliers, err := ingest.Clean(rows)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		analysisID := importAnalysisID
		if analysisID == "" {
			title := importTitle
			if title == "" {
				title = filepath.Base(importFilePath)
			}
			a, err := st.CreateAnalysis(ctx, importOwner, title, "")
			if err != nil {
				return err
			}
			analysisID = a.ID
		} else if _, err := st.GetAnalysis(ctx, importOwner, analysisID); err != nil {
			return err
		}

		n, err := st.CreateSuppliers(ctx, analysisID, suppliers)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("analysis_id", analysisID),
			zap.Int("imported", n),
			zap.String("file", importFilePath),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d suppliers into analysis %s\n", n, analysisID)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to CSV/XLSX file (required)")
	importCmd.Flags().StringVar(&importAnalysisID, "analysis", "", "target analysis ID (created when omitted)")
	importCmd.Flags().StringVar(&importTitle, "title", "", "title for a newly created analysis")
	importCmd.Flags().StringVar(&importOwner, "owner", "local", "owner ID")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
