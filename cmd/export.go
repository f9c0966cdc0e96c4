package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/justjjosh/Hermes-backend/internal/report"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export brands and pitch engagement to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if err := report.Export(ctx, st, exportPath); err != nil {
			return err
		}

		zap.L().Info("export complete", zap.String("path", exportPath))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "out", "outreach.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
