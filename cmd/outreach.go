package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

var outreachFile string

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Run a discovery-to-send batch from a YAML file",
	Long:  "Reads an outreach request (brand metadata plus selected contacts) from YAML, then creates a brand, generates a pitch, and sends it for each contact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		req, err := loadOutreachRequest(outreachFile)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.Run(ctx, *req)
		if err != nil {
			return err
		}

		for _, res := range report.Results {
			zap.L().Info("contact result",
				zap.String("email", res.Email),
				zap.String("status", string(res.Status)),
				zap.String("error", res.Error),
			)
		}
		zap.L().Info("outreach complete",
			zap.String("brand", report.BrandName),
			zap.Int("sent", report.Sent()),
			zap.Int("total", len(report.Results)),
		)
		return nil
	},
}

// loadOutreachRequest parses and validates the batch request file.
func loadOutreachRequest(path string) (*model.OutreachRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read outreach file %s", path)
	}

	var req model.OutreachRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, eris.Wrapf(err, "parse outreach file %s", path)
	}

	if req.BrandName == "" {
		return nil, eris.New("outreach file: brand_name is required")
	}
	if len(req.Contacts) == 0 {
		return nil, eris.New("outreach file: selected_contacts is empty")
	}
	for i, c := range req.Contacts {
		if c.Email == "" {
			return nil, eris.Errorf("outreach file: contact %d has no email", i)
		}
	}

	return &req, nil
}

func init() {
	outreachCmd.Flags().StringVar(&outreachFile, "file", "outreach.yaml", "path to the outreach request YAML")
	rootCmd.AddCommand(outreachCmd)
}
