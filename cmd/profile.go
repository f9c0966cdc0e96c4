package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

var profileFile string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the creator profile",
}

var profileImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Create or replace the creator profile from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		data, err := os.ReadFile(profileFile)
		if err != nil {
			return eris.Wrapf(err, "read profile file %s", profileFile)
		}

		var in model.ProfileInput
		if err := yaml.Unmarshal(data, &in); err != nil {
			return eris.Wrapf(err, "parse profile file %s", profileFile)
		}
		if err := in.Validate(); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		profile, err := st.CreateProfile(ctx, in)
		if errors.Is(err, store.ErrProfileExists) {
			profile, err = st.UpdateProfile(ctx, in)
		}
		if err != nil {
			return eris.Wrap(err, "save profile")
		}

		zap.L().Info("profile saved",
			zap.String("name", profile.Name),
			zap.String("sender_email", profile.SenderEmail),
		)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the creator profile as JSON",
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

		profile, err := st.GetProfile(ctx)
		if err != nil {
			return eris.Wrap(err, "load profile")
		}
		if profile == nil {
			return eris.New("no profile configured, run `hermes profile import` first")
		}

		out, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal profile")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	profileImportCmd.Flags().StringVar(&profileFile, "file", "profile.yaml", "path to the profile YAML")
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}
