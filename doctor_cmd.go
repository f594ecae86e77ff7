package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/svm0n/ttscli/internal/pipeline"
	"github.com/svm0n/ttscli/internal/prefs"
	"github.com/svm0n/ttscli/internal/session"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the conversion pipeline can run",
	Long: paragraph(fmt.Sprintf("\n%s the python interpreter, the tts_lib package and ffmpeg. "+
		"ffmpeg is only required for mp3 output, which is taken from your saved settings unless --format is given.",
		keyword("Check"))),
	Example: paragraph("ttscli doctor\nttscli doctor --python ~/venvs/tts/bin/python --format wav"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := outputFormat(doctorFormat)
		if err != nil {
			return err
		}

		deps, err := pipeline.CheckDependencies(cmd.Context(), python, format)
		fmt.Fprint(cmd.OutOrStdout(), deps.Report())
		if errors.Is(err, pipeline.ErrMissingDependencies) {
			return fmt.Errorf("ttscli cannot run conversions: %w", err)
		}
		return err
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "", "output format to check for (mp3 or wav)")
}

// outputFormat returns flag when set, otherwise the saved output format.
func outputFormat(flag string) (string, error) {
	if flag != "" {
		f, err := session.ParseFormat(flag)
		return string(f), err
	}

	s := session.New()
	store, err := prefs.NewStore(prefsFile)
	if err != nil {
		return "", err
	}
	if _, err := store.Load(s); err != nil {
		log.Warn("Ignoring saved settings", "error", err)
		s = session.New()
	}
	return string(s.Format), nil
}
