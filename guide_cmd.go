package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

//go:embed guide.md
var guide string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show a short guide to the menus and settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := renderGuide(term.IsTerminal(int(os.Stdout.Fd()))) //nolint:gosec
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func renderGuide(isTerminal bool) (string, error) {
	style := glamour.WithAutoStyle()
	width := 80
	if !isTerminal {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	} else if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil { //nolint:gosec
		width = min(w, 120)
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(guide)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
