package ui

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/svm0n/ttscli/internal/pipeline"
)

func (a *App) runConversion(ctx context.Context) error {
	if valid, reason := a.session.Validate(); !valid {
		a.configurationError(reason)
		return a.pause(ctx)
	}

	a.println("\n" + rule("=", wideRule))
	a.println(titleStyle.Render("RUNNING CONVERSION"))
	a.println(rule("=", wideRule))

	dctx, stop := a.interrupts(ctx)
	dispatch := func(progress pipeline.Progress) pipeline.Outcome {
		return a.dispatcher.Dispatch(dctx, a.session, progress)
	}
	var out pipeline.Outcome
	if a.interactive {
		out = a.runWithSpinner(dispatch)
	} else {
		out = a.runPlain(dispatch)
	}
	stop()

	a.report(out)
	return a.pause(ctx)
}

func (a *App) configurationError(reason string) {
	a.println("\n" + warn("Configuration Error: "+reason))
	a.println("Please configure all required settings before running conversion.")
}

func (a *App) report(out pipeline.Outcome) {
	switch out.Kind {
	case pipeline.Refused:
		a.configurationError(out.Reason)

	case pipeline.Succeeded:
		a.println("\n" + rule("=", wideRule))
		a.println(okStyle.Bold(true).Render("✓ CONVERSION COMPLETED SUCCESSFULLY"))
		a.println(rule("=", wideRule))

		res := out.Result
		if res.ArchivePath != "" {
			a.println("ZIP archive:   " + withSize(res.ArchivePath))
		} else {
			a.println("Audio file:    " + withSize(res.AudioPath))
			a.println("Manifest file: " + withSize(res.ManifestPath))
		}
		a.println(faintStyle.Render("Finished in " + out.Elapsed.Round(time.Second).String()))
		a.copyResult(res.Primary())

		a.println("\n💡 You can now upload these files to the web player at:")
		a.println("   " + keywordStyle.Render(a.cfg.WebPlayerURL))

	case pipeline.Canceled:
		a.println("\n" + warn("Conversion cancelled by user"))

	case pipeline.RestartRequired:
		a.println("\n" + fail("Error during conversion: "+errString(out.Err)))
		a.println(ok("Dependencies were upgraded. Restart ttscli to use them, then run the conversion again."))

	case pipeline.RemediationFailed:
		a.println("\n" + fail("Error during conversion: "+errString(out.Err)))
		a.println(warn("Automatic upgrade failed. Try: pip install --upgrade " +
			strings.Join(a.upgradePackages(), " ")))

	default:
		a.println("\n" + fail("Error during conversion: "+errString(out.Err)))
		if trace := pipeline.TraceOf(out.Err); trace != "" {
			a.println(faintStyle.Render(strings.TrimRight(trace, "\n")))
		}
	}
}

func (a *App) copyResult(path string) {
	if !a.cfg.Clipboard || path == "" || a.copyPath == nil {
		return
	}
	if err := a.copyPath(path); err != nil {
		log.Debug("Unable to copy to clipboard", "error", err)
		return
	}
	a.println(faintStyle.Render("Copied " + path + " to the clipboard"))
}

func (a *App) upgradePackages() []string {
	if len(a.cfg.UpgradePackages) > 0 {
		return a.cfg.UpgradePackages
	}
	return pipeline.DefaultUpgradePackages
}

func withSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return path + " " + faintStyle.Render("("+humanize.Bytes(uint64(info.Size()))+")") //nolint:gosec
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
