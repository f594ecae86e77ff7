package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/svm0n/ttscli/internal/session"
)

const maxSuggestions = 5

func (a *App) configure(ctx context.Context) error {
	for {
		a.header("CONFIGURATION MENU", wideRule)
		a.println("1. Set conversion type (PDF, EPUB, Text)")
		a.println("2. Select TTS model")
		a.println("3. Select PDF extractor (for PDF conversion)")
		a.println("4. Set output format (MP3, WAV)")
		a.println("5. Set output directory")
		a.println("0. Back to main menu")
		a.println(rule("-", wideRule))

		choice, err := a.ask(ctx, "\nEnter choice: ")
		if err != nil {
			return err
		}

		s := a.session
		switch choice {
		case "1":
			err = pick(ctx, a, "SELECT CONVERSION TYPE", session.KindOptions, func(k session.Kind) string {
				s.Kind = k
				return "Conversion type set to: " + k.Label()
			})
		case "2":
			err = pick(ctx, a, "SELECT TTS MODEL", session.ModelOptions, func(m session.Model) string {
				s.Model = m
				return "TTS model set to: " + m.Label()
			})
		case "3":
			err = pick(ctx, a, "SELECT PDF EXTRACTOR", session.ExtractorOptions, func(e session.Extractor) string {
				s.Extractor = e
				return "PDF extractor set to: " + e.Label()
			})
		case "4":
			err = pick(ctx, a, "SELECT OUTPUT FORMAT", session.FormatOptions, func(f session.Format) string {
				s.Format = f
				return "Output format set to: " + strings.ToUpper(string(f))
			})
		case "5":
			err = a.setOutputDir(ctx)
		case "0":
			return nil
		default:
			a.println(warn("Invalid choice. Please try again."))
		}
		if err != nil {
			return err
		}
	}
}

// pick shows a numbered choice table and applies the selected value. Apply
// returns the confirmation to print. Cancelling or an unknown key leaves the
// session untouched.
func pick[T any](ctx context.Context, a *App, title string, table []session.Option[T], apply func(T) string) error {
	a.header(title, narrowRule)
	for _, o := range table {
		a.printf("%s. %s\n", o.Key, o.Label)
	}
	a.println("0. Cancel")

	choice, err := a.ask(ctx, fmt.Sprintf("\nEnter choice [1-%d]: ", len(table)))
	if err != nil {
		return err
	}
	if choice == "0" {
		a.println("Cancelled")
		return nil
	}
	v, found := session.Lookup(table, choice)
	if !found {
		a.println(warn("Invalid choice"))
		return nil
	}
	a.println(ok(apply(v)))
	return nil
}

func (a *App) setOutputDir(ctx context.Context) error {
	a.printf("\nCurrent output directory: %s\n", a.session.OutputDir)
	dir, err := a.ask(ctx, "Enter new output directory (or press Enter to keep current): ")
	if err != nil || dir == "" {
		return err
	}
	if err := a.session.SetOutputDir(dir); err != nil {
		a.println(fail(err.Error()))
		return nil
	}
	a.println(ok("Output directory set to: " + a.session.OutputDir))
	return nil
}

func (a *App) advanced(ctx context.Context) error {
	a.header("ADVANCED SETTINGS", wideRule)
	a.println("1. Set voice/speaker")
	a.println("2. Set speech speed (Kokoro/Qwen3 only)")
	a.println("3. Set device (auto, cuda, cpu, mps)")
	a.println("0. Back to main menu")
	a.println(rule("-", wideRule))

	choice, err := a.ask(ctx, "\nEnter choice [1-3]: ")
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return a.setVoice(ctx)
	case "2":
		return a.setSpeed(ctx)
	case "3":
		return pick(ctx, a, "SELECT DEVICE", session.DeviceOptions, func(d session.Device) string {
			a.session.Device = d
			return "Device set to: " + string(d)
		})
	case "0":
		return nil
	default:
		a.println(warn("Invalid choice"))
		return nil
	}
}

func (a *App) setVoice(ctx context.Context) error {
	a.printf("\nCurrent voice: %s\n", voiceLabel(a.session.Voice))
	voice, err := a.ask(ctx, "Enter voice name (or press Enter for default): ")
	if err != nil {
		return err
	}
	if voice == "" {
		a.session.Voice = ""
		a.println(ok("Voice set to: Default"))
		return nil
	}

	a.session.Voice = voice
	a.println(ok("Voice set to: " + voice))

	if hint := voiceHint(a.session.Model, voice); hint != "" {
		a.println(faintStyle.Render(hint))
	}
	return nil
}

// voiceHint describes a voice missing from the model's catalog, with the
// closest known names.
func voiceHint(m session.Model, voice string) string {
	catalog := session.Voices(m)
	if len(catalog) == 0 {
		return ""
	}
	for _, v := range catalog {
		if strings.EqualFold(v, voice) {
			return ""
		}
	}

	hint := fmt.Sprintf("%s is not a known %s voice.", voice, m.Label())
	matches := fuzzy.Find(voice, catalog)
	if len(matches) == 0 {
		return hint
	}
	names := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if len(names) == maxSuggestions {
			break
		}
		names = append(names, match.Str)
	}
	return hint + " Did you mean: " + strings.Join(names, ", ") + "?"
}

func (a *App) setSpeed(ctx context.Context) error {
	a.printf("\nCurrent speed: %s\n", formatSpeed(a.session.Speed))
	v, err := a.ask(ctx, fmt.Sprintf("Enter speed (%s-%s, default %s): ",
		formatSpeed(session.MinSpeed), formatSpeed(session.MaxSpeed), formatSpeed(session.DefaultSpeed)))
	if err != nil || v == "" {
		return err
	}
	if err := a.session.SetSpeed(v); err != nil {
		a.println(warn("Invalid speed value"))
		return nil
	}
	a.println(ok("Speed set to: " + formatSpeed(a.session.Speed)))
	if !a.session.SpeedInRange() {
		a.println(warn(fmt.Sprintf("Speed is outside the supported range %s-%s",
			formatSpeed(session.MinSpeed), formatSpeed(session.MaxSpeed))))
	}
	if !a.session.Model.SupportsSpeed() {
		a.println(faintStyle.Render(a.session.Model.Label() + " ignores the speed setting."))
	}
	return nil
}

func voiceLabel(v string) string {
	if v == "" {
		return "Default"
	}
	return v
}

// formatSpeed prints whole numbers with one decimal, like 1.0.
func formatSpeed(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
