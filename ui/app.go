// Package ui implements the interactive console: menus that edit a
// conversion session, persist it, and hand it to the conversion pipeline.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/svm0n/ttscli/internal/pipeline"
	"github.com/svm0n/ttscli/internal/session"
)

// Dispatcher runs a conversion for a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, s *session.Session, progress pipeline.Progress) pipeline.Outcome
}

// Settings persists the durable part of a session.
type Settings interface {
	Save(s *session.Session) error
	Load(s *session.Session) (bool, error)
	Path() string
}

// ChangeNotifier reports whether saved settings changed behind our back.
type ChangeNotifier interface {
	Pending() bool
}

// App is one interactive session.
type App struct {
	cfg        Config
	session    *session.Session
	prompter   *Prompter
	out        io.Writer
	settings   Settings
	dispatcher Dispatcher
	watcher    ChangeNotifier

	// interactive enables the progress spinner.
	interactive bool

	router     *interruptRouter
	interrupts func(context.Context) (context.Context, context.CancelFunc)
	copyPath   func(string) error
}

// NewApp returns an App editing s. Prompts and results are written to out.
func NewApp(cfg Config, s *session.Session, settings Settings, d Dispatcher, in io.Reader, out io.Writer) *App {
	if cfg.WebPlayerURL == "" {
		cfg.WebPlayerURL = DefaultWebPlayerURL
	}
	router := &interruptRouter{}
	a := &App{
		cfg:        cfg,
		session:    s,
		prompter:   NewPrompter(in, out),
		out:        out,
		settings:   settings,
		dispatcher: d,
		router:     router,
		interrupts: router.scope,
		copyPath:   clipboard.WriteAll,
	}
	if f, ok := out.(*os.File); ok && cfg.Spinner {
		a.interactive = term.IsTerminal(int(f.Fd())) //nolint:gosec
	}
	return a
}

// SetWatcher enables the "settings changed on disk" notice.
func (a *App) SetWatcher(w ChangeNotifier) {
	a.watcher = w
}

// Session returns the session being edited.
func (a *App) Session() *session.Session {
	return a.session
}

// Run shows the main menu until the user exits. Exiting through the menu,
// end of input or an interrupt all return nil. Interrupts are caught for the
// whole of Run: one during a conversion cancels it, any other ends the
// session at the next prompt.
func (a *App) Run(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	lctx, stop := context.WithCancel(ctx)
	defer stop()
	go a.router.listen(lctx, sigs)

	a.banner()
	if a.cfg.Autoload {
		a.autoload()
	}

	for {
		a.noticeChanges()
		a.mainMenu()

		choice, err := a.ask(ctx, "\nEnter choice: ")
		if err != nil {
			return a.exit(err)
		}

		switch choice {
		case "1":
			err = a.configure(ctx)
		case "2":
			err = a.selectInput(ctx)
		case "3":
			err = a.runConversion(ctx)
		case "4":
			a.viewConfiguration()
		case "5":
			err = a.advanced(ctx)
		case "6":
			a.save()
		case "7":
			a.load()
		case "0":
			a.println("\n👋 Thank you for using TTS CLI!")
			a.printf("Visit %s to use the web player.\n\n", a.cfg.WebPlayerURL)
			return nil
		default:
			a.println(warn("Invalid choice. Please try again."))
		}
		if err != nil {
			return a.exit(err)
		}
	}
}

func (a *App) exit(err error) error {
	if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
		log.Debug("Leaving interactive session", "reason", err)
		a.println("\n👋 Exiting TTS CLI. Goodbye!")
		a.printf("Visit %s to use the web player.\n\n", a.cfg.WebPlayerURL)
		return nil
	}
	return err
}

// ask reads one answer. An interrupt while waiting ends the prompt with
// ErrInterrupted.
func (a *App) ask(ctx context.Context, prompt string) (string, error) {
	ictx, stop := a.interrupts(ctx)
	defer stop()
	return a.prompter.Ask(ictx, prompt)
}

func (a *App) pause(ctx context.Context) error {
	_, err := a.ask(ctx, "\nPress Enter to continue...")
	return err
}

func (a *App) banner() {
	a.println("\n" + rule("=", wideRule))
	a.println(titleStyle.Render("  TTS CLI - Text-to-Speech Converter"))
	a.println("  Convert PDFs, EPUBs, and Text to Natural Speech")
	a.println(rule("=", wideRule) + "\n")
	a.println("Welcome! This tool converts PDFs, EPUBs, and text to speech.")
	a.println("Start by configuring your conversion settings (Option 1).")
}

func (a *App) header(title string, width int) {
	a.println("\n" + rule("-", width))
	a.println(titleStyle.Render(title))
	a.println(rule("-", width))
}

func (a *App) mainMenu() {
	a.header("MAIN MENU", wideRule)
	a.println("1. Configure conversion settings")
	a.println("2. Select input file/text")
	a.println("3. Run conversion")
	a.println("4. View current configuration")
	a.println("5. Advanced settings (voice, speed, device)")
	a.println("6. Save settings")
	a.println("7. Load saved settings")
	a.println("0. Exit")
	a.println(rule("-", wideRule))
}

func (a *App) noticeChanges() {
	if a.watcher != nil && a.watcher.Pending() {
		a.println("\n" + faintStyle.Render("Saved settings were changed on disk. Choose 7 to load them."))
	}
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
