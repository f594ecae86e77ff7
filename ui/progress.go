package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/svm0n/ttscli/internal/pipeline"
)

var stageIcons = map[pipeline.Stage]string{
	pipeline.StageInstall:    "📦",
	pipeline.StageInitialize: "🚀",
	pipeline.StageConvert:    "🎤",
	pipeline.StageRemediate:  "🔧",
}

type (
	eventMsg pipeline.Event
	doneMsg  struct{}
)

// progressModel shows the current stage next to a spinner and prints
// finished stages above it.
type progressModel struct {
	spinner spinner.Model
	stage   pipeline.Event
	started bool
	done    bool
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = keywordStyle
	return progressModel{
		spinner: s,
		stage:   pipeline.Event{Message: "Preparing"},
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		if msg.Stage == pipeline.StageDetail {
			return m, tea.Println("   " + faintStyle.Render(msg.Message))
		}
		prev, started := m.stage, m.started
		m.stage, m.started = pipeline.Event(msg), true
		if !started {
			return m, nil
		}
		return m, tea.Println(stageLine(prev))

	case doneMsg:
		m.done = true
		if m.started {
			return m, tea.Sequence(tea.Println(stageLine(m.stage)), tea.Quit)
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.stage.Message + "...\n"
}

func stageLine(e pipeline.Event) string {
	icon := stageIcons[e.Stage]
	if icon == "" {
		icon = "•"
	}
	return icon + " " + e.Message
}

// runWithSpinner runs fn while animating its progress events.
func (a *App) runWithSpinner(fn func(pipeline.Progress) pipeline.Outcome) pipeline.Outcome {
	p := tea.NewProgram(newProgressModel(),
		tea.WithInput(nil),
		tea.WithOutput(a.out),
		tea.WithoutSignalHandler(),
	)

	result := make(chan pipeline.Outcome, 1)
	go func() {
		out := fn(func(e pipeline.Event) { p.Send(eventMsg(e)) })
		result <- out
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		a.println(fail("Progress display failed: " + err.Error()))
	}
	return <-result
}

// runPlain prints one line per stage.
func (a *App) runPlain(fn func(pipeline.Progress) pipeline.Outcome) pipeline.Outcome {
	return fn(func(e pipeline.Event) {
		if e.Stage == pipeline.StageDetail {
			a.println("   " + faintStyle.Render(e.Message))
			return
		}
		a.println("\n" + stageLine(e) + "...")
	})
}
