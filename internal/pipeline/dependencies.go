package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// ErrMissingDependencies is returned by CheckAll when a required
// dependency is absent.
var ErrMissingDependencies = errors.New("missing required dependencies")

// DependencyStatus represents the status of a dependency.
type DependencyStatus struct {
	Name         string
	Required     bool
	Installed    bool
	Version      string
	Path         string
	Error        error
	Instructions string
}

// DependencyChecker checks a single dependency.
type DependencyChecker interface {
	Check(ctx context.Context) DependencyStatus
}

// SystemDependencies runs checkers in registration order and keeps their
// results.
type SystemDependencies struct {
	order    []string
	checkers map[string]DependencyChecker
	Results  map[string]DependencyStatus
}

// NewSystemDependencies creates an empty dependency check.
func NewSystemDependencies() *SystemDependencies {
	return &SystemDependencies{
		checkers: make(map[string]DependencyChecker),
		Results:  make(map[string]DependencyStatus),
	}
}

// AddChecker registers a checker under name.
func (sd *SystemDependencies) AddChecker(name string, checker DependencyChecker) {
	if _, ok := sd.checkers[name]; !ok {
		sd.order = append(sd.order, name)
	}
	sd.checkers[name] = checker
}

// CheckAll runs every checker. It returns ErrMissingDependencies when a
// required one is not installed.
func (sd *SystemDependencies) CheckAll(ctx context.Context) error {
	var missing []string
	for _, name := range sd.order {
		status := sd.checkers[name].Check(ctx)
		sd.Results[name] = status

		switch {
		case status.Required && !status.Installed:
			missing = append(missing, status.Name)
			log.Error("Missing required dependency", "name", status.Name, "error", status.Error)
		case status.Installed:
			log.Debug("Dependency found", "name", status.Name, "version", status.Version, "path", status.Path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDependencies, strings.Join(missing, ", "))
	}
	return nil
}

// Report renders the results for the terminal.
func (sd *SystemDependencies) Report() string {
	var (
		title     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
		installed = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		missing   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		optional  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		faint     = lipgloss.NewStyle().Faint(true)
	)

	var b strings.Builder
	b.WriteString(title.Render("Conversion pipeline dependencies"))
	b.WriteString("\n\n")

	for _, name := range sd.order {
		st, ok := sd.Results[name]
		if !ok {
			continue
		}
		switch {
		case st.Installed:
			b.WriteString(installed.Render("  ✓ " + st.Name + ": "))
			b.WriteString(strings.TrimSpace(st.Path + " " + st.Version))
		case st.Required:
			b.WriteString(missing.Render("  ✗ " + st.Name + ": "))
			b.WriteString("Not found")
		default:
			b.WriteString(optional.Render("  ○ " + st.Name + ": "))
			b.WriteString("Not found (optional)")
		}
		b.WriteString("\n")
		if !st.Installed && st.Instructions != "" {
			b.WriteString(faint.Render("    " + st.Instructions))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PythonChecker checks that the interpreter runs.
type PythonChecker struct {
	Python string
	Runner *SubprocessManager
}

func (c *PythonChecker) Check(ctx context.Context) DependencyStatus {
	status := DependencyStatus{Name: c.Python, Required: true}

	path, err := CheckBinary(c.Python)
	if err != nil {
		status.Error = err
		status.Instructions = pythonInstructions()
		return status
	}
	status.Path = path

	out, err := c.Runner.Execute(ctx, c.Python, "--version")
	if err != nil {
		status.Error = err
		status.Instructions = pythonInstructions()
		return status
	}
	status.Installed = true
	status.Version = strings.TrimPrefix(strings.TrimSpace(string(out)), "Python ")
	return status
}

func pythonInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install python, or set python in the config file"
	case "windows":
		return "Download from: https://www.python.org/downloads/"
	default:
		return "Install python3 with your package manager, or set python in the config file"
	}
}

// LibraryChecker checks that tts_lib can be imported.
type LibraryChecker struct {
	Python string
	Runner *SubprocessManager
}

const libraryProbe = `import importlib.metadata as m, tts_lib
try:
    print(m.version("tts_lib"))
except Exception:
    print(getattr(tts_lib, "__version__", ""))
`

func (c *LibraryChecker) Check(ctx context.Context) DependencyStatus {
	status := DependencyStatus{Name: "tts_lib", Required: true}

	out, err := c.Runner.Execute(ctx, c.Python, "-c", libraryProbe)
	if err != nil {
		status.Error = err
		status.Instructions = "Install the conversion pipeline into " + c.Python + ": pip install tts_lib"
		return status
	}
	status.Installed = true
	status.Version = strings.TrimSpace(string(out))
	return status
}

// FFmpegChecker checks for ffmpeg, which the pipeline needs to encode mp3.
type FFmpegChecker struct {
	Required bool
	Runner   *SubprocessManager
}

func (c *FFmpegChecker) Check(ctx context.Context) DependencyStatus {
	status := DependencyStatus{Name: "ffmpeg", Required: c.Required}

	path, err := CheckBinary("ffmpeg")
	if err != nil {
		status.Error = err
		status.Instructions = ffmpegInstructions()
		return status
	}
	status.Path = path
	status.Installed = true

	if out, err := c.Runner.Execute(ctx, path, "-version"); err == nil {
		first, _, _ := strings.Cut(string(out), "\n")
		if parts := strings.Fields(first); len(parts) >= 3 {
			status.Version = parts[2]
		}
	}
	return status
}

func ffmpegInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		switch linuxDistro() {
		case "debian", "ubuntu":
			return "Install with: sudo apt-get install ffmpeg"
		case "fedora", "rhel":
			return "Install with: sudo dnf install ffmpeg"
		case "arch":
			return "Install with: sudo pacman -S ffmpeg"
		}
		return "Install ffmpeg with your package manager"
	default:
		return "Download from: https://ffmpeg.org/download.html"
	}
}

func linuxDistro() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	content := strings.ToLower(string(data))
	for _, d := range []string{"ubuntu", "debian", "fedora", "arch"} {
		if strings.Contains(content, d) {
			return d
		}
	}
	if strings.Contains(content, "rhel") || strings.Contains(content, "centos") {
		return "rhel"
	}
	return "unknown"
}

// CheckDependencies checks what a conversion with python needs. ffmpeg is
// required only when format is mp3.
func CheckDependencies(ctx context.Context, python, format string) (*SystemDependencies, error) {
	if python == "" {
		python = DefaultPython
	}
	runner := NewSubprocessManager(30 * time.Second)

	deps := NewSystemDependencies()
	deps.AddChecker("python", &PythonChecker{Python: python, Runner: runner})
	deps.AddChecker("tts_lib", &LibraryChecker{Python: python, Runner: runner})
	deps.AddChecker("ffmpeg", &FFmpegChecker{Required: format == "mp3", Runner: runner})

	return deps, deps.CheckAll(ctx)
}
