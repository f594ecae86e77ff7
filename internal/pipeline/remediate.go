package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultUpgradePackages are upgraded when the pipeline hits the known
// tensor-library incompatibility.
var DefaultUpgradePackages = []string{"torch", "torchvision", "torchaudio"}

// Remediator applies the automatic fix for ErrorCodeIncompatible.
type Remediator interface {
	Upgrade(ctx context.Context) error
}

// PipRemediator upgrades packages with pip in the pipeline's interpreter.
type PipRemediator struct {
	Python   string
	Packages []string
	Runner   *SubprocessManager
}

// NewPipRemediator returns a remediator that upgrades packages, or
// DefaultUpgradePackages when none are given.
func NewPipRemediator(python string, packages []string, timeout time.Duration) *PipRemediator {
	if python == "" {
		python = DefaultPython
	}
	if len(packages) == 0 {
		packages = DefaultUpgradePackages
	}
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &PipRemediator{
		Python:   python,
		Packages: packages,
		Runner:   NewSubprocessManager(timeout),
	}
}

// Upgrade runs pip install --upgrade for the configured packages.
func (r *PipRemediator) Upgrade(ctx context.Context) error {
	args := append([]string{"-m", "pip", "install", "--upgrade"}, r.Packages...)
	log.Info("Upgrading pipeline dependencies", "python", r.Python, "packages", strings.Join(r.Packages, " "))

	out, err := r.Runner.Execute(ctx, r.Python, args...)
	if err != nil {
		return err
	}
	log.Debug("pip finished", "output", strings.TrimSpace(string(out)))
	return nil
}
