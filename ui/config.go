package ui

// DefaultWebPlayerURL is where converted files can be played back.
const DefaultWebPlayerURL = "https://svm0n.github.io/ttsweb/"

// Config contains console-specific configuration.
type Config struct {
	// Autoload restores saved settings at startup.
	Autoload bool
	// Watch reports edits made to the settings file by other programs.
	Watch bool
	// Clipboard copies the main output path after a conversion.
	Clipboard bool

	// Working directory searched by the file picker.
	Workdir string
	// ShowAllFiles makes the file picker ignore .gitignore rules.
	ShowAllFiles bool

	// UpgradePackages are suggested for a manual upgrade when the automatic
	// one fails.
	UpgradePackages []string

	WebPlayerURL string `env:"TTSCLI_WEB_PLAYER" envDefault:"https://svm0n.github.io/ttsweb/"`
	// Spinner animates progress when stdout is a terminal.
	Spinner bool `env:"TTSCLI_SPINNER" envDefault:"true"`
}
