package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# python interpreter that can import tts_lib
python: "python3"
# saved settings file (default ~/.tts_cli_config.json)
# prefs: "~/.tts_cli_config.json"
# restore saved settings at startup
autoload: true
# tell me when the saved settings file is changed by another program
watch: true
# copy the output path to the clipboard after a conversion
clipboard: false
# show files ignored by git in the file picker
all: false
# give up on a conversion after this long (0 disables)
timeout: "0s"

# automatic fix for the known tensor-library mismatch
remediation:
  packages:
    - torch
    - torchvision
    - torchaudio
  timeout: "15m"

log:
  # debug, info, warn or error
  level: "info"
  # megabytes before the log file is rotated
  max_size: 10
  max_backups: 3
`

var printConfig bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the ttscli config file",
	Long:    paragraph(fmt.Sprintf("\n%s the ttscli config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("ttscli config\nttscli config --print\nttscli config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printConfig {
			b, err := effectiveConfig()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		}

		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("ttscli", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration instead of editing it")
}

// effectiveConfig renders the merged configuration from defaults, config
// file, environment and flags.
func effectiveConfig() ([]byte, error) {
	b, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("unable to encode configuration: %w", err)
	}
	return b, nil
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
