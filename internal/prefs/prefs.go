// Package prefs persists the durable subset of a conversion session to a
// JSON file in the user's home directory and restores it on request.
package prefs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/svm0n/ttscli/internal/session"
)

// FileName is the name of the settings file inside the home directory.
const FileName = ".tts_cli_config.json"

//go:embed schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("schema.json", schemaSource)

// ErrInvalidFile indicates the settings file exists but does not describe a
// usable configuration.
var ErrInvalidFile = errors.New("invalid settings file")

// Durable keys, in the order they are written.
const (
	keyKind      = "conversion_type"
	keyModel     = "tts_model"
	keyExtractor = "pdf_extractor"
	keyFormat    = "output_format"
	keyDevice    = "device"
	keyOutputDir = "output_dir"
	keyVoice     = "voice"
	keySpeed     = "speed"
)

// record is the on-disk shape. Paths, text and page selections are per-run
// input and never persisted.
type record struct {
	Kind      string  `json:"conversion_type"`
	Model     string  `json:"tts_model"`
	Extractor string  `json:"pdf_extractor"`
	Format    string  `json:"output_format"`
	Device    string  `json:"device"`
	OutputDir string  `json:"output_dir"`
	Voice     *string `json:"voice"`
	Speed     float64 `json:"speed"`
}

// DefaultPath returns the settings file location for the current user.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Encode renders the durable fields of s.
func Encode(s *session.Session) ([]byte, error) {
	r := record{
		Kind:      string(s.Kind),
		Model:     string(s.Model),
		Extractor: string(s.Extractor),
		Format:    string(s.Format),
		Device:    string(s.Device),
		OutputDir: s.OutputDir,
		Speed:     s.Speed,
	}
	if s.Voice != "" {
		v := s.Voice
		r.Voice = &v
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("unable to encode settings: %w", err)
	}
	return append(b, '\n'), nil
}

// Save writes the durable fields of s to path, replacing any previous
// content. The file is written next to its destination and renamed into
// place, so a failed save leaves the earlier file intact.
func Save(path string, s *session.Session) error {
	b, err := Encode(s)
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create settings directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary settings file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to write settings: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to flush settings: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close settings file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("unable to set settings permissions: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("unable to replace settings file: %w", err)
	}
	return nil
}

// Load reads path and merges every durable field it contains into s. It
// reports false, with s untouched, when no file exists. A file that fails
// validation is rejected as a whole.
func Load(path string, s *session.Session) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to read settings: %w", err)
	}
	if err := Decode(data, s); err != nil {
		return true, err
	}
	return true, nil
}

// Decode validates data against the settings schema and merges it into s.
func Decode(data []byte, s *session.Session) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	merged := s.Clone()
	if err := merge(merged, fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	*s = *merged
	return nil
}

// merge copies each durable key present in fields onto s. Keys that are not
// durable settings are ignored.
func merge(s *session.Session, fields map[string]json.RawMessage) error {
	var unknown []string
	for key, raw := range fields {
		var err error
		switch key {
		case keyKind:
			err = mergeEnum(raw, session.ParseKind, &s.Kind)
		case keyModel:
			err = mergeEnum(raw, session.ParseModel, &s.Model)
		case keyExtractor:
			err = mergeEnum(raw, session.ParseExtractor, &s.Extractor)
		case keyFormat:
			err = mergeEnum(raw, session.ParseFormat, &s.Format)
		case keyDevice:
			err = mergeEnum(raw, session.ParseDevice, &s.Device)
		case keyOutputDir:
			err = json.Unmarshal(raw, &s.OutputDir)
		case keyVoice:
			var v *string
			if err = json.Unmarshal(raw, &v); err == nil {
				s.Voice = ""
				if v != nil {
					s.Voice = *v
				}
			}
		case keySpeed:
			err = json.Unmarshal(raw, &s.Speed)
		default:
			unknown = append(unknown, key)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		log.Debug("Ignoring unknown settings keys", "keys", strings.Join(unknown, ","))
	}
	return nil
}

func mergeEnum[T ~string](raw json.RawMessage, parse func(string) (T, error), dst *T) error {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	parsed, err := parse(v)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}
