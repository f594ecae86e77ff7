package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Speed bounds documented for the models that honour speed. They are
// advisory: values outside the range are stored as typed.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0
)

// DefaultOutputDir is where audio lands unless the user picks another
// directory.
const DefaultOutputDir = "files"

// ErrInvalidSpeed indicates the speed could not be parsed as a number.
var ErrInvalidSpeed = errors.New("invalid speed value")

// Session is the conversion configuration edited over one interactive run.
// Only one of PDFPath, EPUBPath and Text is relevant at a time, depending on
// Kind; the others are kept so switching kinds back and forth does not lose
// earlier input.
type Session struct {
	Kind      Kind
	Model     Model
	Extractor Extractor
	Format    Format
	Device    Device
	OutputDir string

	PDFPath  string
	Pages    []int // nil selects every page
	EPUBPath string
	Text     string

	Voice string // empty selects the model default
	Speed float64
}

// New returns a session populated with defaults.
func New() *Session {
	return &Session{
		Kind:      KindPDF,
		Model:     ModelKokoro10,
		Extractor: ExtractorUnstructured,
		Format:    FormatMP3,
		Device:    DeviceAuto,
		OutputDir: DefaultOutputDir,
		Speed:     DefaultSpeed,
	}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.Pages != nil {
		c.Pages = append([]int(nil), s.Pages...)
	}
	return &c
}

// SetOutputDir creates dir, including missing parents, and makes it the
// output directory. A leading ~ is expanded. On failure the session keeps
// its previous directory.
func (s *Session) SetOutputDir(dir string) error {
	dir, err := ExpandPath(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	s.OutputDir = dir
	return nil
}

// EnsureOutputDir creates the current output directory if it went missing,
// for example after loading saved settings on another machine.
func (s *Session) EnsureOutputDir() error {
	return s.SetOutputDir(s.OutputDir)
}

// SetPDF selects a PDF and the pages to convert.
func (s *Session) SetPDF(path string, pages []int) {
	s.PDFPath = path
	s.Pages = pages
}

// SetEPUB selects an EPUB book.
func (s *Session) SetEPUB(path string) {
	s.EPUBPath = path
}

// SetText sets the text to speak.
func (s *Session) SetText(text string) {
	s.Text = text
}

// SetSpeed parses and stores a speed multiplier. The value is left untouched
// when parsing fails.
func (s *Session) SetSpeed(v string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSpeed, v)
	}
	s.Speed = f
	return nil
}

// SpeedInRange reports whether the speed lies in the documented range.
func (s *Session) SpeedInRange() bool {
	return s.Speed >= MinSpeed && s.Speed <= MaxSpeed
}

// Validate checks that the input required by the selected kind is present.
// Fields belonging to other kinds are ignored.
func (s *Session) Validate() (bool, string) {
	switch s.Kind {
	case KindPDF:
		if s.PDFPath == "" {
			return false, "No PDF file selected"
		}
		if !Exists(s.PDFPath) {
			return false, "PDF file not found: " + s.PDFPath
		}
		if s.Extractor == "" {
			return false, "No PDF extractor selected"
		}
	case KindEPUB:
		if s.EPUBPath == "" {
			return false, "No EPUB file selected"
		}
		if !Exists(s.EPUBPath) {
			return false, "EPUB file not found: " + s.EPUBPath
		}
	case KindText:
		if s.Text == "" {
			return false, "No text input provided"
		}
	}
	return true, "Configuration valid"
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	p, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("unable to expand path %q: %w", path, err)
	}
	return p, nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
