// Package pipeline hands a validated conversion session to the external
// text-to-speech pipeline and reports back what it produced.
//
// The pipeline itself (model loading, dependency installation, PDF/EPUB
// extraction and synthesis) lives outside this program. Pipeline describes
// the three capabilities consumed here; Bridge implements them by driving the
// Python tts_lib package over a small JSON line protocol.
package pipeline

import "context"

// Pipeline installs what a conversion needs and prepares a System to run it.
type Pipeline interface {
	// InstallDependencies makes sure the packages for the requested model,
	// extractor, kind and format are present.
	InstallDependencies(ctx context.Context, req Requirements, progress Progress) error

	// Initialize loads the model on the requested device and returns a
	// ready System.
	Initialize(ctx context.Context, opts InitOptions, progress Progress) (System, error)
}

// System is an initialized pipeline: synthesis handle, pipeline
// configuration and PDF extractor, all opaque to the caller.
type System interface {
	Run(ctx context.Context, job Job, progress Progress) (Result, error)
	Close() error
}

// Requirements select the dependencies to install.
type Requirements struct {
	RunID     string
	Model     string
	Extractor string
	Kind      string
	Format    string
}

// InitOptions configure system initialization. Extractor is empty unless the
// conversion reads a PDF.
type InitOptions struct {
	RunID     string
	Model     string
	OutputDir string
	Device    string
	Extractor string
	Kind      string
}

// Job is a single conversion.
type Job struct {
	RunID    string
	Kind     string
	Model    string
	Format   string
	PDFPath  string
	Pages    []int
	EPUBPath string
	Text     string
	Voice    string
	Speed    float64
}

// Result locates the files a conversion produced. PDF and text conversions
// yield an audio file and its manifest; EPUB conversions yield an archive.
type Result struct {
	AudioPath    string `json:"audio_path,omitempty"`
	ManifestPath string `json:"manifest_path,omitempty"`
	ArchivePath  string `json:"archive_path,omitempty"`
}

// Files lists the non-empty result paths.
func (r Result) Files() []string {
	var out []string
	for _, p := range []string{r.AudioPath, r.ManifestPath, r.ArchivePath} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Primary returns the path a user most likely wants: the audio file, or the
// archive for EPUB conversions.
func (r Result) Primary() string {
	if r.AudioPath != "" {
		return r.AudioPath
	}
	return r.ArchivePath
}

// Stage names a step of a conversion.
type Stage string

const (
	StageInstall    Stage = "install"
	StageInitialize Stage = "initialize"
	StageConvert    Stage = "convert"
	StageRemediate  Stage = "remediate"
	StageDetail     Stage = "detail"
)

// Event reports conversion progress.
type Event struct {
	Stage   Stage
	Message string
}

// Progress receives events. A nil Progress discards them.
type Progress func(Event)

func (p Progress) emit(stage Stage, msg string) {
	if p != nil {
		p(Event{Stage: stage, Message: msg})
	}
}
