package pipeline

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

//go:embed bridge.py
var bridgeScript string

// DefaultPython is the interpreter used when none is configured.
const DefaultPython = "python3"

// eventDetail marks a progress line that adds to the current stage rather
// than starting a new one.
const eventDetail = "detail"

const (
	maxLineSize    = 4 << 20
	stderrTailSize = 20
	closeTimeout   = 5 * time.Second
)

// Bridge is the production Pipeline. Each call starts the configured Python
// interpreter with an embedded driver script and exchanges one JSON request
// and reply per line over stdin and stdout; the driver also writes progress
// lines. Whatever the pipeline prints ends up in the log.
type Bridge struct {
	// Python is the interpreter that can import tts_lib.
	Python string

	// Env is appended to the inherited environment.
	Env []string
}

// NewBridge returns a bridge using python, or DefaultPython if empty.
func NewBridge(python string) *Bridge {
	if python == "" {
		python = DefaultPython
	}
	return &Bridge{Python: python}
}

type installParams struct {
	TTSModel       string `json:"tts_model"`
	PDFExtractor   string `json:"pdf_extractor"`
	ConversionType string `json:"conversion_type"`
	OutFormat      string `json:"out_format"`
}

type initParams struct {
	TTSModel       string `json:"tts_model"`
	OutputDir      string `json:"output_dir"`
	Device         string `json:"device"`
	PDFExtractor   string `json:"pdf_extractor,omitempty"`
	ConversionType string `json:"conversion_type"`
}

type runParams struct {
	ConversionType string  `json:"conversion_type"`
	TTSModel       string  `json:"tts_model"`
	OutFormat      string  `json:"out_format"`
	PDFPath        string  `json:"pdf_path,omitempty"`
	PDFPages       []int   `json:"pdf_pages"`
	EPUBPath       string  `json:"epub_path,omitempty"`
	Text           string  `json:"text,omitempty"`
	Voice          string  `json:"voice,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// InstallDependencies implements Pipeline.
func (b *Bridge) InstallDependencies(ctx context.Context, req Requirements, progress Progress) error {
	p, err := b.start(req.RunID)
	if err != nil {
		return err
	}
	defer p.close()

	_, err = p.call(ctx, "install", installParams{
		TTSModel:       req.Model,
		PDFExtractor:   req.Extractor,
		ConversionType: req.Kind,
		OutFormat:      req.Format,
	}, progress, StageInstall)
	return err
}

// Initialize implements Pipeline. The returned System keeps the bridge
// process, and with it the loaded model, alive until Close.
func (b *Bridge) Initialize(ctx context.Context, opts InitOptions, progress Progress) (System, error) {
	p, err := b.start(opts.RunID)
	if err != nil {
		return nil, err
	}

	_, err = p.call(ctx, "init", initParams{
		TTSModel:       opts.Model,
		OutputDir:      opts.OutputDir,
		Device:         opts.Device,
		PDFExtractor:   opts.Extractor,
		ConversionType: opts.Kind,
	}, progress, StageInitialize)
	if err != nil {
		p.close()
		return nil, err
	}
	return &bridgeSystem{proc: p}, nil
}

type bridgeSystem struct {
	proc *bridgeProc
}

func (s *bridgeSystem) Run(ctx context.Context, job Job, progress Progress) (Result, error) {
	raw, err := s.proc.call(ctx, "run", runParams{
		ConversionType: job.Kind,
		TTSModel:       job.Model,
		OutFormat:      job.Format,
		PDFPath:        job.PDFPath,
		PDFPages:       job.Pages,
		EPUBPath:       job.EPUBPath,
		Text:           job.Text,
		Voice:          job.Voice,
		Speed:          job.Speed,
	}, progress, StageConvert)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, NewError(ErrorCodeProtocol, "run", "malformed result", err)
	}
	if (job.Kind == "epub" && res.ArchivePath == "") || (job.Kind != "epub" && res.AudioPath == "") {
		return Result{}, NewError(ErrorCodeProtocol, "run", "result is missing output paths: "+string(raw), nil)
	}
	return res, nil
}

func (s *bridgeSystem) Close() error {
	return s.proc.close()
}

type request struct {
	ID     string `json:"id"`
	Op     string `json:"op"`
	Params any    `json:"params"`
}

type reply struct {
	Event   string          `json:"event"`
	Message string          `json:"message"`
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Result  json.RawMessage `json:"result"`
	Error   *remoteError    `json:"error"`
}

type remoteError struct {
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

func (r *remoteError) toError(op string) error {
	if r == nil {
		return NewError(ErrorCodeProtocol, op, "failed without an error description", nil)
	}
	code := ErrorCodeFailure
	switch r.Kind {
	case "incompatible":
		code = ErrorCodeIncompatible
	case "canceled":
		code = ErrorCodeCanceled
	}
	msg := r.Message
	if r.Type != "" {
		msg = r.Type + ": " + msg
	}
	e := NewError(code, op, msg, nil)
	e.Trace = r.Trace
	return e
}

type bridgeProc struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan []byte
	tail  *lineTail
	runID string
	seq   int

	quit      chan struct{}
	exited    chan struct{}
	waitErr   error
	closeOnce sync.Once
}

func (b *Bridge) start(runID string) (*bridgeProc, error) {
	python := b.Python
	if python == "" {
		python = DefaultPython
	}

	cmd := exec.Command(python, "-u", "-c", bridgeScript) //nolint:gosec
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1", "PYTHONIOENCODING=utf-8")
	cmd.Env = append(cmd.Env, b.Env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, NewError(ErrorCodeUnavailable, "start", "failed to create stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, NewError(ErrorCodeUnavailable, "start", "failed to create stdout pipe", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, NewError(ErrorCodeUnavailable, "start", "failed to create stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, NewError(ErrorCodeUnavailable, "start", "unable to start "+python, err)
	}
	log.Debug("Bridge started", "python", python, "pid", cmd.Process.Pid, "run", runID)

	p := &bridgeProc{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan []byte, 16),
		tail:   newLineTail(stderrTailSize),
		runID:  runID,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		defer close(p.lines)
		p.readStdout(stdout)
	}()
	go func() {
		defer readers.Done()
		p.readStderr(stderr)
	}()
	go func() {
		readers.Wait()
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	return p, nil
}

func (p *bridgeProc) readStdout(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := append([]byte(nil), sc.Bytes()...)
		select {
		case p.lines <- line:
		case <-p.quit:
			// keep draining so the process never blocks on a full pipe
		}
	}
}

func (p *bridgeProc) readStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Text()
		p.tail.add(line)
		log.Debug("bridge", "run", p.runID, "stderr", line)
	}
}

func (p *bridgeProc) call(ctx context.Context, op string, params any, progress Progress, stage Stage) (json.RawMessage, error) {
	p.seq++
	id := fmt.Sprintf("%s/%d", p.runID, p.seq)

	b, err := json.Marshal(request{ID: id, Op: op, Params: params})
	if err != nil {
		return nil, NewError(ErrorCodeProtocol, op, "unable to encode request", err)
	}
	if _, err := p.stdin.Write(append(b, '\n')); err != nil {
		return nil, p.exitError(op, err)
	}

	for {
		select {
		case <-ctx.Done():
			p.kill()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, NewError(ErrorCodeTimeout, op, "", ctx.Err())
			}
			return nil, NewError(ErrorCodeCanceled, op, "", ctx.Err())

		case line, ok := <-p.lines:
			if !ok {
				return nil, p.exitError(op, nil)
			}

			var r reply
			if err := json.Unmarshal(line, &r); err != nil {
				log.Debug("Ignoring bridge output", "run", p.runID, "line", string(line))
				continue
			}
			switch r.Event {
			case "":
			case eventDetail:
				progress.emit(StageDetail, r.Message)
				continue
			default:
				progress.emit(stage, r.Message)
				continue
			}
			if r.ID != id {
				log.Warn("Unexpected bridge reply", "want", id, "got", r.ID)
				continue
			}
			if !r.OK {
				return nil, r.Error.toError(op)
			}
			return r.Result, nil
		}
	}
}

// exitError describes a bridge that went away mid-call, including the last
// lines it wrote to stderr.
func (p *bridgeProc) exitError(op string, cause error) error {
	var waitErr error
	select {
	case <-p.exited:
		waitErr = p.waitErr
	case <-time.After(closeTimeout):
	}

	if cause == nil {
		cause = ErrBridgeExited
		if waitErr != nil {
			cause = fmt.Errorf("%w: %v", ErrBridgeExited, waitErr)
		}
	}
	msg := "bridge stopped responding"
	if t := p.tail.String(); t != "" {
		msg += "\n" + t
	}
	return NewError(ErrorCodeUnavailable, op, msg, cause)
}

func (p *bridgeProc) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// close ends the bridge: stdin is closed so the driver exits on its own,
// and the process is killed if it is still around after closeTimeout.
func (p *bridgeProc) close() error {
	p.closeOnce.Do(func() {
		close(p.quit)
		_ = p.stdin.Close()

		select {
		case <-p.exited:
		case <-time.After(closeTimeout):
			p.kill()
			<-p.exited
		}
		log.Debug("Bridge stopped", "run", p.runID, "error", p.waitErr)
	})
	return nil
}

// lineTail keeps the last n lines written to it.
type lineTail struct {
	mu    sync.Mutex
	n     int
	lines []string
}

func newLineTail(n int) *lineTail {
	return &lineTail{n: n}
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
