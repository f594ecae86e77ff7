package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInterpreter answers the bridge protocol from a shell script. It ignores
// the arguments the bridge passes to python and switches on FAKE_MODE.
const fakeInterpreter = `#!/bin/sh
while IFS= read -r line; do
  id=$(printf '%s\n' "$line" | sed 's/^{"id":"\([^"]*\)".*/\1/')
  op=$(printf '%s\n' "$line" | sed 's/.*"op":"\([^"]*\)".*/\1/')
  case "$FAKE_MODE:$op" in
  exit:*)
    echo "Traceback (most recent call last):" >&2
    echo "ImportError: no module named tts_lib" >&2
    exit 3 ;;
  hang:run)
    exec sleep 30 ;;
  incompatible:run)
    printf '{"id":"%s","ok":false,"error":{"kind":"incompatible","type":"AttributeError","message":"module torch has no attribute xpu","trace":"Traceback: torch"}}\n' "$id" ;;
  failure:init)
    printf '{"id":"%s","ok":false,"error":{"kind":"failure","type":"ValueError","message":"unknown device"}}\n' "$id" ;;
  empty:run)
    printf '{"id":"%s","ok":true,"result":{}}\n' "$id" ;;
  *:run)
    echo "loading weights" >&2
    printf '{"event":"stage","message":"Converting"}\n'
    printf 'plain output\n'
    printf '{"event":"detail","message":"Wrote out.mp3"}\n'
    printf '{"id":"%s","ok":true,"result":{"audio_path":"out.mp3","manifest_path":"out.json"}}\n' "$id" ;;
  *)
    printf '{"event":"stage","message":"%s"}\n' "$op"
    printf '{"id":"%s","ok":true,"result":{}}\n' "$id" ;;
  esac
done
`

func fakeBridge(t *testing.T, mode string) *Bridge {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte(fakeInterpreter), 0o755))

	b := NewBridge(path)
	b.Env = []string{"FAKE_MODE=" + mode}
	return b
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

func TestBridgeRun(t *testing.T) {
	b := fakeBridge(t, "ok")
	ctx := context.Background()

	var events []Event
	progress := func(e Event) { events = append(events, e) }

	require.NoError(t, b.InstallDependencies(ctx, Requirements{RunID: "r", Model: "kokoro_1.0", Kind: "string", Format: "mp3"}, progress))

	sys, err := b.Initialize(ctx, InitOptions{RunID: "r", Model: "kokoro_1.0", OutputDir: "files", Device: "auto", Kind: "string"}, progress)
	require.NoError(t, err)
	defer sys.Close()

	res, err := sys.Run(ctx, Job{RunID: "r", Kind: "string", Model: "kokoro_1.0", Format: "mp3", Text: "hi"}, progress)
	require.NoError(t, err)
	assert.Equal(t, Result{AudioPath: "out.mp3", ManifestPath: "out.json"}, res)
	assert.Equal(t, []string{"out.mp3", "out.json"}, res.Files())

	assert.Contains(t, events, Event{Stage: StageInstall, Message: "install"})
	assert.Contains(t, events, Event{Stage: StageInitialize, Message: "init"})
	assert.Contains(t, events, Event{Stage: StageConvert, Message: "Converting"})
	assert.Contains(t, events, Event{Stage: StageDetail, Message: "Wrote out.mp3"})
	assert.NoError(t, sys.Close())
}

func TestBridgeIncompatible(t *testing.T) {
	b := fakeBridge(t, "incompatible")
	ctx := context.Background()

	sys, err := b.Initialize(ctx, InitOptions{RunID: "r"}, nil)
	require.NoError(t, err)
	defer sys.Close()

	_, err = sys.Run(ctx, Job{RunID: "r", Kind: "pdf"}, nil)
	require.Error(t, err)
	assert.True(t, IsIncompatible(err))
	assert.Equal(t, "Traceback: torch", TraceOf(err))
	assert.Contains(t, err.Error(), "AttributeError: module torch has no attribute xpu")
}

func TestBridgeInitFailure(t *testing.T) {
	b := fakeBridge(t, "failure")

	_, err := b.Initialize(context.Background(), InitOptions{RunID: "r"}, nil)
	require.Error(t, err)
	assert.Equal(t, ErrorCodeFailure, CodeOf(err))
	assert.Contains(t, err.Error(), "ValueError: unknown device")
}

func TestBridgeMissingResultPaths(t *testing.T) {
	b := fakeBridge(t, "empty")
	ctx := context.Background()

	sys, err := b.Initialize(ctx, InitOptions{RunID: "r"}, nil)
	require.NoError(t, err)
	defer sys.Close()

	_, err = sys.Run(ctx, Job{RunID: "r", Kind: "epub"}, nil)
	assert.Equal(t, ErrorCodeProtocol, CodeOf(err))
}

func TestBridgeExited(t *testing.T) {
	b := fakeBridge(t, "exit")

	err := b.InstallDependencies(context.Background(), Requirements{RunID: "r"}, nil)
	require.Error(t, err)
	assert.Equal(t, ErrorCodeUnavailable, CodeOf(err))
	assert.ErrorIs(t, err, ErrBridgeExited)
	assert.Contains(t, err.Error(), "ImportError: no module named tts_lib")
}

func TestBridgeCanceled(t *testing.T) {
	b := fakeBridge(t, "hang")

	sys, err := b.Initialize(context.Background(), InitOptions{RunID: "r"}, nil)
	require.NoError(t, err)
	defer sys.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = sys.Run(ctx, Job{RunID: "r", Kind: "string"}, nil)
	require.Error(t, err)
	assert.Equal(t, ErrorCodeTimeout, CodeOf(err))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestBridgeUnavailable(t *testing.T) {
	b := NewBridge(filepath.Join(t.TempDir(), "no-such-python"))

	err := b.InstallDependencies(context.Background(), Requirements{}, nil)
	assert.Equal(t, ErrorCodeUnavailable, CodeOf(err))
}

func TestLineTail(t *testing.T) {
	tail := newLineTail(2)
	for _, l := range []string{"a", "b", "c"} {
		tail.add(l)
	}
	assert.Equal(t, "b\nc", tail.String())
}

func TestBridgeScriptEmbedded(t *testing.T) {
	for _, op := range []string{"op_install", "op_init", "op_run"} {
		assert.True(t, strings.Contains(bridgeScript, "def "+op), op)
	}
}
