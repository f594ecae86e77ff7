package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svm0n/ttscli/internal/session"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	s := session.New()
	s.Kind = session.KindEPUB
	s.Model = session.ModelQwen3Base
	s.Extractor = session.ExtractorNougat
	s.Format = session.FormatWAV
	s.Device = session.DeviceCUDA
	s.OutputDir = "/tmp/audiobooks"
	s.Voice = "Vivian"
	s.Speed = 1.25
	s.PDFPath = "/books/doc.pdf"
	s.Pages = []int{1, 2}
	s.EPUBPath = "/books/book.epub"
	s.Text = "not persisted"

	require.NoError(t, Save(path, s))

	fresh := session.New()
	found, err := Load(path, fresh)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, session.KindEPUB, fresh.Kind)
	assert.Equal(t, session.ModelQwen3Base, fresh.Model)
	assert.Equal(t, session.ExtractorNougat, fresh.Extractor)
	assert.Equal(t, session.FormatWAV, fresh.Format)
	assert.Equal(t, session.DeviceCUDA, fresh.Device)
	assert.Equal(t, "/tmp/audiobooks", fresh.OutputDir)
	assert.Equal(t, "Vivian", fresh.Voice)
	assert.Equal(t, 1.25, fresh.Speed)

	// per-run input stays at its defaults
	assert.Empty(t, fresh.PDFPath)
	assert.Nil(t, fresh.Pages)
	assert.Empty(t, fresh.EPUBPath)
	assert.Empty(t, fresh.Text)
}

func TestSaveWritesDurableKeysOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s := session.New()
	s.PDFPath = "/books/doc.pdf"
	s.Text = "hello"
	require.NoError(t, Save(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"conversion_type", "tts_model", "pdf_extractor", "output_format",
		"device", "output_dir", "voice", "speed",
	}, keys)
	assert.Nil(t, fields["voice"])
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"tts_model":"maya1","legacy":"x"}`), 0o600))

	require.NoError(t, Save(path, session.New()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "legacy")
	assert.Contains(t, string(data), `"kokoro_1.0"`)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadMissingFile(t *testing.T) {
	s := session.New()
	before := s.Clone()

	found, err := Load(filepath.Join(t.TempDir(), "absent.json"), s)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, s)
}

func TestLoadPartialAndUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `{"tts_model": "silero_v5", "speed": 0.75, "theme": "dark", "pdf_path": "/x.pdf"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s := session.New()
	found, err := Load(path, s)
	require.NoError(t, err)
	assert.True(t, found)

	assert.Equal(t, session.ModelSileroV5, s.Model)
	assert.Equal(t, 0.75, s.Speed)
	assert.Equal(t, session.KindPDF, s.Kind)
	assert.Equal(t, session.DefaultOutputDir, s.OutputDir)
	assert.Empty(t, s.PDFPath, "per-run fields are never loaded")
}

func TestLoadLegacyStringKindAndNullVoice(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"conversion_type":"string","voice":null}`), 0o600))

	s := session.New()
	s.Voice = "af_sky"
	_, err := Load(path, s)
	require.NoError(t, err)
	assert.Equal(t, session.KindText, s.Kind)
	assert.Empty(t, s.Voice)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{"tts_model":`},
		{"not an object", `["pdf"]`},
		{"unknown model", `{"tts_model":"kokoro_9"}`},
		{"speed as string", `{"speed":"fast"}`},
		{"empty output dir", `{"output_dir":""}`},
		{"bad device among good keys", `{"tts_model":"maya1","device":"tpu"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			s := session.New()
			before := s.Clone()
			found, err := Load(path, s)
			assert.True(t, found)
			require.ErrorIs(t, err, ErrInvalidFile)
			assert.Equal(t, before, s, "rejected files must not be partially applied")
		})
	}
}

func TestSchemaAcceptsEveryMenuValue(t *testing.T) {
	for _, o := range session.ModelOptions {
		s := session.New()
		require.NoError(t, Decode([]byte(`{"tts_model":"`+string(o.Value)+`"}`), s), o.Value)
		assert.Equal(t, o.Value, s.Model)
	}
	for _, o := range session.ExtractorOptions {
		s := session.New()
		require.NoError(t, Decode([]byte(`{"pdf_extractor":"`+string(o.Value)+`"}`), s), o.Value)
	}
	for _, o := range session.DeviceOptions {
		s := session.New()
		require.NoError(t, Decode([]byte(`{"device":"`+string(o.Value)+`"}`), s), o.Value)
	}
	for _, o := range session.KindOptions {
		s := session.New()
		require.NoError(t, Decode([]byte(`{"conversion_type":"`+string(o.Value)+`"}`), s), o.Value)
	}
}

func TestStoreWatcherIgnoresOwnSaves(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(filepath.Join(dir, FileName))
	require.NoError(t, err)

	w, err := st.Watch()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, st.Save(session.New()))
	assert.Never(t, w.Pending, 4*watchDebounce, 25*time.Millisecond)

	// an outside edit is reported once
	require.NoError(t, os.WriteFile(st.Path(), []byte(`{"device":"cpu"}`), 0o600))
	require.Eventually(t, func() bool { return w.Changes() > 0 }, 5*time.Second, 25*time.Millisecond)
	assert.True(t, w.Pending())
	assert.False(t, w.Pending())

	s := session.New()
	found, err := st.Load(s)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, session.DeviceCPU, s.Device)
}

func TestNilWatcher(t *testing.T) {
	var w *Watcher
	assert.False(t, w.Pending())
	assert.NoError(t, w.Close())
}
