package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	s := New()

	assert.Equal(t, KindPDF, s.Kind)
	assert.Equal(t, ModelKokoro10, s.Model)
	assert.Equal(t, ExtractorUnstructured, s.Extractor)
	assert.Equal(t, FormatMP3, s.Format)
	assert.Equal(t, DeviceAuto, s.Device)
	assert.Equal(t, DefaultOutputDir, s.OutputDir)
	assert.Equal(t, 1.0, s.Speed)
	assert.Empty(t, s.Voice)
	assert.Nil(t, s.Pages)
}

func TestValidatePDF(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.7"), 0o600))

	s := New()
	ok, reason := s.Validate()
	assert.False(t, ok)
	assert.Equal(t, "No PDF file selected", reason)

	s.PDFPath = filepath.Join(dir, "missing.pdf")
	ok, reason = s.Validate()
	assert.False(t, ok)
	assert.Contains(t, reason, "not found")
	assert.Contains(t, reason, "missing.pdf")

	s.PDFPath = pdf
	s.Extractor = ""
	ok, reason = s.Validate()
	assert.False(t, ok)
	assert.Equal(t, "No PDF extractor selected", reason)

	s.Extractor = ExtractorPyMuPDF
	ok, reason = s.Validate()
	assert.True(t, ok)
	assert.Equal(t, "Configuration valid", reason)
}

func TestValidateEPUBAndText(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "book.epub")
	require.NoError(t, os.WriteFile(book, []byte("PK"), 0o600))

	s := New()
	s.Kind = KindEPUB
	ok, reason := s.Validate()
	assert.False(t, ok)
	assert.Equal(t, "No EPUB file selected", reason)

	s.EPUBPath = filepath.Join(dir, "nope.epub")
	ok, reason = s.Validate()
	assert.False(t, ok)
	assert.Equal(t, "EPUB file not found: "+s.EPUBPath, reason)

	s.EPUBPath = book
	ok, _ = s.Validate()
	assert.True(t, ok)

	s.Kind = KindText
	ok, reason = s.Validate()
	assert.False(t, ok)
	assert.Equal(t, "No text input provided", reason)

	s.Text = "hello"
	ok, _ = s.Validate()
	assert.True(t, ok)
}

func TestValidateIgnoresOtherKinds(t *testing.T) {
	s := New()
	s.Kind = KindText
	s.Text = "spoken words"
	s.PDFPath = "/definitely/not/here.pdf"
	s.EPUBPath = "/definitely/not/here.epub"

	ok, _ := s.Validate()
	assert.True(t, ok)
}

func TestSetOutputDirCreatesParents(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "c")

	s := New()
	require.NoError(t, s.SetOutputDir(target))
	assert.Equal(t, target, s.OutputDir)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetOutputDirFailureKeepsPrevious(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := New()
	err := s.SetOutputDir(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.Equal(t, DefaultOutputDir, s.OutputDir)
}

func TestSetSpeed(t *testing.T) {
	s := New()

	require.NoError(t, s.SetSpeed("1.5"))
	assert.Equal(t, 1.5, s.Speed)
	assert.True(t, s.SpeedInRange())

	require.NoError(t, s.SetSpeed(" 3 "))
	assert.Equal(t, 3.0, s.Speed)
	assert.False(t, s.SpeedInRange())

	err := s.SetSpeed("fast")
	require.ErrorIs(t, err, ErrInvalidSpeed)
	assert.Equal(t, 3.0, s.Speed)
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.Pages = []int{1, 2}

	c := s.Clone()
	c.Pages[0] = 9
	c.Voice = "af_bella"

	assert.Equal(t, []int{1, 2}, s.Pages)
	assert.Empty(t, s.Voice)
}

func TestParseEnums(t *testing.T) {
	k, err := ParseKind("string")
	require.NoError(t, err)
	assert.Equal(t, KindText, k)
	assert.Equal(t, "string", k.PipelineID())
	assert.Equal(t, "pdf", KindPDF.PipelineID())

	_, err = ParseKind("docx")
	require.ErrorIs(t, err, ErrUnknownValue)

	m, err := ParseModel("silero_v5")
	require.NoError(t, err)
	assert.Equal(t, ModelSileroV5, m)
	assert.False(t, m.SupportsSpeed())

	_, err = ParseModel("kokoro_2.0")
	require.ErrorIs(t, err, ErrUnknownValue)

	_, err = ParseExtractor("tesseract")
	require.ErrorIs(t, err, ErrUnknownValue)

	_, err = ParseFormat("ogg")
	require.ErrorIs(t, err, ErrUnknownValue)

	d, err := ParseDevice("mps")
	require.NoError(t, err)
	assert.Equal(t, DeviceMPS, d)
}

func TestChoiceTables(t *testing.T) {
	m, ok := Lookup(ModelOptions, "4")
	assert.True(t, ok)
	assert.Equal(t, ModelQwen3VoiceDesign, m)

	_, ok = Lookup(ModelOptions, "8")
	assert.False(t, ok)

	_, ok = Lookup(KindOptions, "0")
	assert.False(t, ok)

	// every model in the table is a valid, distinct identifier
	seen := map[Model]bool{}
	for _, o := range ModelOptions {
		assert.True(t, o.Value.Valid(), o.Value)
		assert.False(t, seen[o.Value], "duplicate %s", o.Value)
		seen[o.Value] = true
	}
	assert.Len(t, seen, 7)
}
