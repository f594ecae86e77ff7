// Package session holds the conversion session record edited by the
// interactive console, along with its choice tables, page-range parsing and
// validation rules.
package session

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a persisted or typed identifier does not
// belong to its enumeration.
var ErrUnknownValue = errors.New("unknown value")

// Kind selects which input a conversion reads.
type Kind string

const (
	// KindPDF converts a PDF document.
	KindPDF Kind = "pdf"

	// KindEPUB converts an EPUB book into a per-chapter archive.
	KindEPUB Kind = "epub"

	// KindText converts a string typed at the prompt.
	KindText Kind = "text"
)

// ParseKind returns the kind for s. The legacy "string" identifier is
// accepted as an alias of KindText.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPDF, KindEPUB, KindText:
		return Kind(s), nil
	}
	if s == "string" {
		return KindText, nil
	}
	return "", fmt.Errorf("%w: conversion type %q", ErrUnknownValue, s)
}

// PipelineID is the identifier the conversion pipeline expects.
func (k Kind) PipelineID() string {
	if k == KindText {
		return "string"
	}
	return string(k)
}

// Label returns a human readable name.
func (k Kind) Label() string {
	switch k {
	case KindPDF:
		return "PDF"
	case KindEPUB:
		return "EPUB"
	case KindText:
		return "Text String"
	default:
		return string(k)
	}
}

// Model identifies a speech model.
type Model string

const (
	ModelKokoro10         Model = "kokoro_1.0"
	ModelKokoro09         Model = "kokoro_0.9"
	ModelQwen3CustomVoice Model = "qwen3_custom_voice"
	ModelQwen3VoiceDesign Model = "qwen3_voice_design"
	ModelQwen3Base        Model = "qwen3_base"
	ModelMaya1            Model = "maya1"
	ModelSileroV5         Model = "silero_v5"
)

// ParseModel returns the model for s.
func ParseModel(s string) (Model, error) {
	m := Model(s)
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("%w: tts model %q", ErrUnknownValue, s)
}

// Valid reports whether m is one of the known models.
func (m Model) Valid() bool {
	_, ok := modelLabels[m]
	return ok
}

// Label returns a human readable name.
func (m Model) Label() string {
	if l, ok := modelLabels[m]; ok {
		return l
	}
	return string(m)
}

// SupportsSpeed reports whether the model honours the speed setting.
func (m Model) SupportsSpeed() bool {
	switch m {
	case ModelKokoro10, ModelKokoro09, ModelQwen3CustomVoice, ModelQwen3VoiceDesign, ModelQwen3Base:
		return true
	default:
		return false
	}
}

var modelLabels = map[Model]string{
	ModelKokoro10:         "Kokoro v1.0",
	ModelKokoro09:         "Kokoro v0.9",
	ModelQwen3CustomVoice: "Qwen3-TTS Custom Voice",
	ModelQwen3VoiceDesign: "Qwen3-TTS Voice Design",
	ModelQwen3Base:        "Qwen3-TTS Base",
	ModelMaya1:            "Maya1",
	ModelSileroV5:         "Silero v5",
}

// Extractor identifies a PDF text extraction backend.
type Extractor string

const (
	ExtractorUnstructured Extractor = "unstructured"
	ExtractorPyMuPDF      Extractor = "pymupdf"
	ExtractorVision       Extractor = "vision"
	ExtractorNougat       Extractor = "nougat"
)

// ParseExtractor returns the extractor for s.
func ParseExtractor(s string) (Extractor, error) {
	switch e := Extractor(s); e {
	case ExtractorUnstructured, ExtractorPyMuPDF, ExtractorVision, ExtractorNougat:
		return e, nil
	}
	return "", fmt.Errorf("%w: pdf extractor %q", ErrUnknownValue, s)
}

// Label returns a human readable name.
func (e Extractor) Label() string {
	switch e {
	case ExtractorUnstructured:
		return "Unstructured"
	case ExtractorPyMuPDF:
		return "PyMuPDF"
	case ExtractorVision:
		return "Apple Vision"
	case ExtractorNougat:
		return "Nougat"
	default:
		return string(e)
	}
}

// Format is the audio container written by the pipeline.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// ParseFormat returns the format for s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatMP3, FormatWAV:
		return f, nil
	}
	return "", fmt.Errorf("%w: output format %q", ErrUnknownValue, s)
}

// Device is the compute device requested for model inference.
type Device string

const (
	DeviceAuto Device = "auto"
	DeviceCUDA Device = "cuda"
	DeviceCPU  Device = "cpu"
	DeviceMPS  Device = "mps"
)

// ParseDevice returns the device for s.
func ParseDevice(s string) (Device, error) {
	switch d := Device(s); d {
	case DeviceAuto, DeviceCUDA, DeviceCPU, DeviceMPS:
		return d, nil
	}
	return "", fmt.Errorf("%w: device %q", ErrUnknownValue, s)
}
