package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", NewError(ErrorCodeFailure, "", "boom", nil), "PIPELINE_FAILURE: boom"},
		{"with op", NewError(ErrorCodeFailure, "run", "boom", nil), "PIPELINE_FAILURE: run: boom"},
		{"cause only", NewError(ErrorCodeCanceled, "run", "", context.Canceled), "CANCELED: run: context canceled"},
		{"message and cause", NewError(ErrorCodeUnavailable, "start", "no python", ErrBridgeExited), "UNAVAILABLE: start: no python: conversion bridge exited unexpectedly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorInspection(t *testing.T) {
	e := NewError(ErrorCodeIncompatible, "init", "AttributeError", nil)
	e.Trace = "Traceback"
	wrapped := fmt.Errorf("dispatch: %w", e)

	assert.Equal(t, ErrorCodeIncompatible, CodeOf(wrapped))
	assert.Equal(t, "Traceback", TraceOf(wrapped))
	assert.True(t, IsIncompatible(wrapped))

	plain := errors.New("plain")
	assert.Equal(t, ErrorCode(""), CodeOf(plain))
	assert.Empty(t, TraceOf(plain))
	assert.False(t, IsIncompatible(plain))
}

func TestErrorUnwrap(t *testing.T) {
	err := NewError(ErrorCodeTimeout, "run", "", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubprocessManager(t *testing.T) {
	sm := NewSubprocessManager(time.Second)

	_, err := sm.Execute(context.Background(), "definitely-not-a-command-ttscli")
	assert.Error(t, err)

	_, err = CheckBinary("definitely-not-a-command-ttscli")
	assert.Error(t, err)
}

func TestSubprocessManagerCanceled(t *testing.T) {
	sm := NewSubprocessManager(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sm.Execute(ctx, "sleep", "1")
	assert.Equal(t, ErrorCodeCanceled, CodeOf(err))
}

func TestSubprocessManagerTimeout(t *testing.T) {
	tests := []struct {
		name    string
		manager time.Duration
		caller  time.Duration
		want    string
	}{
		{"default timeout", 200 * time.Millisecond, 0, "timed out after 200ms"},
		{"caller deadline", time.Hour, 200 * time.Millisecond, "timed out after 200ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewSubprocessManager(tt.manager)
			ctx := context.Background()
			if tt.caller > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.caller)
				defer cancel()
			}

			_, err := sm.Execute(ctx, "sleep", "5")
			require.Error(t, err)
			assert.Equal(t, ErrorCodeTimeout, CodeOf(err))
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, err.Error(), "1h0m0s")
		})
	}
}

func TestSystemDependenciesReport(t *testing.T) {
	deps := NewSystemDependencies()
	deps.AddChecker("a", staticChecker{Name: "python3", Required: true, Installed: true, Path: "/usr/bin/python3", Version: "3.11.4"})
	deps.AddChecker("b", staticChecker{Name: "tts_lib", Required: true, Instructions: "pip install tts_lib"})
	deps.AddChecker("c", staticChecker{Name: "ffmpeg", Instructions: "brew install ffmpeg"})

	err := deps.CheckAll(context.Background())
	assert.ErrorIs(t, err, ErrMissingDependencies)
	assert.Contains(t, err.Error(), "tts_lib")

	report := deps.Report()
	assert.Contains(t, report, "/usr/bin/python3 3.11.4")
	assert.Contains(t, report, "Not found\n")
	assert.Contains(t, report, "pip install tts_lib")
	assert.Contains(t, report, "Not found (optional)")
	assert.Less(t, strings.Index(report, "python3"), strings.Index(report, "ffmpeg"))
}

type staticChecker DependencyStatus

func (c staticChecker) Check(context.Context) DependencyStatus {
	return DependencyStatus(c)
}
