package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/chainguard-dev/chainguard/internal/config"
	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/chainguard-dev/chainguard/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), input)
	}
}

func testManagerForGate(t *testing.T) *project.Manager {
	t.Helper()
	cfg := &config.Config{
		Storage:  config.StorageConfig{Home: t.TempDir(), ProjectCap: 10},
		Debounce: config.DebounceConfig{WindowMillis: 30},
	}
	mgr, err := project.NewManager(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return mgr
}

func TestScopeGateBlocksWithoutScope(t *testing.T) {
	mgr := testManagerForGate(t)
	dir := t.TempDir()

	orig, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(orig)
	require.NoError(t, os.Chdir(dir))

	gate := scopeGate(mgr)
	result := gate(context.Background(), "track_file")
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestScopeGatePassesOnceScopeSet(t *testing.T) {
	mgr := testManagerForGate(t)
	dir := t.TempDir()

	orig, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(orig)
	require.NoError(t, os.Chdir(dir))

	sess, err := mgr.Acquire(dir)
	require.NoError(t, err)
	sess.State.SetScope(model.NewScope("impl A", nil, nil, nil), model.ModeProgramming)
	sess.Release()

	gate := scopeGate(mgr)
	result := gate(context.Background(), "status")
	assert.Nil(t, result)
}
