package validatesyntax

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUnknownExtensionIsSkippedNotFailed(t *testing.T) {
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	result := v.Validate(context.Background(), path)
	assert.True(t, result.Skipped)
	assert.False(t, result.Valid)
}

func TestValidateJSONValid(t *testing.T) {
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	result := v.Validate(context.Background(), path)
	assert.True(t, result.Valid)
	assert.False(t, result.Skipped)
}

func TestValidateJSONInvalid(t *testing.T) {
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": `), 0o644))

	result := v.Validate(context.Background(), path)
	assert.False(t, result.Valid)
	assert.False(t, result.Skipped)
	assert.NotEmpty(t, result.Message)
}

func TestValidatePHPSkipsWhenInterpreterMissing(t *testing.T) {
	if _, err := exec.LookPath("php"); err == nil {
		t.Skip("php is installed; this test covers the missing-binary fallback path")
	}
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "index.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php echo 1;"), 0o644))

	result := v.Validate(context.Background(), path)
	assert.True(t, result.Skipped)
}

func TestValidatePHPDetectsSyntaxError(t *testing.T) {
	if _, err := exec.LookPath("php"); err != nil {
		t.Skip("php not found on PATH")
	}
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php echo 'unterminated"), 0o644))

	result := v.Validate(context.Background(), path)
	assert.False(t, result.Valid)
	assert.False(t, result.Skipped)
}

func TestValidatePHPValid(t *testing.T) {
	if _, err := exec.LookPath("php"); err != nil {
		t.Skip("php not found on PATH")
	}
	v := New(5 * time.Second)
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php echo 'hi';"), 0o644))

	result := v.Validate(context.Background(), path)
	assert.True(t, result.Valid)
}
