package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModeKnownValues(t *testing.T) {
	assert.Equal(t, ModeContent, ParseMode("content"))
	assert.Equal(t, ModeContent, ParseMode("  CONTENT  "))
	assert.Equal(t, ModeDevops, ParseMode("devops"))
	assert.Equal(t, ModeResearch, ParseMode("research"))
	assert.Equal(t, ModeGeneric, ParseMode("generic"))
}

func TestParseModeUnknownFallsBackToProgramming(t *testing.T) {
	assert.Equal(t, ModeProgramming, ParseMode("not-a-real-mode"))
	assert.Equal(t, ModeProgramming, ParseMode(""))
}

func TestFeaturesProgrammingEnablesEnforcement(t *testing.T) {
	f := Features(ModeProgramming)
	assert.True(t, f.SyntaxValidation)
	assert.True(t, f.DBEnforcement)
	assert.True(t, f.HTTPEnforcement)
	assert.True(t, f.ScopeEnforcement)
	assert.False(t, f.WordCount)
}

func TestFeaturesContentDisablesCodeEnforcement(t *testing.T) {
	f := Features(ModeContent)
	assert.False(t, f.SyntaxValidation)
	assert.False(t, f.DBEnforcement)
	assert.True(t, f.WordCount)
	assert.True(t, f.ChapterTracking)
}

func TestPreambleVariesByMode(t *testing.T) {
	assert.NotEqual(t, Preamble(ModeProgramming), Preamble(ModeContent))
	assert.NotEmpty(t, Preamble(ModeGeneric))
}
