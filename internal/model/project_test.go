package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectState(t *testing.T) {
	ps := New("abc123", "myproject", "/tmp/myproject")

	assert.Equal(t, "abc123", ps.ProjectID)
	assert.Equal(t, "myproject", ps.ProjectName)
	assert.Equal(t, ModeProgramming, ps.Mode)
	assert.Equal(t, PhaseUnknown, ps.Phase)
	assert.NotNil(t, ps.CriteriaStatus)
	assert.NotNil(t, ps.ChecklistResults)
	assert.False(t, ps.ValidationPending)
}

func TestPushChangedFileCap(t *testing.T) {
	ps := New("id", "name", "/tmp")
	for i := 0; i < ChangedFilesCap+5; i++ {
		ps.PushChangedFile("file.go")
	}
	assert.Len(t, ps.ChangedFiles, ChangedFilesCap)
}

func TestPushOutOfScopeFileCap(t *testing.T) {
	ps := New("id", "name", "/tmp")
	for i := 0; i < OutOfScopeCap+5; i++ {
		ps.PushOutOfScopeFile("file.go")
	}
	assert.Len(t, ps.OutOfScopeFiles, OutOfScopeCap)
}

func TestUnacknowledgedBlockingAlerts(t *testing.T) {
	ps := New("id", "name", "/tmp")
	ps.AddAlert("blocking one", SeverityBlocking)
	ps.AddAlert("just a warning", SeverityWarn)
	ps.AddAlert("blocking two", SeverityBlocking)

	blocking := ps.UnacknowledgedBlockingAlerts()
	require.Len(t, blocking, 2)

	n := ps.AcknowledgeAlerts()
	assert.Equal(t, 3, n)
	assert.Empty(t, ps.UnacknowledgedBlockingAlerts())
}

func TestSchemaFreshness(t *testing.T) {
	ps := New("id", "name", "/tmp")
	assert.False(t, ps.IsSchemaChecked(10*time.Minute, time.Now()))

	now := time.Now()
	ps.DBSchemaCheckedAt = &now
	assert.True(t, ps.IsSchemaChecked(10*time.Minute, now.Add(1*time.Minute)))
	assert.False(t, ps.IsSchemaChecked(10*time.Minute, now.Add(11*time.Minute)))

	ps.InvalidateSchemaCheck()
	assert.False(t, ps.IsSchemaChecked(10*time.Minute, now.Add(1*time.Minute)))
}

func TestSetScopeResetsScopeLocalState(t *testing.T) {
	ps := New("id", "name", "/tmp")
	ps.ValidationPending = true
	ps.HTTPTestsPerformed = 3
	ps.ImpactCheckPending = true
	ps.HTTPCredentials = map[string]string{"user": "x"}

	scope := NewScope("do a thing", []string{"src/**"}, []string{"criterion 1"}, nil)
	ps.SetScope(scope, ModeDevops)

	assert.Equal(t, ModeDevops, ps.Mode)
	assert.Equal(t, 0, ps.HTTPTestsPerformed)
	assert.False(t, ps.ImpactCheckPending)
	assert.False(t, ps.ValidationPending)
	assert.Nil(t, ps.HTTPCredentials)
	assert.False(t, ps.CriteriaStatus["criterion 1"])
}

func TestClearScope(t *testing.T) {
	ps := New("id", "name", "/tmp")
	scope := NewScope("do a thing", []string{"src/**"}, nil, nil)
	ps.SetScope(scope, ModeProgramming)
	ps.ValidationPending = true
	ps.ImpactCheckPending = true
	ps.HTTPCredentials = map[string]string{"user": "x"}

	ps.ClearScope()

	assert.Nil(t, ps.Scope)
	assert.Nil(t, ps.HTTPCredentials)
	assert.Equal(t, 0, ps.HTTPTestsPerformed)
	assert.False(t, ps.ImpactCheckPending)
	assert.False(t, ps.ValidationPending)
}
