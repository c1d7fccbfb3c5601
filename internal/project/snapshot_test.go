package project

import (
	"testing"
	"time"

	"github.com/chainguard-dev/chainguard/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildSnapshotCarriesBlockingAlertsOnly(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	ps.AddAlert("blocking one", model.SeverityBlocking)
	ps.AddAlert("just a warning", model.SeverityWarn)

	snap := buildSnapshot(ps, 600)
	assert.Equal(t, []string{"blocking one"}, snap.BlockingAlerts)
	assert.Equal(t, 600, snap.SchemaCheckTTLSeconds)
	assert.False(t, snap.HasScope)
}

func TestBuildSnapshotHasScopeTracksScopePresence(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	scope := model.NewScope("impl A", []string{"src/**"}, nil, nil)
	ps.SetScope(scope, model.ModeProgramming)

	snap := buildSnapshot(ps, 600)
	assert.True(t, snap.HasScope)
}

func TestBuildSnapshotWrittenAtIsFresh(t *testing.T) {
	ps := model.New("id", "name", "/tmp")
	before := time.Now()
	snap := buildSnapshot(ps, 600)
	after := time.Now()

	assert.False(t, snap.WrittenAt.Before(before))
	assert.False(t, snap.WrittenAt.After(after))
}
