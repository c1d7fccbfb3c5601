package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewScopeTruncatesOverlongDescription(t *testing.T) {
	long := strings.Repeat("x", MaxScopeDescriptionLen+50)
	scope := NewScope(long, nil, nil, nil)

	assert.Len(t, scope.Description, MaxScopeDescriptionLen)
	assert.True(t, scope.DescriptionTruncated)
}

func TestNewScopeLeavesShortDescriptionAlone(t *testing.T) {
	scope := NewScope("short description", nil, nil, nil)
	assert.Equal(t, "short description", scope.Description)
	assert.False(t, scope.DescriptionTruncated)
}

func TestScopeMatches(t *testing.T) {
	scope := NewScope("impl A", []string{"src/auth/**", "cmd/*.go"}, nil, nil)

	assert.True(t, scope.Matches("src/auth/login.go"))
	assert.True(t, scope.Matches("cmd/main.go"))
	assert.False(t, scope.Matches("src/billing/invoice.go"))
}

func TestScopeMatchesEmptyModuleListMatchesNothing(t *testing.T) {
	scope := NewScope("impl A", nil, nil, nil)
	assert.False(t, scope.Matches("anything.go"))
}

func TestScopeMatchesNilReceiver(t *testing.T) {
	var scope *ScopeDefinition
	assert.False(t, scope.Matches("anything.go"))
}
