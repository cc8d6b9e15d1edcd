package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessorChain(t *testing.T) {
	chain := []SessionState{
		StateArrival, StateBreathing, StateIntention,
		StateCardSelection, StateSharing, StateClosing,
	}

	for i := 0; i < len(chain)-1; i++ {
		next, ok := chain[i].Successor()
		assert.True(t, ok)
		assert.Equal(t, chain[i+1], next)
	}

	// CLOSING 是終態
	_, ok := StateClosing.Successor()
	assert.False(t, ok)
}

func TestStateValid(t *testing.T) {
	assert.True(t, StateArrival.Valid())
	assert.True(t, StateClosing.Valid())
	assert.False(t, SessionState("LUNCH").Valid())
}
