package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from MetadataStatus
		to   MetadataStatus
		ok   bool
	}{
		{name: "pending to complete", from: StatusPending, to: StatusComplete, ok: true},
		{name: "pending to failed", from: StatusPending, to: StatusFailed, ok: true},
		{name: "pending to pending", from: StatusPending, to: StatusPending, ok: false},
		{name: "complete is terminal", from: StatusComplete, to: StatusFailed, ok: false},
		{name: "failed is terminal", from: StatusFailed, to: StatusComplete, ok: false},
		{name: "complete cannot regress", from: StatusComplete, to: StatusPending, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
}

func TestMetadataStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusComplete.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestMetadataStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusComplete.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, MetadataStatus("done").Valid())
	assert.False(t, MetadataStatus("").Valid())
}

func TestMetadataEmpty(t *testing.T) {
	assert.True(t, Metadata{}.Empty())

	title := "A Title"
	assert.False(t, Metadata{Title: &title}.Empty())
}
