package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]RequestStatus{
		"pending":     StatusPending,
		"InProgress":  StatusInProgress,
		"in progress": StatusInProgress,
		"in-progress": StatusInProgress,
		"COMPLETED":   StatusCompleted,
		"4":           StatusCancelled,
		" 1 ":         StatusPending,
	}
	for in, want := range cases {
		got, ok := ParseStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "5", "0", "done", "-1"} {
		_, ok := ParseStatus(bad)
		assert.False(t, ok, bad)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, RequestStatus("archived").Valid())
	assert.Equal(t, 3, StatusCompleted.Code())
	assert.Equal(t, 0, RequestStatus("archived").Code())
}
