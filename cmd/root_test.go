package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stopCounter struct{ stops int }

func (s *stopCounter) Stop() { s.stops++ }

func TestShutdownAfterFailedCommand(t *testing.T) {
	sc := &stopCounter{}
	profiler = sc
	logger = zap.NewNop()
	t.Cleanup(func() { profiler, logger = nil, nil })

	// Execute calls shutdown whether or not the command returned an error
	shutdown()
	shutdown()
	assert.Equal(t, 1, sc.stops)
	assert.Nil(t, profiler)
}
