package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"eqcoach/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunJourneyWithoutModel(t *testing.T) {
	journeys := services.NewJourneyService(services.JourneyDeps{Log: zap.NewNop()})

	input := strings.Join([]string{
		"ready",
		"I feel calm but a little stressed about work",
		"",
		"I was frustrated when a deadline moved",
		"I usually take a walk to calm down",
		"My friend seemed upset and I asked how she was",
		"I listen first and then share my view",
		"I noticed I get anxious before meetings",
		"I want to be more patient",
		"thanks",
		"done",
	}, "\n") + "\n"

	var out bytes.Buffer
	err := runJourney(context.Background(), journeys, strings.NewReader(input), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Ready to begin?")
	assert.Contains(t, text, "Please share an answer before we move on.")
	assert.Contains(t, text, "EQ score:")
	assert.Contains(t, text, "(local analysis)")
	assert.Contains(t, text, "Our conversation is complete.")
}

func TestTopicsCommand(t *testing.T) {
	var out bytes.Buffer
	topicsCmd.SetOut(&out)
	topicsCmd.Run(topicsCmd, nil)

	assert.Contains(t, out.String(), " 1. Artificial intelligence is more beneficial than harmful to society")
	assert.Equal(t, 10, strings.Count(out.String(), "\n"))
}
