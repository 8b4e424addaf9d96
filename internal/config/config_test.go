package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
	assert.Equal(t, uint8(0), cfg.Difficulty)
	assert.Equal(t, GateOff, cfg.Gate)
	assert.Equal(t, 100, cfg.Backlog)
	assert.GreaterOrEqual(t, cfg.SolverWorkers, 1)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"POWCHAT_ADDR":           "0.0.0.0:8080",
		"POWCHAT_DIFFICULTY":     "4",
		"POWCHAT_GATE":           "verify",
		"POWCHAT_BACKLOG":        "5",
		"POWCHAT_SOLVER_WORKERS": "2",
		"POWCHAT_SOLVER_QUEUE":   "3",
		"POWCHAT_WRITE_TIMEOUT":  "1500ms",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, uint8(4), cfg.Difficulty)
	assert.Equal(t, GateVerify, cfg.Gate)
	assert.Equal(t, 5, cfg.Backlog)
	assert.Equal(t, 2, cfg.SolverWorkers)
	assert.Equal(t, 3, cfg.SolverQueue)
	assert.Equal(t, 1500*time.Millisecond, cfg.WriteTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"difficulty beyond digest", map[string]string{"POWCHAT_DIFFICULTY": "65"}},
		{"difficulty overflows uint8", map[string]string{"POWCHAT_DIFFICULTY": "300"}},
		{"difficulty not a number", map[string]string{"POWCHAT_DIFFICULTY": "hard"}},
		{"unknown gate", map[string]string{"POWCHAT_GATE": "maybe"}},
		{"zero backlog", map[string]string{"POWCHAT_BACKLOG": "0"}},
		{"bad address", map[string]string{"POWCHAT_ADDR": "nowhere"}},
		{"bad timeout", map[string]string{"POWCHAT_WRITE_TIMEOUT": "soon"}},
		{"zero workers", map[string]string{"POWCHAT_SOLVER_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
