package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("INFO")

	tests := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"warn":    "WARN",
		"Error":   "ERROR",
		"FATAL":   "FATAL",
		"verbose": "INFO",
		"":        "INFO",
	}
	for name, want := range tests {
		SetLevel(name)
		assert.Equal(t, want, Level(), "level %q", name)
	}
}
