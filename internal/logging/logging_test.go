package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tuinoi.log")
	closeLog, err := Setup(path, "debug")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(closeLog)

	log.Info().Str("event", "probe").Msg("logging test")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"event":"probe"`) {
		t.Fatalf("log entry missing: %q", string(data))
	}
}

func TestSetupRejectsBadLevel(t *testing.T) {
	if _, err := Setup(filepath.Join(t.TempDir(), "tuinoi.log"), "chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
