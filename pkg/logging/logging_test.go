package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSharedLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(log.WarnLevel)

	l := New("test")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at warn level: %q", buf.String())
	}

	SetLevel(log.DebugLevel)
	l.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug line missing after SetLevel: %q", buf.String())
	}

	late := New("late")
	if late.GetLevel() != log.DebugLevel {
		t.Errorf("late logger level = %v, want debug", late.GetLevel())
	}
	if Level() != log.DebugLevel {
		t.Errorf("Level() = %v, want debug", Level())
	}
}
