package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"person-registry/internal/core/config"
)

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, flush := FromConfig("person-api", config.Log{
		Level:  "debug",
		JSON:   true,
		Rotate: config.Rotate{Enable: true, Filename: path, MaxSizeMB: 1},
	})
	l.Info("hello")
	flush()

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"msg":"hello"`)
	assert.Contains(t, string(buf), `"app":"person-api"`)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, flush := New(Options{Level: "loud"})
	defer flush()
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestRedirectStdLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "std.log")
	l, flush := New(Options{Level: "info", JSON: true, Rotate: config.Rotate{Enable: true, Filename: path}})
	undo := RedirectStdLog(l, zapcore.InfoLevel)
	log.Print("from std")
	undo()
	flush()

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "from std")
}
