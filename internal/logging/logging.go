package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log written inside the log directory.
const LogFileName = "crm-kpi.log"

// Init initializes the global logger with dual sinks: os.Stderr and a rotating file.
// Stdout is never written to; it carries the MCP protocol.
func Init(verbose bool) error {
	// Init runs before config.Load, so LOGS_FOLDER may only be known from the binary-relative .env.
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		_ = godotenv.Load(filepath.Join(exeDir, ".env"))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logDir := ResolveLogDir(exeDir)
	fileWriter, err := rotatingFile(logDir)
	if err != nil {
		return err
	}

	multi := zerolog.MultiLevelWriter(io.Writer(consoleWriter(os.Stderr)), fileWriter)
	log.Logger = zerolog.New(multi).
		With().
		Timestamp().
		Logger()
	return nil
}

// ResolveLogDir returns LOGS_FOLDER, falling back to a logs directory next to the binary.
func ResolveLogDir(exeDir string) string {
	if dir := os.Getenv("LOGS_FOLDER"); dir != "" {
		return dir
	}
	if exeDir != "" {
		return filepath.Join(exeDir, "logs")
	}
	return "logs"
}

func consoleWriter(out *os.File) zerolog.ConsoleWriter {
	isTerminal := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}
}

func rotatingFile(logDir string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}

	// MkdirAll succeeds on existing read-only directories.
	testFile := filepath.Join(logDir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return nil, fmt.Errorf("log directory %q is not writable: %w", logDir, err)
	}
	_ = os.Remove(testFile)

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFileName),
		MaxSize:    8, // megabytes
		MaxBackups: 10,
		MaxAge:     90, // days
		Compress:   true,
	}, nil
}
