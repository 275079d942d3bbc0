// Package misc holds the CLI checks, logger and file opening shared by the sketchy commands
package misc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorCheck logs a fatal error through the global logger, which exits sketchy
func ErrorCheck(err error) {
	if err != nil {
		zap.S().Fatalf("terminated: %v", err)
	}
}

// CheckRequiredFlags reports every flag marked as required that was not set on the command line
func CheckRequiredFlags(flags *pflag.FlagSet) error {
	missing := []string{}
	flags.VisitAll(func(flag *pflag.Flag) {
		required := flag.Annotations[cobra.BashCompOneRequiredFlag]
		if len(required) != 0 && required[0] == "true" && !flag.Changed {
			missing = append(missing, "--"+flag.Name)
		}
	})
	if len(missing) != 0 {
		return fmt.Errorf("required flag(s) not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// NewLogger builds the sketchy logger and installs it as the global zap logger.
// An empty logFile logs to STDERR, otherwise the log is appended to logFile (creating its directory).
func NewLogger(logFile string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		if dir := filepath.Dir(logFile); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("can't create specified directory for log: %w", err)
			}
		}
		config.OutputPaths = []string{logFile}
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// CheckSTDIN checks that something is piped into sketchy
func CheckSTDIN() error {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return fmt.Errorf("can't read STDIN: %w", err)
	}
	if stat.Mode()&os.ModeNamedPipe == 0 {
		return errors.New("nothing piped on STDIN")
	}
	return nil
}

// CheckDir checks that dir exists and is a directory
func CheckDir(dir string) error {
	if dir == "" {
		return errors.New("no directory given")
	}
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("directory does not exist: %v", dir)
	case err != nil:
		return fmt.Errorf("can't access directory %v: %w", dir, err)
	case !info.IsDir():
		return fmt.Errorf("not a directory: %v", dir)
	}
	return nil
}

// CheckFile checks that file exists and is not a directory
func CheckFile(file string) error {
	info, err := os.Stat(file)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %v", file)
	case err != nil:
		return fmt.Errorf("can't access file %v: %w", file, err)
	case info.IsDir():
		return fmt.Errorf("expected a file, got a directory: %v", file)
	}
	return nil
}

// CheckExt checks the extension of a feed, index or read file; a trailing .gz or .bgz is skipped
func CheckExt(file string, exts []string) error {
	name := strings.ToLower(filepath.Base(file))
	for _, z := range []string{".gz", ".bgz"} {
		name = strings.TrimSuffix(name, z)
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, want := range exts {
		if ext == want {
			return nil
		}
	}
	return fmt.Errorf("%v does not have one of the extensions %v", file, exts)
}

// PrintMemUsage reports heap and OS memory in MB with the number of GC cycles
func PrintMemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("heap %dMb, os %dMb, gc cycles %d", m.HeapAlloc>>20, m.Sys>>20, m.NumGC)
}
