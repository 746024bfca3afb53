package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/common"
)

// Log is the global logger instance.
var Log *RecipeLog

func init() {
	// A console-only logger is always available; Init replaces it when the
	// caller wants file output or a different level.
	Log = &RecipeLog{Logger: newConsoleLogger(logrus.InfoLevel, false)}
}

// RecipeLog wraps *logrus.Logger for application-specific logging.
type RecipeLog struct {
	*logrus.Logger
}

// fieldOrder fixes the display order of layer fields so nested layers read
// outermost to innermost.
var fieldOrder = []string{
	common.LogFieldRunID,
	common.LogFieldRecipeName,
	common.LogFieldTaskName,
	common.LogFieldActionName,
	common.LogFieldExecutorName,
}

func newConsoleLogger(level logrus.Level, verbose bool) *logrus.Logger {
	l := logrus.New()
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)
	l.SetOutput(os.Stdout)
	l.SetFormatter(&Formatter{
		TimestampFormat:        "15:04:05",
		DisplayLevelName:       displayMode(verbose),
		FieldsDisplayWithOrder: fieldOrder,
	})
	return l
}

func displayMode(verbose bool) LevelNameDisplayMode {
	if verbose {
		return ShowAll
	}
	return ShowAboveWarn
}

// Init initializes the global Log. When outputPath is non-empty, log lines
// are additionally written to a daily-rotated file under that directory.
func Init(level logrus.Level, verbose bool, outputPath string) error {
	l := newConsoleLogger(level, verbose)

	if outputPath != "" {
		if err := os.MkdirAll(outputPath, common.FileMode0755); err != nil {
			return fmt.Errorf("failed to create log output directory %s: %w", outputPath, err)
		}
		logFilePath := filepath.Join(outputPath, common.AppName+".log")

		writer, err := rotatelogs.New(
			logFilePath+".%Y%m%d",
			rotatelogs.WithLinkName(logFilePath),
			rotatelogs.WithMaxAge(7*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize rotatelogs for %s: %w", logFilePath, err)
		}

		fileFormatter := &Formatter{
			TimestampFormat:        "2006-01-02 15:04:05.000 MST",
			NoColors:               true,
			DisplayLevelName:       displayMode(verbose),
			FieldsDisplayWithOrder: fieldOrder,
		}
		logWriters := lfshook.WriterMap{}
		for _, lv := range logrus.AllLevels {
			if l.IsLevelEnabled(lv) {
				logWriters[lv] = writer
			}
		}
		l.Hooks.Add(lfshook.NewHook(logWriters, fileFormatter))
		// The hook owns file output; discard the default stream so lines are
		// not duplicated.
		l.SetOutput(io.Discard)
	}

	Log = &RecipeLog{Logger: l}
	return nil
}

// Entry returns a base entry for a new run, tagged with the run ID.
func (x *RecipeLog) Entry(runID string) *logrus.Entry {
	return x.WithField(common.LogFieldRunID, runID)
}
