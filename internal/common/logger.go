package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const (
	logTimeFormat  = "15:04:05"
	logFileMaxSize = 10 * 1024 * 1024 // 10 MB
	logFileBackups = 5
)

// InitLogger builds the arbor logger from [logging]: a rotating file under
// LogDirectory() for "file", the console for "stdout"/"console". The console
// is used when nothing usable is configured.
func InitLogger(config *Config) arbor.ILogger {
	outputs := config.Logging.Output
	toFile := slices.Contains(outputs, "file")
	toConsole := slices.Contains(outputs, "stdout") || slices.Contains(outputs, "console")

	logger := arbor.NewLogger()

	if toFile {
		if writer, err := fileWriterConfig(config.Logging.File); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
			toFile = false
		} else {
			logger = logger.WithFileWriter(writer)
		}
	}

	if toConsole || !toFile {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: logTimeFormat,
			OutputType: models.OutputFormatLogfmt,
		})
	}

	return logger.WithLevelFromString(config.Logging.Level)
}

func fileWriterConfig(fileName string) (models.WriterConfiguration, error) {
	dir := LogDirectory()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return models.WriterConfiguration{}, fmt.Errorf("create %s: %w", dir, err)
	}
	if fileName == "" {
		fileName = "marketbrief.log"
	}

	return models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   filepath.Join(dir, fileName),
		TimeFormat: logTimeFormat,
		MaxSize:    logFileMaxSize,
		MaxBackups: logFileBackups,
		OutputType: models.OutputFormatLogfmt,
	}, nil
}

// LogDirectory returns ./logs next to the executable, or "logs" in the
// working directory when the executable path is unknown
func LogDirectory() string {
	execPath, err := os.Executable()
	if err != nil {
		return "logs"
	}
	return filepath.Join(filepath.Dir(execPath), "logs")
}
