package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for the file sink.
const (
	fileMaxSizeMB  = 5
	fileMaxBackups = 3
	fileMaxAgeDays = 14
)

// newFileSink returns a size-rotated writer for path.
func newFileSink(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
	}
}
