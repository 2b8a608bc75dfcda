package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const logFileName = "statline.log"

// setupLogging sends the standard logger to dir/statline.log when debug is
// set and discards it otherwise. A log at or above maxSize bytes is renamed
// with a timestamp first. The terminal is in raw mode while we run, so
// nothing may reach stdout or stderr.
func setupLogging(debug bool, dir string, maxSize int64) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}

	path := filepath.Join(dir, logFileName)
	if info, err := os.Stat(path); err == nil && maxSize > 0 && info.Size() >= maxSize {
		rotated := filepath.Join(dir, fmt.Sprintf("statline-%s.log", time.Now().Format("20060102-150405")))
		// On failure the old file keeps growing
		_ = os.Rename(path, rotated)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("statline: logging started (pid %d)", os.Getpid())
	return f
}
