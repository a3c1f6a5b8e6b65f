package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"opus2mp3/internal/ffmpeg"
	"opus2mp3/internal/opusmeta"
	"opus2mp3/internal/queue"
)

// logKind prefixes the lines in the on-screen conversion log.
type logKind string

const (
	logConverting  logKind = "CONVERTING"
	logOverwriting logKind = "OVERWRITING"
	logFinished    logKind = "FINISHED"
	logError       logKind = "ERROR"
	logWarning     logKind = "WARNING"
	logInfo        logKind = "INFO"
)

// appendLog adds a line to the status pane and mirrors it to the file
// logger. Safe to call from any goroutine.
func (c *OpusConverter) appendLog(kind logKind, message string) {
	switch kind {
	case logError:
		c.log.Error(message)
	case logWarning:
		c.log.Warn(message)
	default:
		c.log.Info(message, "kind", string(kind))
	}

	line := string(kind) + ": " + message
	fyne.Do(func() {
		text := c.statusLog.Text
		if text != "" {
			text += "\n"
		}
		c.statusLog.SetText(text + line)
		c.statusLog.CursorRow = strings.Count(c.statusLog.Text, "\n")
	})
}

// listOpusFiles returns the .opus files directly inside dir, sorted by
// name. Hidden files and subdirectories are skipped.
func listOpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".opus") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// countMP3Files counts the .mp3 files directly inside dir.
func countMP3Files(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".mp3") {
			count++
		}
	}
	return count, nil
}

func baseName(path string) string {
	return filepath.Base(path)
}

// probeDurations fills in the duration column. ffprobe is asked first;
// without it the duration comes from the ogg granule positions.
func (c *OpusConverter) probeDurations(jobs []*queue.Job) {
	for _, job := range jobs {
		d, err := c.probeDuration(job.InputPath)
		if err != nil {
			c.log.Debug("duration probe failed", "input", job.InputPath, "error", err)
			continue
		}
		c.queue.SetDuration(job.ID, d)
	}
	fyne.Do(c.fileList.Refresh)
}

func (c *OpusConverter) probeDuration(path string) (time.Duration, error) {
	if c.ffprobeTool.Available {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return ffmpeg.Duration(ctx, c.ffprobeTool.Path, path)
	}
	meta, err := opusmeta.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return meta.Duration, nil
}
