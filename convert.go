package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"

	"opus2mp3/internal/convert"
	"opus2mp3/internal/opusmeta"
	"opus2mp3/internal/queue"
)

// startConversion kicks off a batch over the selected jobs. Jobs run
// one at a time, in queue order, on a single background goroutine.
func (c *OpusConverter) startConversion() {
	destDir := strings.TrimSpace(c.destEntry.Text)
	if destDir == "" {
		c.appendLog(logWarning, "Set a destination directory before converting.")
		return
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		c.appendLog(logError, "Could not create destination directory: "+err.Error())
		return
	}

	c.queue.ResetFinished()
	jobs := c.queue.Selected()
	if len(jobs) == 0 {
		c.appendLog(logInfo, "No files selected for conversion.")
		return
	}

	c.mu.Lock()
	if c.converting {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.converting = true
	c.cancelRun = cancel
	c.mu.Unlock()

	c.setConvertingState(true)
	c.progressBar.SetValue(0)
	c.fileList.Refresh()

	go func() {
		c.runBatch(ctx, jobs, destDir)
		cancel()
	}()
}

// cancelConversion stops the running batch. The job in flight has its
// FFmpeg process killed; the rest are marked skipped.
func (c *OpusConverter) cancelConversion() {
	c.mu.Lock()
	cancel := c.cancelRun
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// runBatch converts jobs sequentially so completion order matches
// queue order. One job failing never stops the batch.
func (c *OpusConverter) runBatch(ctx context.Context, jobs []*queue.Job, destDir string) {
	defer func() {
		c.mu.Lock()
		c.converting = false
		c.cancelRun = nil
		c.mu.Unlock()
		fyne.Do(func() {
			c.setConvertingState(false)
			c.fileList.Refresh()
		})
	}()

	client := convert.NewClient(c.ffmpegTool.Path, c.log)
	opts := c.convertOptions()
	total := len(jobs)

	for processed, job := range jobs {
		if ctx.Err() != nil {
			c.queue.SetStatus(job.ID, queue.StatusSkipped, "cancelled")
			continue
		}

		name := baseName(job.InputPath)
		c.queue.SetStatus(job.ID, queue.StatusRunning, "")
		fyne.Do(c.fileList.Refresh)

		if outputExists(job.InputPath, destDir) {
			c.appendLog(logOverwriting, name+"...")
		} else {
			c.appendLog(logConverting, name+"...")
		}

		meta, err := opusmeta.ReadFile(job.InputPath)
		if err != nil {
			c.appendLog(logWarning, "Could not read tags from "+name+": "+err.Error())
			meta = nil
		}

		out, err := client.Convert(ctx, job.InputPath, destDir, opts, meta, func(p convert.ProgressUpdate) {
			c.log.Debug("conversion progress", "stage", p.Stage, "input", p.Input)
		})
		switch {
		case err != nil && ctx.Err() != nil:
			c.queue.SetStatus(job.ID, queue.StatusSkipped, "cancelled")
			c.appendLog(logWarning, "Cancelled "+name+".")
		case err != nil:
			c.queue.SetStatus(job.ID, queue.StatusFailed, err.Error())
			c.appendLog(logError, "Failed to convert "+name+": "+err.Error())
		default:
			c.queue.SetOutput(job.ID, out)
			c.queue.SetStatus(job.ID, queue.StatusCompleted, "")
			c.appendLog(logFinished, name)
		}

		frac := float64(processed+1) / float64(total)
		fyne.Do(func() {
			c.progressBar.SetValue(frac)
			c.fileList.Refresh()
		})
	}

	if ctx.Err() != nil {
		c.appendLog(logInfo, "Conversion cancelled.")
	} else {
		c.appendLog(logInfo, "Conversion complete.")
	}
}

func (c *OpusConverter) convertOptions() convert.Options {
	enc := c.settings.Encoding
	return convert.Options{
		Normalize:  enc.Normalize,
		TargetI:    enc.TargetI,
		TargetLRA:  enc.TargetLRA,
		TargetTP:   enc.TargetTP,
		Quality:    enc.Quality,
		SampleRate: enc.SampleRate,
	}
}

// outputExists reports whether converting input into destDir would
// overwrite an existing MP3.
func outputExists(inputPath, destDir string) bool {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	_, err := os.Stat(filepath.Join(destDir, stem+".mp3"))
	return err == nil
}
