package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"github.com/fsnotify/fsnotify"

	"opus2mp3/internal/queue"
)

// settleDelay is how long a newly created file gets to finish being
// written before it is queued. Variable so tests can shorten it.
var settleDelay = 2 * time.Second

// startWatching begins watching the source directory and converting
// new .opus files as they appear.
//
// SetChecked fires OnChanged synchronously, and OnChanged(false) calls
// stopWatching which takes watchMu; the checkbox is therefore only
// touched while watchMu is released.
func (c *OpusConverter) startWatching() {
	dir := strings.TrimSpace(c.srcEntry.Text)
	if dir == "" {
		c.appendLog(logWarning, "Set a source directory before enabling watch mode.")
		c.watchCheck.SetChecked(false)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.appendLog(logError, "Could not start watcher: "+err.Error())
		c.watchCheck.SetChecked(false)
		return
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		c.appendLog(logError, "Could not watch "+dir+": "+err.Error())
		c.watchCheck.SetChecked(false)
		return
	}

	c.watchMu.Lock()
	if c.watching {
		c.watchMu.Unlock()
		watcher.Close()
		return
	}
	stop := make(chan struct{})
	jobs := make(chan string, 64)
	c.watching = true
	c.watcherStop = stop
	c.settings.WatchMode = true
	c.watchMu.Unlock()

	go c.watchDirectory(watcher, jobs, stop)
	go c.processWatchQueue(jobs, stop)

	c.appendLog(logInfo, "Watching "+dir+" for new opus files.")
}

// stopWatching shuts the watcher goroutines down.
func (c *OpusConverter) stopWatching() {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if !c.watching {
		return
	}
	close(c.watcherStop)
	c.watching = false
	c.settings.WatchMode = false
	c.appendLog(logInfo, "Watch mode stopped.")
}

func (c *OpusConverter) watchDirectory(watcher *fsnotify.Watcher, jobs chan<- string, stop <-chan struct{}) {
	defer watcher.Close()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".opus") {
				continue
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			// Let the writer finish before the file is converted.
			go func(path string) {
				select {
				case <-stop:
				case <-time.After(settleDelay):
					select {
					case jobs <- path:
					case <-stop:
					}
				}
			}(ev.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.appendLog(logWarning, "Watcher error: "+err.Error())
		}
	}
}

// processWatchQueue converts watched files one at a time, waiting out
// any manually started batch first.
func (c *OpusConverter) processWatchQueue(jobs <-chan string, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case path := <-jobs:
			job := c.queue.Add(path)
			if job == nil {
				continue
			}
			fyne.Do(func() {
				c.fileList.Refresh()
				c.updateButtons()
			})
			c.probeDurations([]*queue.Job{job})
			c.appendLog(logInfo, "New file detected: "+baseName(path))
			c.runWatchJob(stop, job)
		}
	}
}

func (c *OpusConverter) runWatchJob(stop <-chan struct{}, job *queue.Job) {
	c.mu.Lock()
	destDir := strings.TrimSpace(c.destDir)
	c.mu.Unlock()
	if destDir == "" {
		c.appendLog(logWarning, "Watched file queued; set a destination directory to convert it.")
		return
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		c.appendLog(logError, "Could not create destination directory: "+err.Error())
		return
	}

	for {
		c.mu.Lock()
		if !c.converting {
			ctx, cancel := context.WithCancel(context.Background())
			c.converting = true
			c.cancelRun = cancel
			c.mu.Unlock()

			go func() {
				select {
				case <-stop:
					cancel()
				case <-ctx.Done():
				}
			}()

			fyne.Do(func() { c.setConvertingState(true) })
			c.runBatch(ctx, []*queue.Job{job}, destDir)
			cancel()
			return
		}
		c.mu.Unlock()

		select {
		case <-stop:
			return
		case <-time.After(500 * time.Millisecond):
		}
	}
}
