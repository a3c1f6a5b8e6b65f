// opus2mp3 is a small desktop tool that batch-converts Opus files to
// MP3 by driving FFmpeg. It keeps tags and cover art, optionally
// normalizes loudness, and can watch a directory for new files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/gofrs/flock"

	"opus2mp3/internal/config"
	"opus2mp3/internal/ffmpeg"
	"opus2mp3/internal/logging"
	"opus2mp3/internal/queue"
)

const appTitle = "Opus to MP3 Converter"

// OpusConverter owns the window, the queue and the conversion state.
type OpusConverter struct {
	app    fyne.App
	window fyne.Window

	queue      *queue.Queue
	settings   config.Settings
	configPath string
	log        *slog.Logger

	ffmpegTool  ffmpeg.Tool
	ffprobeTool ffmpeg.Tool

	srcEntry       *widget.Entry
	destEntry      *widget.Entry
	pathButtons    []*widget.Button
	watchCheck     *widget.Check
	fileList       *widget.List
	selectAllBtn   *widget.Button
	deselectAllBtn *widget.Button
	convertBtn     *widget.Button
	cancelBtn      *widget.Button
	progressBar    *widget.ProgressBar
	statusLog      *widget.Entry

	mu         sync.Mutex
	sourceDir  string
	destDir    string
	converting bool
	cancelRun  context.CancelFunc

	watchMu     sync.Mutex
	watching    bool
	watcherStop chan struct{}
}

func main() {
	a := app.NewWithID("io.github.opus2mp3")
	a.Settings().SetTheme(&converterTheme{})

	appDir, dirErr := config.Dir()
	configPath := ""
	if dirErr == nil {
		configPath = filepath.Join(appDir, "config.toml")
	}

	settings, _, cfgErr := config.Load(configPath)

	logger := logging.Discard()
	if dirErr == nil {
		fileLogger, closer, err := logging.New(logging.Options{
			Dir:    filepath.Join(appDir, "logs"),
			Level:  settings.LogLevel,
			Stderr: strings.EqualFold(settings.LogLevel, "debug"),
		})
		if err == nil {
			logger = fileLogger
			defer closer.Close()
		} else {
			fmt.Fprintln(os.Stderr, "opus2mp3:", err)
		}
	}
	if cfgErr != nil {
		logger.Warn("config not loaded, using defaults", "error", cfgErr)
	}

	// A second instance would fight the first over the watch directory
	// and the output files.
	if dirErr == nil {
		if err := os.MkdirAll(appDir, 0o755); err != nil {
			logger.Warn("app dir unavailable", "error", err)
		}
		lock := flock.New(filepath.Join(appDir, "opus2mp3.lock"))
		locked, err := lock.TryLock()
		if err == nil && !locked {
			fmt.Fprintln(os.Stderr, "opus2mp3: another instance is already running")
			logger.Warn("second instance refused")
			return
		}
		if err != nil {
			logger.Warn("instance lock unavailable", "error", err)
		} else {
			defer lock.Unlock()
		}
	}

	w := a.NewWindow(appTitle)
	w.Resize(fyne.NewSize(float32(settings.Window.Width), float32(settings.Window.Height)))

	conv := &OpusConverter{
		app:         a,
		window:      w,
		queue:       queue.New(),
		settings:    settings,
		configPath:  configPath,
		log:         logger,
		ffmpegTool:  ffmpeg.Find(),
		ffprobeTool: ffmpeg.FindProbe(),
	}

	conv.setupUI()
	conv.applySettings()

	if !conv.ffmpegTool.Available {
		logger.Error("ffmpeg not found on PATH")
		go fyne.Do(func() {
			dialog.ShowInformation("FFmpeg Not Found",
				"FFmpeg was not found on your PATH.\n\nConversions will fail until it is installed.", w)
		})
	} else if !conv.ffprobeTool.Available {
		logger.Warn("ffprobe not found, durations read from the opus container")
	}

	w.SetCloseIntercept(conv.shutdown)
	w.ShowAndRun()
}

// shutdown stops background work, persists settings and closes the
// window.
func (c *OpusConverter) shutdown() {
	c.stopWatching()
	c.cancelConversion()
	c.saveSettings()
	c.window.Close()
}
