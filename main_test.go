package main

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"opus2mp3/internal/config"
	"opus2mp3/internal/logging"
	"opus2mp3/internal/queue"
)

// newTestConverter builds a converter on fyne's headless test driver.
// No ffmpeg/ffprobe is resolved, so nothing shells out.
func newTestConverter(t *testing.T) *OpusConverter {
	t.Helper()
	a := test.NewApp()
	c := &OpusConverter{
		app:      a,
		window:   a.NewWindow("test"),
		queue:    queue.New(),
		settings: config.Default(),
		log:      logging.Discard(),
	}
	c.setupUI()
	t.Cleanup(func() {
		c.stopWatching()
	})
	return c
}
