package main

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"opus2mp3/internal/ffmpeg"
)

func (c *OpusConverter) setupUI() {
	c.srcEntry = widget.NewEntry()
	c.srcEntry.SetPlaceHolder("Source directory")
	c.srcEntry.OnChanged = func(s string) {
		c.mu.Lock()
		c.sourceDir = s
		c.mu.Unlock()
	}
	srcBrowse := widget.NewButton("Browse", c.browseSource)
	srcRefresh := widget.NewButton("Refresh", c.refreshFiles)

	c.destEntry = widget.NewEntry()
	c.destEntry.SetPlaceHolder("Destination directory")
	c.destEntry.OnChanged = func(s string) {
		c.mu.Lock()
		c.destDir = s
		c.mu.Unlock()
	}
	destBrowse := widget.NewButton("Browse", c.browseDestination)
	destRefresh := widget.NewButton("Refresh", c.refreshDestination)

	c.pathButtons = []*widget.Button{srcBrowse, srcRefresh, destBrowse, destRefresh}

	srcRow := container.NewBorder(nil, nil, widget.NewLabel("Source:"),
		container.NewHBox(srcBrowse, srcRefresh), c.srcEntry)
	destRow := container.NewBorder(nil, nil, widget.NewLabel("Output:"),
		container.NewHBox(destBrowse, destRefresh), c.destEntry)

	c.watchCheck = widget.NewCheck("Watch source directory for new files", func(on bool) {
		if on {
			c.startWatching()
		} else {
			c.stopWatching()
		}
	})

	c.fileList = widget.NewList(
		c.queue.Len,
		c.newFileRow,
		c.updateFileRow,
	)

	c.selectAllBtn = widget.NewButton("Select All", func() {
		c.queue.SelectAll(true)
		c.fileList.Refresh()
		c.updateButtons()
	})
	c.deselectAllBtn = widget.NewButton("Deselect All", func() {
		c.queue.SelectAll(false)
		c.fileList.Refresh()
		c.updateButtons()
	})

	c.convertBtn = widget.NewButton("Convert", c.startConversion)
	c.convertBtn.Importance = widget.HighImportance
	c.cancelBtn = widget.NewButton("Cancel", c.cancelConversion)
	c.convertBtn.Disable()
	c.cancelBtn.Disable()

	c.progressBar = widget.NewProgressBar()

	c.statusLog = widget.NewMultiLineEntry()
	c.statusLog.SetPlaceHolder("Conversion log will appear here...")
	c.statusLog.Wrapping = fyne.TextWrapWord
	c.statusLog.Disable()

	top := container.NewVBox(srcRow, destRow, c.watchCheck)
	bottom := container.NewVBox(
		container.NewGridWithColumns(2, c.selectAllBtn, c.deselectAllBtn),
		container.NewGridWithColumns(2, c.convertBtn, c.cancelBtn),
		c.progressBar,
	)
	upper := container.NewBorder(top, bottom, nil, nil, c.fileList)

	split := container.NewVSplit(upper, c.statusLog)
	split.SetOffset(0.7)
	c.window.SetContent(split)
}

// newFileRow builds the template row for the file list: checkbox,
// name, duration, status and a remove button.
func (c *OpusConverter) newFileRow() fyne.CanvasObject {
	check := widget.NewCheck("", nil)
	name := widget.NewLabel("file.opus")
	name.Truncation = fyne.TextTruncateEllipsis
	duration := widget.NewLabel("--:--")
	status := widget.NewLabel("")
	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
	return container.NewBorder(nil, nil, check,
		container.NewHBox(duration, status, remove), name)
}

// updateFileRow fills a recycled row with the job at index i. Border
// layout order: center object first, then left, then right.
func (c *OpusConverter) updateFileRow(i widget.ListItemID, row fyne.CanvasObject) {
	job := c.queue.At(i)
	if job == nil {
		return
	}
	objects := row.(*fyne.Container).Objects
	name := objects[0].(*widget.Label)
	check := objects[1].(*widget.Check)
	right := objects[2].(*fyne.Container).Objects
	duration := right[0].(*widget.Label)
	status := right[1].(*widget.Label)
	remove := right[2].(*widget.Button)

	name.SetText(baseName(job.InputPath))
	duration.SetText(ffmpeg.FormatDuration(job.Duration))
	status.SetText(job.Status.Label())

	// Detach the callback while syncing the recycled checkbox.
	check.OnChanged = nil
	check.SetChecked(job.Selected)
	check.OnChanged = func(on bool) {
		c.queue.SetSelected(i, on)
		c.updateButtons()
	}

	remove.OnTapped = func() {
		if c.isConverting() {
			return
		}
		c.queue.Remove(i)
		c.fileList.Refresh()
		c.updateButtons()
	}
}

func (c *OpusConverter) browseSource() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		if uri == nil {
			return
		}
		c.srcEntry.SetText(uri.Path())
		c.refreshFiles()
	}, c.window)
}

func (c *OpusConverter) browseDestination() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		if uri == nil {
			return
		}
		c.destEntry.SetText(uri.Path())
		c.refreshDestination()
	}, c.window)
}

// refreshFiles rescans the source directory and rebuilds the queue.
func (c *OpusConverter) refreshFiles() {
	dir := strings.TrimSpace(c.srcEntry.Text)
	if dir == "" {
		c.appendLog(logWarning, "Source directory not set.")
		return
	}

	files, err := listOpusFiles(dir)
	if err != nil {
		c.appendLog(logError, "Could not read source directory: "+err.Error())
		return
	}

	c.queue.Clear()
	for _, path := range files {
		c.queue.Add(path)
	}
	c.fileList.Refresh()
	c.updateButtons()
	c.appendLog(logInfo, fmt.Sprintf("Found %d opus file(s) in %s", len(files), dir))

	go c.probeDurations(c.queue.Jobs())
}

// refreshDestination reports how many MP3s already sit in the output
// directory, so overwrites are no surprise.
func (c *OpusConverter) refreshDestination() {
	dir := strings.TrimSpace(c.destEntry.Text)
	if dir == "" {
		c.appendLog(logWarning, "Destination directory not set.")
		return
	}
	count, err := countMP3Files(dir)
	if err != nil {
		c.appendLog(logError, "Could not read destination directory: "+err.Error())
		return
	}
	c.appendLog(logInfo, fmt.Sprintf("Destination holds %d mp3 file(s).", count))
}

func (c *OpusConverter) updateButtons() {
	hasJobs := c.queue.Len() > 0
	converting := c.isConverting()

	checked := false
	for _, job := range c.queue.Jobs() {
		if job.Selected {
			checked = true
			break
		}
	}

	setEnabled := func(w *widget.Button, on bool) {
		if on {
			w.Enable()
		} else {
			w.Disable()
		}
	}
	setEnabled(c.selectAllBtn, hasJobs && !converting)
	setEnabled(c.deselectAllBtn, hasJobs && !converting)
	setEnabled(c.convertBtn, checked && !converting)
	setEnabled(c.cancelBtn, converting)
}

// setConvertingState locks or unlocks the controls around a batch run.
func (c *OpusConverter) setConvertingState(converting bool) {
	for _, b := range c.pathButtons {
		if converting {
			b.Disable()
		} else {
			b.Enable()
		}
	}
	if converting {
		c.srcEntry.Disable()
		c.destEntry.Disable()
	} else {
		c.srcEntry.Enable()
		c.destEntry.Enable()
	}
	c.updateButtons()
}

func (c *OpusConverter) isConverting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.converting
}
