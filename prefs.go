package main

// applySettings pushes the loaded settings into the UI. Setting the
// entry text triggers the usual refresh paths.
func (c *OpusConverter) applySettings() {
	if c.settings.Paths.SourceDir != "" {
		c.srcEntry.SetText(c.settings.Paths.SourceDir)
		c.refreshFiles()
	}
	if c.settings.Paths.OutputDir != "" {
		c.destEntry.SetText(c.settings.Paths.OutputDir)
	}
	if c.settings.WatchMode {
		c.watchCheck.SetChecked(true)
	}
}

// saveSettings captures the current UI state and writes the config
// file. Called on shutdown.
func (c *OpusConverter) saveSettings() {
	if c.configPath == "" {
		return
	}

	c.settings.Paths.SourceDir = c.srcEntry.Text
	c.settings.Paths.OutputDir = c.destEntry.Text
	c.settings.WatchMode = c.watchCheck.Checked

	size := c.window.Canvas().Size()
	if size.Width > 0 && size.Height > 0 {
		c.settings.Window.Width = int(size.Width)
		c.settings.Window.Height = int(size.Height)
	}

	if err := c.settings.Save(c.configPath); err != nil {
		c.log.Warn("settings not saved", "error", err)
	}
}
