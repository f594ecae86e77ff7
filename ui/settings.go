package ui

import (
	"github.com/charmbracelet/log"
)

func (a *App) save() {
	if a.settings == nil {
		return
	}
	if err := a.settings.Save(a.session); err != nil {
		a.println(fail("Unable to save settings: " + err.Error()))
		return
	}
	a.println(ok("Settings saved to " + a.settings.Path()))
}

func (a *App) load() {
	if a.settings == nil {
		return
	}
	loaded, err := a.settings.Load(a.session)
	switch {
	case err != nil:
		a.println(fail("Unable to load settings: " + err.Error()))
		return
	case !loaded:
		a.println(warn("No saved settings found at " + a.settings.Path()))
		return
	}
	a.println(ok("Settings loaded from " + a.settings.Path()))
	a.ensureOutputDir()
}

// autoload restores saved settings at startup. A missing file is silent.
func (a *App) autoload() {
	if a.settings == nil {
		return
	}
	loaded, err := a.settings.Load(a.session)
	if err != nil {
		a.println(warn("Saved settings were not loaded: " + err.Error()))
		return
	}
	if loaded {
		log.Debug("Restored saved settings", "path", a.settings.Path())
		a.println(faintStyle.Render("Restored saved settings from " + a.settings.Path()))
		a.ensureOutputDir()
	}
}

func (a *App) ensureOutputDir() {
	if err := a.session.EnsureOutputDir(); err != nil {
		a.println(warn(err.Error()))
	}
}
