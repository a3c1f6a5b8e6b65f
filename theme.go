package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// converterTheme carries the original converter's blue-on-grey palette
// into both theme variants.
type converterTheme struct{}

func (t *converterTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if variant == theme.VariantDark {
		switch name {
		case theme.ColorNamePrimary:
			return color.RGBA{R: 0x00, G: 0x78, B: 0xd7, A: 0xff}
		case theme.ColorNameButton:
			return color.RGBA{R: 0x00, G: 0x5a, B: 0x9e, A: 0xff}
		case theme.ColorNamePressed:
			return color.RGBA{R: 0x00, G: 0x45, B: 0x78, A: 0xff}
		default:
			return theme.DefaultTheme().Color(name, variant)
		}
	}

	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	case theme.ColorNameForeground:
		return color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	case theme.ColorNamePrimary:
		return color.RGBA{R: 0x00, G: 0x78, B: 0xd7, A: 0xff}
	case theme.ColorNameButton:
		return color.RGBA{R: 0x00, G: 0x78, B: 0xd7, A: 0xff}
	case theme.ColorNameHover:
		return color.RGBA{R: 0x00, G: 0x5a, B: 0x9e, A: 0xff}
	case theme.ColorNamePressed:
		return color.RGBA{R: 0x00, G: 0x45, B: 0x78, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.RGBA{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff}
	case theme.ColorNameDisabled:
		return color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	case theme.ColorNameInputBackground:
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	case theme.ColorNameInputBorder:
		return color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *converterTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *converterTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *converterTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
