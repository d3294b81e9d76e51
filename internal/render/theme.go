package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/wikilink"
)

// Theme maps decoration style classes to terminal styles. Unknown
// classes fall back to the default style.
type Theme struct {
	styles map[string]tcell.Style
	def    tcell.Style
}

// NewTheme creates a theme from a class-to-style map.
func NewTheme(styles map[string]tcell.Style) Theme {
	return Theme{styles: styles, def: tcell.StyleDefault}
}

// DefaultTheme returns the built-in color scheme.
func DefaultTheme() Theme {
	def := tcell.StyleDefault
	heading := def.Foreground(tcell.ColorOrange).Bold(true)
	return NewTheme(map[string]tcell.Style{
		decor.ClassHeaderPrefix + "1": heading,
		decor.ClassHeaderPrefix + "2": heading,
		decor.ClassHeaderPrefix + "3": heading,
		decor.ClassHeaderPrefix + "4": heading,
		decor.ClassHeaderPrefix + "5": heading,
		decor.ClassHeaderPrefix + "6": heading,
		decor.ClassStrong:             def.Bold(true),
		decor.ClassEmphasis:           def.Italic(true),
		decor.ClassStrike:             def.StrikeThrough(true),
		decor.ClassInlineCode:         def.Foreground(tcell.ColorGreen),
		decor.ClassLink:               def.Foreground(tcell.ColorBlue).Underline(true),
		decor.ClassQuote:              def.Foreground(tcell.ColorGray).Italic(true),
		decor.ClassCodeBlock:          def.Foreground(tcell.ColorGreen),
		decor.ClassCodeFence:          def.Foreground(tcell.ColorGray),
		wikilink.ClassLink:            def.Foreground(tcell.ColorTeal).Underline(true),
		wikilink.ClassBracket:         def.Foreground(tcell.ColorGray),
	})
}

// Style looks up the style for a class.
func (t Theme) Style(class string) tcell.Style {
	if s, ok := t.styles[class]; ok {
		return s
	}
	return t.def
}

// Default returns the theme's fallback style.
func (t Theme) Default() tcell.Style {
	return t.def
}
