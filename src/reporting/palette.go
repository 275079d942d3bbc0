package reporting

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/esteinig/sketchy/src/concordance"
)

// Palette colours the three concordance levels. It is passed to every renderer
// explicitly; there is no package-level palette.
type Palette struct {
	Primary    color.Color // full concordance
	Secondary  color.Color // lineage only
	Background color.Color // no concordance
}

const (
	DefaultPrimary    = "#88419d"
	DefaultSecondary  = "#8c96c6"
	defaultBackground = "#f0f0f0"
)

// named two-step palettes, dark then light
var named = map[string][2]string{
	"red":    {"#cb181d", "#fc9272"},
	"orange": {"#d94801", "#fdae6b"},
	"green":  {"#238b45", "#a1d99b"},
	"blue":   {"#2171b5", "#9ecae1"},
}

// DefaultPalette returns the purple hitmap palette
func DefaultPalette() Palette {
	p, _ := NewPalette(DefaultPrimary, DefaultSecondary)
	return p
}

// NewPalette builds a palette from hex primary and secondary colours
func NewPalette(primary, secondary string) (Palette, error) {
	pc, err := ParseHex(primary)
	if err != nil {
		return Palette{}, fmt.Errorf("primary colour: %w", err)
	}
	sc, err := ParseHex(secondary)
	if err != nil {
		return Palette{}, fmt.Errorf("secondary colour: %w", err)
	}
	bg, _ := ParseHex(defaultBackground)
	return Palette{Primary: pc, Secondary: sc, Background: bg}, nil
}

// NamedPalette returns one of red, orange, green or blue
func NamedPalette(name string) (Palette, error) {
	hex, ok := named[strings.ToLower(name)]
	if !ok {
		return Palette{}, fmt.Errorf("unknown palette %q (use red, orange, green or blue)", name)
	}
	return NewPalette(hex[0], hex[1])
}

// SelectPalette prefers a named palette and falls back to the hex colours
func SelectPalette(name, primary, secondary string) (Palette, error) {
	if name != "" {
		return NamedPalette(name)
	}
	return NewPalette(primary, secondary)
}

// ParseHex parses #rrggbb or #rgb
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad hex colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Colors orders the palette by level so it can drive a heat map over None..Full
func (p Palette) Colors() []color.Color {
	return []color.Color{p.Background, p.Secondary, p.Primary}
}

// LevelColor returns the colour of a concordance level
func (p Palette) LevelColor(l concordance.Level) color.Color {
	switch l {
	case concordance.Full:
		return p.Primary
	case concordance.LineageOnly:
		return p.Secondary
	}
	return p.Background
}
