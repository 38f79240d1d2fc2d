// Package fonts provides typography defaults shared by the renderers.
//
// SVG output names font families and leaves rasterization to the viewer.
// Raster output needs an actual face: [Face] returns the built-in fixed
// face used when no font file is configured, and callers pass a TTF path
// through their renderer options when they want scalable text.
package fonts

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Family is the primary font family written into SVG text elements.
const Family = "Helvetica"

// FallbackFamily lists Family with fallbacks for systems without it.
const FallbackFamily = `Helvetica, Arial, 'Liberation Sans', sans-serif`

// Face returns the built-in raster face. It has a fixed 13px size, so
// large raster canvases look better with a loaded font file.
func Face() font.Face {
	return basicfont.Face7x13
}
