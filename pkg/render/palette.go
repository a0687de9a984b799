// Package render draws snapshots of a laid-out state diagram as SVG, PNG
// or Graphviz DOT.
package render

import (
	"fmt"
	"image/color"
)

// category10 is the node fill palette, indexed by node position.
var category10 = []color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff},
	{0xff, 0x7f, 0x0e, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff},
	{0xd6, 0x27, 0x28, 0xff},
	{0x94, 0x67, 0xbd, 0xff},
	{0x8c, 0x56, 0x4b, 0xff},
	{0xe3, 0x77, 0xc2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff},
	{0xbc, 0xbd, 0x22, 0xff},
	{0x17, 0xbe, 0xcf, 0xff},
}

// NodeColor returns the fill of the i-th node.
func NodeColor(i int) color.RGBA {
	return category10[i%len(category10)]
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Colors shared by the raster renderer.
var (
	colorWhite    = color.RGBA{255, 255, 255, 255}
	colorBlack    = color.RGBA{51, 51, 51, 255}  // #333
	colorSelected = color.RGBA{255, 215, 0, 255} // gold
)
