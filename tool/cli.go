// Package tool holds the command line front end: every command decodes its
// inputs, runs one transform and writes the result.
package tool

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	_ "imgex/seam"
)

// Globals are the flags shared by every command.
type Globals struct {
	Workers  int    `help:"Number of files processed at once, 0 for one per CPU" default:"0"`
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogJSON  bool   `help:"Log as JSON lines" default:"false"`
}

type CLI struct {
	Globals

	BMP      BMPCmd      `cmd:"" name:"bmp" help:"Convert images to Windows bitmaps"`
	ICO      ICOCmd      `cmd:"" name:"ico" help:"Pack images into one Windows icon"`
	Correct  CorrectCmd  `cmd:"" help:"Apply levels, gamma and tone curves"`
	Extract  ExtractCmd  `cmd:"" help:"Split images into gray channel planes"`
	Mask     MaskCmd     `cmd:"" help:"Blend a mask into the alpha channel"`
	Scale    ScaleCmd    `cmd:"" help:"Resize images"`
	Flip     FlipCmd     `cmd:"" help:"Mirror images horizontally or vertically"`
	Features FeaturesCmd `cmd:"" help:"Print optional capabilities and accepted names"`
}
