package vm

// Display is the 64x32 monochrome framebuffer, stored row-major.
// Pixels are only changed by clear and by XOR sprite drawing.
type Display struct {
	pixels [ScreenWidth * ScreenHeight]bool
}

func (d *Display) Width() int  { return ScreenWidth }
func (d *Display) Height() int { return ScreenHeight }

// PixelAt reports whether the pixel at (x, y) is lit. Coordinates wrap
// around both edges of the screen.
func (d *Display) PixelAt(x, y int) bool {
	return d.pixels[screenAddr(x, y)]
}

func (d *Display) clear() {
	d.pixels = [ScreenWidth * ScreenHeight]bool{}
}

// flip toggles the pixel at (x, y) and reports whether it was lit before,
// i.e. whether the XOR erased it.
func (d *Display) flip(x, y int) bool {
	i := screenAddr(x, y)
	erased := d.pixels[i]
	d.pixels[i] = !erased
	return erased
}

func screenAddr(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}

	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}

	return ScreenWidth*y + x
}
