// Package titlebar overlays a browser-chrome style title bar on a
// captured screenshot: window buttons, centered page title, and a
// rounded URL bar, pasted above the original image.
package titlebar

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style describes one title bar look.
type Style struct {
	BG           color.RGBA
	TitleColor   color.RGBA
	URLBG        color.RGBA
	URLColor     color.RGBA
	Buttons      [3]color.RGBA
	Height       int
	URLBarHeight int
}

var styles = map[string]Style{
	"chrome": {
		BG:           color.RGBA{222, 225, 230, 255},
		TitleColor:   color.RGBA{60, 64, 67, 255},
		URLBG:        color.RGBA{255, 255, 255, 255},
		URLColor:     color.RGBA{95, 99, 104, 255},
		Buttons:      [3]color.RGBA{{237, 106, 94, 255}, {245, 191, 79, 255}, {98, 197, 84, 255}},
		Height:       72,
		URLBarHeight: 32,
	},
	"safari": {
		BG:           color.RGBA{244, 244, 244, 255},
		TitleColor:   color.RGBA{0, 0, 0, 255},
		URLBG:        color.RGBA{255, 255, 255, 255},
		URLColor:     color.RGBA{128, 128, 128, 255},
		Buttons:      [3]color.RGBA{{255, 95, 87, 255}, {255, 189, 46, 255}, {39, 201, 63, 255}},
		Height:       52,
		URLBarHeight: 28,
	},
	"minimal": {
		BG:           color.RGBA{248, 249, 250, 255},
		TitleColor:   color.RGBA{33, 37, 41, 255},
		URLBG:        color.RGBA{255, 255, 255, 255},
		URLColor:     color.RGBA{108, 117, 125, 255},
		Buttons:      [3]color.RGBA{{255, 95, 87, 255}, {255, 189, 46, 255}, {39, 201, 63, 255}},
		Height:       40,
		URLBarHeight: 24,
	},
}

// StyleFor returns the named style, falling back to chrome.
func StyleFor(name string) Style {
	if s, ok := styles[name]; ok {
		return s
	}
	return styles["chrome"]
}

// BarHeight returns the bar height added above the image for a style name.
func BarHeight(name string) int {
	return StyleFor(name).Height
}

// Renderer composites title bars onto PNG files in place.
type Renderer struct {
	face font.Face
}

// NewRenderer creates a Renderer using the built-in bitmap face.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Annotate adds a title bar above the image at imagePath, overwriting the
// file. title goes in the bar center, url in the address bar.
func (r *Renderer) Annotate(imagePath, title, url, style string) error {
	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	original, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	st := StyleFor(style)
	b := original.Bounds()
	width, height := b.Dx(), b.Dy()

	out := image.NewRGBA(image.Rect(0, 0, width, height+st.Height))
	draw.Draw(out, out.Bounds(), image.NewUniform(st.BG), image.Point{}, draw.Src)

	// Window buttons.
	const (
		buttonY       = 14
		buttonX       = 16
		buttonRadius  = 6
		buttonSpacing = 20
	)
	for i, col := range st.Buttons {
		fillCircle(out, buttonX+i*buttonSpacing, buttonY, buttonRadius, col)
	}

	r.drawCentered(out, title, width, 10, st.TitleColor)

	// URL bar. Drawn at a fixed offset; the pasted screenshot clips
	// whatever falls below the bar area on short styles.
	const (
		urlBarY      = 34
		urlBarMargin = 80
	)
	urlBar := image.Rect(urlBarMargin, urlBarY, width-urlBarMargin, urlBarY+st.URLBarHeight)
	fillRoundedRect(out, urlBar, st.URLBarHeight/2, st.URLBG)
	r.drawCentered(out, url, width, urlBarY+(st.URLBarHeight-r.face.Metrics().Height.Ceil())/2, st.URLColor)

	draw.Draw(out, image.Rect(0, st.Height, width, st.Height+height), original, b.Min, draw.Src)

	tmp, err := os.Create(imagePath)
	if err != nil {
		return fmt.Errorf("rewrite image: %w", err)
	}
	if err := png.Encode(tmp, out); err != nil {
		tmp.Close()
		return fmt.Errorf("encode image: %w", err)
	}
	return tmp.Close()
}

// drawCentered draws s horizontally centered, with the text top at y.
func (r *Renderer) drawCentered(dst *image.RGBA, s string, width, y int, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: r.face,
	}
	w := d.MeasureString(s).Ceil()
	d.Dot = fixed.P((width-w)/2, y+r.face.Metrics().Ascent.Ceil())
	d.DrawString(s)
}

func fillCircle(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	rr := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= rr {
				setClipped(img, cx+dx, cy+dy, col)
			}
		}
	}
}

func fillRoundedRect(img *image.RGBA, rect image.Rectangle, radius int, col color.RGBA) {
	if radius*2 > rect.Dx() {
		radius = rect.Dx() / 2
	}
	if radius*2 > rect.Dy() {
		radius = rect.Dy() / 2
	}
	rr := radius * radius
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			// Corner test: distance from the nearest corner circle center.
			dx, dy := 0, 0
			if x < rect.Min.X+radius {
				dx = rect.Min.X + radius - x
			} else if x >= rect.Max.X-radius {
				dx = x - (rect.Max.X - radius - 1)
			}
			if y < rect.Min.Y+radius {
				dy = rect.Min.Y + radius - y
			} else if y >= rect.Max.Y-radius {
				dy = y - (rect.Max.Y - radius - 1)
			}
			if dx*dx+dy*dy <= rr {
				setClipped(img, x, y, col)
			}
		}
	}
}

func setClipped(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}
