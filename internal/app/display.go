package app

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

const (
	panelWidth  = 128
	panelHeight = 64

	roseCX     = 32
	roseCY     = 32
	roseRadius = 30

	// ssd1306.NewI2C always addresses this
	ssd1306Addr = 0x3C
)

// panel is the part of *ssd1306.Dev the display loop needs.
type panel interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Bounds() image.Rectangle
	Halt() error
}

// DisplayOptions selects the I2C bus and the two panel addresses.
type DisplayOptions struct {
	Bus        string
	RadarAddr  uint16
	RotateAddr uint16
	Interval   time.Duration
}

// RunDisplay drives the radar and rotate OLED panels from the view until ctx
// is done.
func RunDisplay(ctx context.Context, view *StateView, opts DisplayOptions, logger *zap.SugaredLogger) error {
	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("display: failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(opts.Bus)
	if err != nil {
		return fmt.Errorf("display: failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	radar, rotate, err := openPanels(bus, opts, logger)
	if err != nil {
		return err
	}

	return runPanels(ctx, view, radar, rotate, opts.Interval, logger)
}

// openPanels initialises both panels on bus. A panel strapped to another
// address than 0x3C gets its transactions redirected.
func openPanels(bus i2c.Bus, opts DisplayOptions, logger *zap.SugaredLogger) (*ssd1306.Dev, *ssd1306.Dev, error) {
	if opts.RadarAddr == opts.RotateAddr {
		return nil, nil, fmt.Errorf("display: radar and rotate displays share address 0x%02X", opts.RadarAddr)
	}

	radar, err := ssd1306.NewI2C(panelBus(bus, opts.RadarAddr), &ssd1306.DefaultOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("display: failed to initialize radar display: %w", err)
	}
	logger.Infof("display: radar display initialized at 0x%02X", opts.RadarAddr)

	rotate, err := ssd1306.NewI2C(panelBus(bus, opts.RotateAddr), &ssd1306.DefaultOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("display: failed to initialize rotate display: %w", err)
	}
	logger.Infof("display: rotate display initialized at 0x%02X", opts.RotateAddr)
	return radar, rotate, nil
}

// addressedBus sends transactions for the ssd1306 driver's fixed address to
// addr instead.
type addressedBus struct {
	i2c.Bus
	addr uint16
}

func (b *addressedBus) Tx(addr uint16, w, r []byte) error {
	if addr == ssd1306Addr {
		addr = b.addr
	}
	return b.Bus.Tx(addr, w, r)
}

func panelBus(bus i2c.Bus, addr uint16) i2c.Bus {
	if addr == 0 || addr == ssd1306Addr {
		return bus
	}
	return &addressedBus{Bus: bus, addr: addr}
}

func runPanels(ctx context.Context, view *StateView, radar, rotate panel, interval time.Duration, logger *zap.SugaredLogger) error {
	if err := radar.Draw(radar.Bounds(), renderSplash("Inertial Radar", "Waiting for"), image.Point{}); err != nil {
		logger.Warnf("display: error showing radar splash: %v", err)
	}
	if err := rotate.Draw(rotate.Bounds(), renderSplash("Destination", "Waiting for"), image.Point{}); err != nil {
		logger.Warnf("display: error showing rotate splash: %v", err)
	}

	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("display: starting update loop")
	var last NavState
	for {
		select {
		case <-ctx.Done():
			return multierr.Combine(radar.Halt(), rotate.Halt())
		case <-ticker.C:
		}

		s := view.State()
		if s.Updated.Equal(last.Updated) {
			continue
		}
		last = s

		if err := radar.Draw(radar.Bounds(), renderRadar(s), image.Point{}); err != nil {
			logger.Warnf("display: error updating radar display: %v", err)
		}
		if err := rotate.Draw(rotate.Bounds(), renderRotate(s), image.Point{}); err != nil {
			logger.Warnf("display: error updating rotate display: %v", err)
		}
	}
}

func newCanvas(w, h int) (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawText(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func renderSplash(title, line string) *image1bit.VerticalLSB {
	img, d := newCanvas(panelWidth, panelHeight)
	drawText(d, 5, 26, title)
	drawText(d, 5, 43, line)
	drawText(d, 5, 56, "sensors")
	return img
}

// renderRadar draws the compass rose on the left half, north and the
// destination marker placed relative to the device heading, and the numbers
// on the right half.
func renderRadar(s NavState) *image1bit.VerticalLSB {
	img, d := newCanvas(panelWidth, panelHeight)

	drawCircle(img, roseCX, roseCY, roseRadius)
	// lubber line: the device's top edge
	drawLine(img, roseCX, roseCY-roseRadius, roseCX, roseCY-roseRadius+4)

	// north sits at -azimuth from the top edge
	nx, ny := polar(roseCX, roseCY, roseRadius-3, -s.Azimuth)
	drawLine(img, roseCX, roseCY, nx, ny)
	drawText(d, nx-3, ny+5, "N")

	if s.HasBearing {
		bx, by := polar(roseCX, roseCY, roseRadius-6, s.Relative)
		drawDot(img, bx, by, 2)
	}

	drawText(d, 68, 13, fmt.Sprintf("H %5.1f", s.Azimuth))
	if s.HasBearing {
		drawText(d, 68, 26, fmt.Sprintf("B %5.1f", s.Bearing))
	} else {
		drawText(d, 68, 26, "B   ---")
	}
	drawText(d, 68, 39, fmt.Sprintf("D %+5.1f", s.Declination))
	if s.HasDistance {
		drawText(d, 68, 52, formatDistance(s.Distance))
	}
	return img
}

// renderRotate draws distance and speed, counter-rotated by the display
// rotation so the text stays readable.
func renderRotate(s NavState) *image1bit.VerticalLSB {
	rot := ((s.DisplayRotation % 360) + 360) % 360
	w, h := panelWidth, panelHeight
	if rot == 90 || rot == 270 {
		w, h = panelHeight, panelWidth
	}
	img, d := newCanvas(w, h)

	dist := "---"
	if s.HasDistance {
		dist = formatDistance(s.Distance)
	}
	speed := s.SpeedText
	if speed == "" {
		speed = "--"
	}
	drawText(d, 0, 13, "DIST")
	drawText(d, 0, 28, dist)
	drawText(d, 0, 45, "SPEED")
	drawText(d, 0, 60, speed)

	return rotateCanvas(img, rot)
}

// formatDistance renders metres as "850 m" or "12.3 km".
func formatDistance(m int) string {
	if m < 1000 {
		return fmt.Sprintf("%d m", m)
	}
	if m < 100000 {
		return fmt.Sprintf("%.1f km", float64(m)/1000)
	}
	return fmt.Sprintf("%d km", m/1000)
}

// rotateCanvas rotates src clockwise by 0, 90, 180 or 270 degrees.
func rotateCanvas(src *image1bit.VerticalLSB, deg int) *image1bit.VerticalLSB {
	if deg == 0 {
		return src
	}
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	dw, dh := sw, sh
	if deg == 90 || deg == 270 {
		dw, dh = sh, sw
	}
	dst := image1bit.NewVerticalLSB(image.Rect(0, 0, dw, dh))
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			var sx, sy int
			switch deg {
			case 90:
				sx, sy = dy, sh-1-dx
			case 180:
				sx, sy = sw-1-dx, sh-1-dy
			case 270:
				sx, sy = sw-1-dy, dx
			default:
				sx, sy = dx, dy
			}
			dst.SetBit(dx, dy, src.BitAt(sx, sy))
		}
	}
	return dst
}

// polar returns the point at distance r from (cx, cy) in direction deg,
// clockwise from the top of the screen.
func polar(cx, cy, r int, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	x := float64(cx) + float64(r)*math.Sin(rad)
	y := float64(cy) - float64(r)*math.Cos(rad)
	return int(math.Round(x)), int(math.Round(y))
}

func setPixel(img *image1bit.VerticalLSB, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetBit(x, y, image1bit.On)
	}
}

func drawLine(img *image1bit.VerticalLSB, x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		setPixel(img, x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func drawCircle(img *image1bit.VerticalLSB, cx, cy, r int) {
	for deg := 0; deg < 360; deg += 2 {
		x, y := polar(cx, cy, r, float64(deg))
		setPixel(img, x, y)
	}
}

func drawDot(img *image1bit.VerticalLSB, cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				setPixel(img, cx+x, cy+y)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
