package ebiten

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/logger"
	"github.com/jetsetilly/amichip/version"
)

type windowGeometry struct {
	x, y int
	w, h int
}

func (g windowGeometry) valid() bool {
	return g.x >= 0 && g.y >= 0 && g.w > 0 && g.h > 0
}

type guiEbiten struct {
	g    *gui.GUI
	geom windowGeometry

	endGui chan bool

	state gui.State

	main   *ebiten.Image
	cursor [2]int

	// LEDs are drawn over the bottom right corner of the frame
	led      bool
	driveLED [4]bool

	// width/height of incoming image from emulation. not to be confused with window dimensions
	width  int
	height int

	// a simple counter used to implement a fade-in/fade-out effect for the
	// beam cursor
	cursorFrame int

	// the audio player can be stopped and recreated as required
	otoCtx *oto.Context
	audio  audioPlayer
}

func (eg *guiEbiten) Update() error {
	// deal with quit condition
	select {
	case <-eg.endGui:
		if eg.audio.p != nil {
			eg.audio.p.Close()
		}
		return ebiten.Termination
	default:
	}

	// handle user input
	err := eg.inputKeyboard()
	if err != nil {
		return ebiten.Termination
	}
	eg.inputMouse()

	// drag and drop of files is a special type of input
	err = eg.inputDragAndDrop()
	if err != nil {
		logger.Log(logger.Allow, "gui", err.Error())
	}

	// change state if necessary
	select {
	case eg.state = <-eg.g.State:
		eg.audio.setState(eg.state)
	default:
	}

	// create audio if necessary
	select {
	case s := <-eg.g.AudioSetup:
		if err := eg.setupAudio(s); err != nil {
			return fmt.Errorf("ebiten: %w", err)
		}
	default:
	}

	// run option update function
	if eg.g.UpdateGUI != nil {
		err := eg.g.UpdateGUI()
		if err != nil {
			return fmt.Errorf("ebiten: %w", err)
		}
	}

	// retrieve any pending images
	select {
	case img := <-eg.g.SetImage:
		eg.cursor = img.Cursor
		eg.led = img.LED
		eg.driveLED = img.DriveLED
		if img.Main != nil {
			if eg.main == nil || eg.main.Bounds() != img.Main.Bounds() {
				eg.width = img.Main.Bounds().Dx()
				eg.height = img.Main.Bounds().Dy()
				eg.main = ebiten.NewImage(eg.width, eg.height)
			}
			eg.main.WritePixels(img.Main.Pix)
		}
	default:
	}

	return nil
}

func (eg *guiEbiten) Draw(screen *ebiten.Image) {
	eg.cursorFrame++

	if eg.main != nil {
		var op ebiten.DrawImageOptions
		screen.DrawImage(eg.main, &op)

		// draw cursor if emulation is paused
		if eg.state == gui.StatePaused {
			v := uint8((math.Sin(float64(eg.cursorFrame/10))*0.5 + 0.5) * 255)
			c := color.RGBA{R: v, G: v, B: v, A: 255}
			screen.Set(eg.cursor[0], eg.cursor[1], c)
			screen.Set(eg.cursor[0]+1, eg.cursor[1], c)
			screen.Set(eg.cursor[0], eg.cursor[1]+1, c)
			screen.Set(eg.cursor[0]+1, eg.cursor[1]+1, c)
		}
	}

	eg.geom.x, eg.geom.y = ebiten.WindowPosition()
	eg.geom.w, eg.geom.h = ebiten.WindowSize()
}

var (
	powerOn  = color.RGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xff}
	powerOff = color.RGBA{R: 0x40, G: 0x08, B: 0x08, A: 0xff}
	driveOn  = color.RGBA{R: 0x20, G: 0xff, B: 0x20, A: 0xff}
	driveOff = color.RGBA{R: 0x08, G: 0x40, B: 0x08, A: 0xff}
)

const (
	ledWidth  = 12
	ledHeight = 4
	ledGap    = 4
)

// the power LED is rightmost with the LEDs of DF0 to DF3 to its left
func (eg *guiEbiten) drawLEDs(screen *ebiten.Image) {
	x := eg.width - ledWidth - ledGap
	y := eg.height - ledHeight - ledGap

	c := powerOff
	if eg.led {
		c = powerOn
	}
	led := image.Rect(x, y, x+ledWidth, y+ledHeight)
	screen.SubImage(led).(*ebiten.Image).Fill(c)

	for i := range eg.driveLED {
		x -= ledWidth + ledGap
		c := driveOff
		if eg.driveLED[i] {
			c = driveOn
		}
		led := image.Rect(x, y, x+ledWidth, y+ledHeight)
		screen.SubImage(led).(*ebiten.Image).Fill(c)
	}
}

func (eg *guiEbiten) Layout(width, height int) (int, int) {
	if eg.main != nil {
		return eg.width, eg.height
	}
	return width, height
}

// Launch the viewer. The function returns when the window is closed or when
// endGui is written to. It must be called from the main goroutine
func Launch(endGui chan bool, g *gui.GUI) error {
	ebiten.SetWindowTitle(version.Title())
	ebiten.SetVsyncEnabled(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowPosition(10, 10)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	eg := &guiEbiten{
		endGui: endGui,
		g:      g,
		state:  gui.StateRunning,
		audio: audioPlayer{
			state: gui.StateRunning,
		},
	}

	// wait for the first state change and a possible quit request
	select {
	case eg.state = <-g.State:
		eg.audio.setState(eg.state)
	case <-endGui:
		return nil
	}

	var err error

	eg.geom, err = onWindowOpen()
	if err != nil {
		logger.Log(logger.Allow, "gui", err.Error())
	}

	defer func() {
		err := onWindowClose(eg.geom)
		if err != nil {
			logger.Log(logger.Allow, "gui", err.Error())
			return
		}
	}()

	return ebiten.RunGame(eg)
}
