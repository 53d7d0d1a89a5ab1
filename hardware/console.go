package hardware

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/hardware/cia"
	"github.com/jetsetilly/amichip/hardware/clocks"
	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/hardware/disk"
	"github.com/jetsetilly/amichip/hardware/memory"
	"github.com/jetsetilly/amichip/hardware/memory/rom"
	"github.com/jetsetilly/amichip/hardware/savestate"
	"github.com/jetsetilly/amichip/hardware/spec"
)

// Context is everything the console and its chips need from the outside world
type Context interface {
	memory.Context
	Break(error)
}

// NumDrives is the number of floppy drives attached to the console
const NumDrives = 4

// the default amount of chip RAM
const DefaultChipSize = 512 * 1024

var ErrDriveNumber = errors.New("hardware: no such drive")

// CIA-A port A
const (
	praOVL  = 0x01
	praLED  = 0x02
	praFIR0 = 0x40
	praFIR1 = 0x80
)

// State is the part of the console that isn't owned by one of the chips
type State struct {
	// ticks until the next E clock
	Divider int32

	// the power LED is bright when the line is low
	LED     bool
	Overlay bool

	// mouse buttons. true is pressed
	Fire [2]bool

	Frame int32
}

const stateVersion = 1

type Console struct {
	ctx Context
	g   *gui.GUI

	Mem    *memory.Memory
	Custom *custom.Custom
	CIAA   *cia.CIA
	CIAB   *cia.CIA
	Drives [NumDrives]*disk.Drive

	State State

	// frame limiter. only used when there is a gui
	limit *limiter
	image *image.RGBA
}

// Options for Create(). A nil Kickstart creates a ROM that reads as all ones
type Options struct {
	ChipSize  int
	SlowSize  int
	Kickstart []uint8
}

// Create the console. The gui argument can be nil
func Create(ctx Context, g *gui.GUI, opts Options) (*Console, error) {
	if opts.ChipSize == 0 {
		opts.ChipSize = DefaultChipSize
	}

	kick, err := rom.Create("kickstart", opts.Kickstart)
	if err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}

	con := &Console{
		ctx: ctx,
		g:   g,
	}

	var addChips memory.AddChips
	con.Mem, addChips = memory.Create(ctx, opts.ChipSize, opts.SlowSize, kick)

	for i := range con.Drives {
		con.Drives[i] = disk.Create(ctx, i)
	}

	con.Custom = custom.Create(ctx, con.Mem.Chip, driveWriter{con: con})

	con.CIAA = cia.Create(ctx, "CIA-A", cia.Ports{
		InputA:  con.inputCIAA,
		OutputA: con.outputCIAA,
	})
	con.CIAB = cia.Create(ctx, "CIA-B", cia.Ports{
		OutputB: con.outputCIAB,
	})

	addChips(con.Custom, &memory.CIABus{A: con.CIAA, B: con.CIAB})

	if g != nil {
		con.limit = newLimiter(spec.PAL)
		select {
		case g.AudioSetup <- gui.AudioSetup{
			Freq: clocks.AudioSampleRate,
			Read: con.AudioReader(),
		}:
		default:
		}
	}

	con.Reset(false)

	return con, nil
}

func (con *Console) Reset(random bool) {
	con.State = State{
		Divider: clocks.CIADivider,
	}
	con.Mem.Reset(random)
	con.Custom.Reset()
	for _, d := range con.Drives {
		d.Reset()
	}

	// the CIAs are reset last because the reset drives the output ports, which
	// sets the overlay
	con.CIAA.Reset()
	con.CIAB.Reset()
}

// the input lines of CIA-A port A are the drive status lines and the fire
// buttons. all are active low
func (con *Console) inputCIAA() uint8 {
	v := uint8(0xff)
	for _, d := range con.Drives {
		v &= d.Status()
	}
	if con.State.Fire[0] {
		v &^= praFIR0
	}
	if con.State.Fire[1] {
		v &^= praFIR1
	}
	return v
}

func (con *Console) outputCIAA(v uint8) {
	con.State.Overlay = v&praOVL == praOVL
	con.State.LED = v&praLED == 0
	con.Mem.Overlay = con.State.Overlay
}

func (con *Console) outputCIAB(v uint8) {
	for _, d := range con.Drives {
		d.Control(v)
	}
}

// driveWriter passes the result of a disk write DMA to the selected drive
type driveWriter struct {
	con *Console
}

func (w driveWriter) WriteTrack(data []byte) error {
	for _, d := range w.con.Drives {
		if d.State.Selected {
			return d.WriteTrack(data)
		}
	}
	return fmt.Errorf("hardware: disk write with no drive selected")
}

// Step advances the console by one tick
func (con *Console) Step(cpuWantsBus bool, pc uint32) custom.StepResult {
	res := con.Custom.Step(cpuWantsBus, pc)

	for _, d := range con.Drives {
		index, word, ready := d.Step()
		if !d.State.Selected {
			continue
		}
		if index {
			con.CIAB.Flag()
		}
		if ready {
			con.Custom.DiskWord(word)
		}
	}

	if res.Vsync {
		con.CIAA.TODPulse()
	}
	if res.Hsync {
		con.CIAB.TODPulse()
	}

	con.State.Divider--
	if con.State.Divider <= 0 {
		con.State.Divider = clocks.CIADivider
		con.CIAA.Step()
		con.CIAB.Step()
	}

	if con.CIAA.IRQ() {
		con.Custom.Interrupt(custom.IntPORTS)
	}
	if con.CIAB.IRQ() {
		con.Custom.Interrupt(custom.IntEXTER)
	}

	if res.FrameDone {
		con.State.Frame++
		con.endFrame()
	}

	return res
}

func (con *Console) endFrame() {
	if con.g == nil {
		return
	}
	con.handleInput()
	con.limit.Wait()
	con.PushRender()
}

// PushRender sends the current frame to the gui. The frame is dropped if the
// gui hasn't collected the previous one
func (con *Console) PushRender() {
	if con.g == nil {
		return
	}

	// a new image every time because the gui owns the image once it's been sent
	con.image = gui.FrameImage(con.Custom.Frame(), nil)
	beam := con.Custom.Beam()

	img := gui.Image{
		Main:   con.image,
		ID:     int(con.State.Frame),
		Cursor: gui.CursorPosition(beam.HPos, beam.VPos),
		LED:    con.State.LED,
	}
	for i, d := range con.Drives {
		img.DriveLED[i] = d.State.Motor
	}

	select {
	case con.g.SetImage <- img:
	default:
	}
}

// IPL is the interrupt priority level presented to the CPU
func (con *Console) IPL() uint8 {
	return con.Custom.IPL()
}

// Run steps the console until the stop channel is written to or the hook
// returns an error
func (con *Console) Run(stop chan bool, hook func(custom.StepResult) error) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		// check the stop channel once per line
		for range spec.ClksScanline {
			err := hook(con.Step(false, 0))
			if err != nil {
				return err
			}
		}
	}
}

func (con *Console) drive(n int) (*disk.Drive, error) {
	if n < 0 || n >= NumDrives {
		return nil, fmt.Errorf("%w: DF%d", ErrDriveNumber, n)
	}
	return con.Drives[n], nil
}

// Insert a disk into drive n. Any disk already in the drive is ejected
func (con *Console) Insert(n int, d diskimage.DiskFile) error {
	drv, err := con.drive(n)
	if err != nil {
		return err
	}
	drv.Insert(d)
	return nil
}

// Eject the disk in drive n. The result is nil if there was no disk
func (con *Console) Eject(n int) (diskimage.DiskFile, error) {
	drv, err := con.drive(n)
	if err != nil {
		return nil, err
	}
	return drv.Eject(), nil
}

func (con *Console) components() []savestate.Component {
	c := []savestate.Component{
		savestate.Value{
			Name:    "console",
			Version: stateVersion,
			State:   &con.State,
			Restored: func() {
				con.Mem.Overlay = con.State.Overlay
			},
		},
		savestate.Value{
			Name:    "chip",
			Version: 1,
			State:   con.Mem.Chip.Data(),
		},
		con.Custom,
		savestate.Value{
			Name:    con.CIAA.Label(),
			Version: 1,
			State:   &con.CIAA.State,
		},
		savestate.Value{
			Name:    con.CIAB.Label(),
			Version: 1,
			State:   &con.CIAB.State,
		},
	}
	if con.Mem.Slow != nil {
		c = append(c, savestate.Value{
			Name:    "slow",
			Version: 1,
			State:   con.Mem.Slow.Data(),
		})
	}
	for _, d := range con.Drives {
		c = append(c, savestate.Value{
			Name:     d.Label(),
			Version:  1,
			State:    &d.State,
			Restored: d.Restored,
		})
	}
	return c
}

// SaveState writes the state of the console. Disks are not part of the state
func (con *Console) SaveState(w io.Writer) error {
	return savestate.Save(w, con.components()...)
}

// LoadState replaces the state of the console with one written by SaveState()
func (con *Console) LoadState(r io.Reader) error {
	return savestate.Load(r, con.components()...)
}

func (con *Console) String() string {
	beam := con.Custom.Beam()
	return fmt.Sprintf("frame %d  v=%03x h=%03x  IPL %d  overlay %v  LED %v",
		con.State.Frame, beam.VPos, beam.HPos, con.IPL(), con.State.Overlay, con.State.LED)
}
