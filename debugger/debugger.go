package debugger

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/jetsetilly/amichip/debugger/dbg"
	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/hardware"
	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/logger"
	"github.com/jetsetilly/amichip/resources"
	"github.com/jetsetilly/amichip/wavwriter"
)

type input struct {
	s   string
	err error
}

// a breakpoint is a beam position. a negative horizontal position matches
// the whole line
type beamPos struct {
	v int32
	h int32
}

func (b beamPos) String() string {
	if b.h < 0 {
		return fmt.Sprintf("v=%03x", b.v)
	}
	return fmt.Sprintf("v=%03x h=%03x", b.v, b.h)
}

type debugger struct {
	ctx context

	guiQuit chan bool
	sig     chan os.Signal
	input   chan input

	g *gui.GUI

	console     *hardware.Console
	breakpoints map[beamPos]bool
	watches     map[uint32]watch

	// recent bus activity
	bus dbg.Context

	// the result of the most recent tick
	last custom.StepResult

	// rule for stepping. by default (the field is nil) the step will move
	// forward one tick
	stepRule func() bool
	postStep func()

	// disks to insert on console reset
	disks [hardware.NumDrives]string

	// save state to load on console reset
	state string

	// script of commands
	script []string

	// audio capture
	wav *wavwriter.WavWriter

	// printing styles
	styles styles
}

func (m *debugger) reset() {
	m.ctx.Reset()
	m.bus.Clear()
	m.console.Reset(true)
	fmt.Println(m.styles.debugger.Render("console reset"))

	for i, d := range m.disks {
		if d == "" {
			continue
		}
		if err := m.insert(i, d); err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			m.disks[i] = ""
		}
	}

	if m.state != "" {
		if err := m.loadState(m.state); err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
		}
	}

	fmt.Println(m.styles.custom.Render(m.console.Custom.String()))
}

func (m *debugger) insert(drive int, filename string) error {
	d, err := diskimage.LoadFile(filename)
	if err != nil {
		return err
	}
	err = m.console.Insert(drive, d)
	if err != nil {
		return err
	}
	m.disks[drive] = filename
	fmt.Println(m.styles.disk.Render(
		fmt.Sprintf("DF%d: %s", drive, filepath.Base(filename)),
	))
	return nil
}

func (m *debugger) saveState(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.console.SaveState(f)
}

func (m *debugger) loadState(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	err = m.console.LoadState(f)
	if err != nil {
		return err
	}
	fmt.Println(m.styles.debugger.Render(
		fmt.Sprintf("state loaded from %s", filepath.Base(filename)),
	))
	return nil
}

func (m *debugger) contextBreaks() error {
	if len(m.ctx.breaks) == 0 {
		return nil
	}

	err := m.ctx.breaks[0]
	for _, e := range m.ctx.breaks[1:] {
		err = fmt.Errorf("%w\n%w", err, e)
	}

	// breaks have been processed and so are now cleared
	m.ctx.breaks = m.ctx.breaks[:0]

	return err
}

// tick advances the emulation by one tick and records the result
func (m *debugger) tick() {
	m.last = m.console.Step(false, 0)
	m.bus.Add(m.last)
}

// pushRender sends the current state of the frame to the gui with the beam
// cursor visible
func (m *debugger) pushRender() {
	if m.g != nil {
		m.console.PushRender()
	}
}

func (m *debugger) setState(state gui.State) {
	if m.g == nil {
		return
	}

	// replace any state that the gui hasn't seen yet
	select {
	case <-m.g.State:
	default:
	}
	select {
	case m.g.State <- state:
	default:
	}
}

// step advances the emulation according to the current step rule. the step
// rule will be reset after the step has completed
//
// returns true if quit signal has been received
func (m *debugger) step() bool {
	// the number of ticks stepped over
	var ct int

	// loop until the step rule returns true
	var done bool
	for !done {
		select {
		case <-m.sig:
			done = true
			continue // for loop
		case <-m.guiQuit:
			return true
		default:
		}

		m.tick()
		ct++

		err := m.contextBreaks()
		if err != nil {
			fmt.Println(m.styles.breakpoint.Render(err.Error()))
			break // for loop
		}

		// apply step rule
		if m.stepRule == nil {
			done = true
		} else {
			done = m.stepRule()
		}
	}

	m.pushRender()

	// report how many ticks were stepped if it is more than one
	if ct > 1 {
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("%d ticks stepped", ct),
		))
	}

	if m.postStep == nil {
		// by default we print the general status of the emulation
		m.printLast()
	} else {
		m.postStep()
	}

	m.stepRule = nil
	m.postStep = nil

	return false
}

// printLast prints the use of the bus on the most recent tick
func (m *debugger) printLast() {
	res := m.last
	s := fmt.Sprintf("v=%03x h=%03x  %s", res.VPos, res.HPos, res.Bus)
	if res.Bus != custom.BusNone && res.Bus != custom.BusRefresh {
		s = fmt.Sprintf("%s %06x %04x", s, res.DMAAddr, res.DMAVal)
	}
	fmt.Println(m.styles.beam.Render(s))
}

// returns true if quit signal has been received
func (m *debugger) run() bool {
	fmt.Println(m.styles.debugger.Render("emulation running"))

	// we measure the number of frames in the time period of the running emulation
	startFrame := m.console.State.Frame
	startTime := time.Now()

	// errors returned by the hook to end the run
	var (
		breakpointErr = errors.New("breakpoint")
		watchErr      = errors.New("watch")
		contextErr    = errors.New("context")
		endRunErr     = errors.New("end run")
		quitErr       = errors.New("quit")
	)

	// hook is called after every tick
	hook := func(res custom.StepResult) error {
		m.last = res
		m.bus.Add(res)

		// checking for signals on every tick is too expensive
		if res.Hsync {
			select {
			case <-m.sig:
				return endRunErr
			case <-m.guiQuit:
				return quitErr
			default:
			}

			if m.g != nil {
				select {
				case cmd := <-m.g.Commands:
					if len(cmd) == 0 || strings.ToUpper(cmd[0]) == "PAUSE" {
						return endRunErr
					}
					// commands from the gui are run after the emulation has
					// stopped
					m.script = append(m.script, strings.Join(cmd, " "))
					return endRunErr
				default:
				}
			}
		}

		err := m.contextBreaks()
		if err != nil {
			return fmt.Errorf("%w%w", contextErr, err)
		}

		if len(m.breakpoints) > 0 {
			b := m.console.Custom.Beam()
			if m.breakpoints[beamPos{v: b.VPos, h: b.HPos}] || (b.HPos == 0 && m.breakpoints[beamPos{v: b.VPos, h: -1}]) {
				return fmt.Errorf("%w: v=%03x h=%03x", breakpointErr, b.VPos, b.HPos)
			}
		}

		if len(m.watches) > 0 {
			w, err := m.checkWatches()
			if err != nil {
				return fmt.Errorf("%w%w", contextErr, err)
			}
			if w != nil {
				return fmt.Errorf("%w: %s", watchErr, w)
			}
		}

		return nil
	}

	m.setState(gui.StateRunning)
	err := m.console.Run(nil, hook)
	m.setState(gui.StatePaused)

	if errors.Is(err, quitErr) {
		return true
	}

	m.pushRender()

	if errors.Is(err, endRunErr) {
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("%d frames in %.02f seconds", m.console.State.Frame-startFrame, time.Since(startTime).Seconds())),
		)
	} else if errors.Is(err, breakpointErr) {
		fmt.Println(m.styles.breakpoint.Render(err.Error()))
	} else if errors.Is(err, watchErr) {
		fmt.Println(m.styles.watch.Render(err.Error()))
	} else if errors.Is(err, contextErr) {
		s := strings.TrimPrefix(err.Error(), contextErr.Error())
		fmt.Println(m.styles.err.Render(s))
	} else if err != nil {
		fmt.Println(m.styles.err.Render(err.Error()))
	}

	// it's useful to see the state of the chips at the end of the run
	fmt.Println(m.styles.custom.Render(m.console.Custom.String()))

	return false
}

func (m *debugger) prompt() string {
	b := m.console.Custom.Beam()
	return fmt.Sprintf("%d:%03x:%03x> ", m.console.State.Frame, b.VPos, b.HPos)
}

func (m *debugger) loop() {
	var guiCommands chan []string
	if m.g != nil {
		guiCommands = m.g.Commands
	}

	for {
		var cmd []string

		if len(m.script) > 0 {
			fmt.Printf("%s%s\n", m.prompt(), m.script[0])
			cmd = strings.Fields(m.script[0])
			m.script = m.script[1:]
		} else {
			fmt.Print(m.prompt())

			select {
			case input := <-m.input:
				if input.err != nil {
					fmt.Println(m.styles.err.Render(input.err.Error()))
					return
				}
				cmd = strings.Fields(input.s)
				if len(cmd) == 0 {
					cmd = []string{"STEP"}
				}
			case c := <-guiCommands:
				fmt.Println(strings.Join(c, " "))
				cmd = c
			case <-m.sig:
				fmt.Print("\r")
				return
			case <-m.guiQuit:
				fmt.Print("\n")
				return
			}
		}

		if m.commands(cmd) {
			return
		}
	}
}

const programName = "amichip"

// names of the resources used by the debugger
const (
	kickstartResource = "kickstart"
	startupResource   = "startup"
)

func Launch(guiQuit chan bool, g *gui.GUI, args []string) error {
	var romfile string
	var chip int
	var slow int
	var wavfile string
	var profile bool
	var state string
	var script string
	var logging bool
	var seed uint64

	flgs := flag.NewFlagSet(programName, flag.ExitOnError)
	flgs.StringVar(&romfile, "rom", "", "Kickstart ROM image")
	flgs.IntVar(&chip, "chip", 512, "amount of chip RAM in kilobytes")
	flgs.IntVar(&slow, "slow", 0, "amount of slow RAM in kilobytes")
	flgs.StringVar(&wavfile, "wav", "", "record audio to WAV file")
	flgs.BoolVar(&profile, "profile", false, "create CPU profile for emulator")
	flgs.StringVar(&state, "state", "", "save state to load after reset")
	flgs.StringVar(&script, "script", "", "file of debugger commands to run on startup")
	flgs.Uint64Var(&seed, "seed", 0, "seed for uninitialised memory contents. zero for a random seed")
	flgs.BoolVar(&logging, "log", true, "log unsupported features and hardware events")
	err := flgs.Parse(args)
	if err != nil {
		return err
	}
	args = flgs.Args()

	if len(args) > hardware.NumDrives {
		return fmt.Errorf("too many disks for the number of drives")
	}

	// the last kickstart used is remembered between sessions
	if romfile == "" {
		d, err := resources.Read(kickstartResource)
		if err != nil {
			return fmt.Errorf("debugger: %w", err)
		}
		romfile = strings.TrimSpace(string(d))
	}

	var kick []uint8
	if romfile != "" {
		kick, err = os.ReadFile(romfile)
		if err != nil {
			return fmt.Errorf("debugger: %w", err)
		}
		if abs, err := filepath.Abs(romfile); err == nil {
			err = resources.Write(kickstartResource, []byte(abs))
			if err != nil {
				logger.Log(logger.Allow, "debugger", err)
			}
		}
	}

	m := &debugger{
		ctx: context{
			seed:    seed,
			logging: logging,
		},
		guiQuit:     guiQuit,
		g:           g,
		sig:         make(chan os.Signal, 1),
		input:       make(chan input, 1),
		state:       state,
		styles:      newStyles(),
		breakpoints: make(map[beamPos]bool),
		watches:     make(map[uint32]watch),
	}
	m.ctx.Reset()
	copy(m.disks[:], args)

	m.console, err = hardware.Create(&m.ctx, g, hardware.Options{
		ChipSize:  chip * 1024,
		SlowSize:  slow * 1024,
		Kickstart: kick,
	})
	if err != nil {
		return err
	}

	if wavfile != "" {
		m.wav, err = wavwriter.New(wavfile)
		if err != nil {
			return err
		}
		m.wav.Attach(m.console.Custom.Audio())
		defer func() {
			m.console.Custom.Audio().SetTap(nil)
			err := m.wav.Close()
			if err != nil {
				logger.Log(logger.Allow, "wavwriter", err)
			}
		}()
	}

	startup, err := resources.Lines(startupResource)
	if err != nil {
		return fmt.Errorf("debugger: %w", err)
	}
	m.addScript(startup)

	if script != "" {
		err = m.loadScript(script)
		if err != nil {
			return err
		}
	}

	signal.Notify(m.sig, syscall.SIGINT)

	go func() {
		r := bufio.NewReader(os.Stdin)
		b := make([]byte, 256)
		for {
			n, err := r.Read(b)
			if err != nil {
				// the loop must see the error so it can't be dropped
				m.input <- input{err: err}
				return
			}
			select {
			case m.input <- input{
				s: strings.TrimSpace(string(b[:n])),
			}:
			default:
			}
		}
	}()

	m.reset()
	m.setState(gui.StatePaused)
	m.pushRender()

	if profile {
		f, err := os.Create("cpu.profile")
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer func() {
			err := f.Close()
			if err != nil {
				logger.Log(logger.Allow, "performance", err)
			}
		}()

		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("performance: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	m.loop()

	return nil
}
