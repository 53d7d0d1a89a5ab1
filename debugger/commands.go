package debugger

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/jetsetilly/amichip/disassembly"
	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/logger"
)

// parse a beam position for the BREAK command. a missing horizontal position
// means the start of the line
func parseBeam(cmd []string) (beamPos, error) {
	var b beamPos

	v, err := strconv.ParseInt(cmd[0], 0, 32)
	if err != nil || v < 0 || v >= spec.LinesLongFrame {
		return b, fmt.Errorf("line is not valid: %s", cmd[0])
	}
	b.v = int32(v)
	b.h = -1

	if len(cmd) > 1 {
		h, err := strconv.ParseInt(cmd[1], 0, 32)
		if err != nil || h < 0 || h >= spec.ClksScanline {
			return b, fmt.Errorf("horizontal position is not valid: %s", cmd[1])
		}
		b.h = int32(h)
	}

	return b, nil
}

func parseDrive(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "DF")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("drive is not valid: %s", s)
	}
	return n, nil
}

// the copper program counter, one of the location registers or an address
func (m *debugger) copperAddress(arg string) (uint32, error) {
	cop := &m.console.Custom.State.Copper
	switch strings.ToUpper(arg) {
	case "PC":
		return cop.PC, nil
	case "1", "LC1":
		return cop.LC[0], nil
	case "2", "LC2":
		return cop.LC[1], nil
	}
	a, err := strconv.ParseUint(strings.Replace(arg, "$", "0x", 1), 0, 24)
	if err != nil {
		return 0, fmt.Errorf("address is not valid: %s", arg)
	}
	return uint32(a), nil
}

// returns true if debugger is to quit
func (m *debugger) commands(cmd []string) bool {
	if len(cmd) == 0 {
		return false
	}

	switch strings.ToUpper(cmd[0]) {
	case "INSERT":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"INSERT requires a drive number and a filename",
			))
			break // switch
		}

		n, err := parseDrive(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}

		// filenames can contain spaces
		err = m.insert(n, strings.Join(cmd[2:], " "))
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
		}

	case "EJECT":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"EJECT requires a drive number",
			))
			break // switch
		}

		n, err := parseDrive(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}

		d, err := m.console.Eject(n)
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}
		m.disks[n] = ""

		if d == nil {
			fmt.Println(m.styles.disk.Render(fmt.Sprintf("DF%d: no disk", n)))
			break // switch
		}

		// an optional filename saves the ejected disk
		if len(cmd) > 2 {
			err = diskimage.Save(d, strings.Join(cmd[2:], " "))
			if err != nil {
				fmt.Println(m.styles.err.Render(err.Error()))
				break // switch
			}
		} else if d.Modified() {
			fmt.Println(m.styles.disk.Render(
				fmt.Sprintf("DF%d: changes to %s have been discarded", n, d.Label()),
			))
		}
		fmt.Println(m.styles.disk.Render(fmt.Sprintf("DF%d: ejected %s", n, d.Label())))

	case "LOADBIN":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"LOADBIN requires a filename and an origin address",
			))
			break // switch
		}

		ma, err := m.parseAddress(cmd[2])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("loadbin: %s", err.Error()),
			))
			break // switch
		}

		err = m.loadBinary(cmd[1], m.forWrite(ma))
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
		}

	case "SCRIPT":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"SCRIPT requires a filename",
			))
			break // switch
		}
		err := m.loadScript(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
		}

	case "R", "RUN":
		return m.run()

	case "ST", "STEP":
		if len(cmd) > 1 {
			if !m.parseStepRule(cmd[1:]) {
				break // switch
			}
		}
		return m.step()

	case "PAUSE":
		// the emulation is already paused if we're here

	case "RESET":
		m.reset()

	case "SAVE":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"SAVE requires a filename",
			))
			break // switch
		}
		err := m.saveState(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("state saved to %s", cmd[1]),
		))

	case "LOAD":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"LOAD requires a filename",
			))
			break // switch
		}
		err := m.loadState(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
			break // switch
		}
		m.bus.Clear()
		m.pushRender()

	case "CONSOLE":
		fmt.Println(m.styles.beam.Render(
			m.console.String(),
		))

	case "CUSTOM":
		fmt.Println(m.styles.custom.Render(
			m.console.Custom.String(),
		))

	case "REGS", "REGISTERS":
		// an optional argument filters the list by register name
		var filter string
		if len(cmd) > 1 {
			filter = strings.ToUpper(cmd[1])
		}
		for _, r := range m.console.Custom.Registers() {
			if filter != "" && !strings.HasPrefix(r.Name, filter) {
				continue
			}
			fmt.Println(m.styles.custom.Render(r.String()))
		}

	case "COPPER", "COP":
		fmt.Println(m.styles.video.Render(
			m.console.Custom.CopperString(),
		))

	case "COPLIST":
		// the copper list at the program counter, one of the location
		// registers or an address in chip RAM
		addr := m.console.Custom.State.Copper.PC
		n := 20
		if len(cmd) > 1 {
			var err error
			addr, err = m.copperAddress(cmd[1])
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("coplist: %s", err.Error()),
				))
				break // switch
			}
		}
		if len(cmd) > 2 {
			var err error
			n, err = strconv.Atoi(cmd[2])
			if err != nil || n < 1 {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("coplist: count is not valid: %s", cmd[2]),
				))
				break // switch
			}
		}

		entries, err := disassembly.Disassemble(m.console.Mem.Chip, addr&^1, n, m.console.Custom.RegisterName)
		for _, e := range entries {
			fmt.Println(m.styles.video.Render(e.String()))
		}
		if err != nil {
			fmt.Println(m.styles.err.Render(err.Error()))
		}

	case "BLITTER", "BLIT":
		fmt.Println(m.styles.video.Render(
			m.console.Custom.BlitterString(),
		))

	case "AUDIO":
		fmt.Println(m.styles.audio.Render(
			m.console.Custom.AudioString(),
		))
		if m.wav != nil {
			fmt.Println(m.styles.audio.Render(
				fmt.Sprintf("%d samples recorded", m.wav.Len()),
			))
		}

	case "CIA":
		fmt.Println(m.styles.cia.Render(
			m.console.CIAA.String(),
		))
		fmt.Println(m.styles.cia.Render(
			m.console.CIAB.String(),
		))

	case "DISK":
		fmt.Println(m.styles.disk.Render(
			m.console.Custom.DiskString(),
		))
		for _, d := range m.console.Drives {
			fmt.Println(m.styles.disk.Render(
				d.String(),
			))
		}

	case "SERIAL":
		s := m.console.Custom.SerialOutput()
		if s == "" {
			fmt.Println(m.styles.debugger.Render("no serial output"))
			break // switch
		}
		fmt.Println(s)

	case "RECENT", "TRACE":
		if strings.ToUpper(cmd[0]) == "TRACE" && len(cmd) == 2 {
			arg := strings.ToUpper(cmd[1])
			if arg == "END" {
				m.bus.EndTrace()
				fmt.Println(m.styles.debugger.Render("trace ended"))
				break // switch
			}

			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("cannot use TRACE %s", cmd[1]),
				))
				break // switch
			}
			m.bus.StartTrace(n)
			fmt.Println(m.styles.debugger.Render("trace started"))
			break // switch
		}

		l := m.bus.Recent
		if strings.ToUpper(cmd[0]) == "TRACE" {
			l = m.bus.Trace
		}

		n := 10
		if strings.ToUpper(cmd[0]) == "RECENT" && len(cmd) == 2 {
			var err error
			n, err = strconv.Atoi(cmd[1])
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("cannot use RECENT %s", cmd[1]),
				))
				break // switch
			}
		} else if strings.ToUpper(cmd[0]) == "TRACE" {
			n = len(l)
		}

		if len(l) == 0 {
			fmt.Println(m.styles.debugger.Render("no bus activity"))
			break // switch
		}

		n = max(len(l)-n, 0)
		for _, a := range l[n:] {
			fmt.Println(m.styles.beam.Render(a.String()))
		}

	case "DUMP":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"DUMP requires a 'from' and a 'to' address",
			))
			break // switch
		}

		from, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("dump: %s", err.Error()),
			))
			break // switch
		}

		to, err := m.parseAddress(cmd[2])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("dump: %s", err.Error()),
			))
			break // switch
		}

		if to.address < from.address {
			fmt.Println(m.styles.err.Render(
				"dump: the 'to' address is less than the 'from' address",
			))
			break // switch
		}

		if from.area != to.area {
			fmt.Println(m.styles.err.Render(
				"dump: the 'from' and 'to' addresses are in different memory areas",
			))
			break // switch
		}

		var column int
		for i := from.idx; i <= to.idx; i++ {
			address := from.address + i - from.idx

			if column == 0 {
				fmt.Printf("%06x", address)
			}

			data, err := peek(from, i)
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("dump address is not readable: %06x", address),
				))
				break // switch
			}
			fmt.Printf(" %02x", data)

			column++
			if column > 15 {
				fmt.Printf("\n")
				column = 0
			}
		}
		if column != 0 {
			fmt.Printf("\n")
		}

	case "PEEK":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"PEEK requires an address",
			))
			break // switch
		}

		ma, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("peek: %s", err.Error()),
			))
			break // switch
		}

		data, err := peek16(ma, ma.idx)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("peek address is not readable: %s", cmd[1]),
			))
			break // switch
		}

		fmt.Println(m.styles.mem.Render(
			fmt.Sprintf("$%06x = $%04x (%s)", ma.address&^1, data, ma.area.Label()),
		))

	case "POKE":
		if len(cmd) < 3 {
			fmt.Println(m.styles.err.Render(
				"POKE requires an address and a value",
			))
			break // switch
		}

		ma, err := m.parseAddress(cmd[1])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke: %s", err.Error()),
			))
			break // switch
		}

		v, err := strconv.ParseUint(cmd[2], 0, 16)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke: %s", err.Error()),
			))
			break // switch
		}

		// values larger than a byte are written as a word
		wa := m.forWrite(ma)
		if v > 0xff {
			err = wa.area.Write16(wa.idx&^1, uint16(v))
		} else {
			err = wa.area.Write8(wa.idx, uint8(v))
		}
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke address is not writeable: %s", cmd[1]),
			))
			break // switch
		}

		data, err := peek16(ma, ma.idx)
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("poke address is not readable: %s", cmd[1]),
			))
			break // switch
		}

		fmt.Println(m.styles.mem.Render(
			fmt.Sprintf("$%06x = $%04x (%s)", ma.address&^1, data, ma.area.Label()),
		))

	case "BREAK":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"BREAK requires a line and an optional horizontal position",
			))
			break // switch
		}

		// we check the first argument for special keywords before assuming
		// it is a beam position. the keywords are case insensitive
		arg := strings.ToUpper(cmd[1])

		if arg == "DROP" {
			if len(cmd) < 3 {
				fmt.Println(m.styles.err.Render(
					"BREAK DROP requires a line",
				))
				break // switch
			}

			if strings.ToUpper(cmd[2]) == "ALL" {
				clear(m.breakpoints)
				break // switch
			}

			b, err := parseBeam(cmd[2:])
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("breakpoint: %s", err.Error()),
				))
				break // switch
			}
			if _, ok := m.breakpoints[b]; !ok {
				fmt.Println(m.styles.debugger.Render(
					fmt.Sprintf("breakpoint for %s not present", b),
				))
				break // switch
			}
			delete(m.breakpoints, b)
			fmt.Println(m.styles.debugger.Render(
				fmt.Sprintf("breakpoint %s has been removed", b),
			))
			break // switch
		}

		b, err := parseBeam(cmd[1:])
		if err != nil {
			fmt.Println(m.styles.err.Render(
				fmt.Sprintf("breakpoint: %s", err.Error()),
			))
			break // switch
		}

		if _, ok := m.breakpoints[b]; ok {
			fmt.Println(m.styles.debugger.Render(
				fmt.Sprintf("breakpoint on %s already present", b),
			))
			break // switch
		}

		m.breakpoints[b] = true
		fmt.Println(m.styles.debugger.Render(
			fmt.Sprintf("added breakpoint for %s", b),
		))

	case "WATCH":
		if len(cmd) < 2 {
			fmt.Println(m.styles.err.Render(
				"WATCH requires an address",
			))
			break // switch
		}

		arg := strings.ToUpper(cmd[1])

		if arg == "DROP" {
			if len(cmd) < 3 {
				fmt.Println(m.styles.err.Render(
					"WATCH DROP requires an address",
				))
				break // switch
			}

			if strings.ToUpper(cmd[2]) == "ALL" {
				clear(m.watches)
				break // switch
			}

			ma, err := m.parseAddress(cmd[2])
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("watch: %s", err.Error()),
				))
				break // switch
			}
			if _, ok := m.watches[ma.address]; !ok {
				fmt.Println(m.styles.debugger.Render(
					fmt.Sprintf("watch for $%06x not present", ma.address),
				))
				break // switch
			}
			delete(m.watches, ma.address)
			fmt.Println(m.styles.debugger.Render(
				fmt.Sprintf("watch $%06x has been removed", ma.address),
			))
			break // switch
		}

		for i := 1; i < len(cmd); i++ {
			ma, err := m.parseAddress(cmd[i])
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("watch: %s", err.Error()),
				))
				break // switch
			}

			if _, ok := m.watches[ma.address]; ok {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("watch for $%06x already present", ma.address),
				))
				break // switch
			}

			d, err := peek16(ma, ma.idx)
			if err != nil {
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("watch address is not readable: $%06x", ma.address),
				))
				break // switch
			}

			m.watches[ma.address] = watch{
				ma:   ma,
				data: d,
			}
			fmt.Println(m.styles.debugger.Render(
				fmt.Sprintf("added watch for $%06x", ma.address),
			))
		}

	case "LIST":
		fmt.Println(m.styles.debugger.Render("breakpoints"))
		if len(m.breakpoints) == 0 {
			fmt.Println("none")
		} else {
			var l []string
			for b := range m.breakpoints {
				l = append(l, b.String())
			}
			slices.Sort(l)
			for _, s := range l {
				fmt.Println(s)
			}
		}
		fmt.Println(m.styles.debugger.Render("watches"))
		if len(m.watches) == 0 {
			fmt.Println("none")
		} else {
			var l []uint32
			for a := range m.watches {
				l = append(l, a)
			}
			slices.Sort(l)
			for _, a := range l {
				fmt.Printf("$%06x = $%04x\n", a, m.watches[a].data)
			}
		}

	case "LOG":
		switch len(cmd) {
		case 1:
			logger.Tail(os.Stdout, -1)
		case 2:
			c := strings.ToUpper(cmd[1])
			switch c {
			case "ECHO":
				logger.SetEcho(os.Stdout)
			case "NOECHO":
				logger.SetEcho(nil)
			case "CLEAR":
				logger.Clear()
			default:
				fmt.Println(m.styles.err.Render(
					fmt.Sprintf("unrecognised argument for LOG command: %s", c),
				))
			}
		default:
			fmt.Println(m.styles.err.Render(
				"too many arguments to LOG command",
			))
		}

	case "HELP":
		fmt.Println(m.styles.debugger.Render(help))

	case "QUIT":
		return true

	default:
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("unrecognised command: %s", strings.Join(cmd, " ")),
		))
	}

	return false
}

const help = `STEP [n|FRAME [n]|LINE [v]|BLITTER|COPPER|INTERRUPT]
RUN
RESET
INSERT drive file
EJECT drive [file]
SAVE file / LOAD file
LOADBIN file address
SCRIPT file
COPLIST [PC|LC1|LC2|address] [n]
CONSOLE / CUSTOM / REGS [prefix] / COPPER / BLITTER / AUDIO / CIA / DISK / SERIAL
RECENT [n] / TRACE [n|END]
PEEK address / POKE address value / DUMP from to
BREAK v [h] / BREAK DROP v [h]|ALL
WATCH address / WATCH DROP address|ALL
LIST
LOG [ECHO|NOECHO|CLEAR]
QUIT`
