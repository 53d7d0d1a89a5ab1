package debugger

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type styles struct {
	beam       lipgloss.Style
	custom     lipgloss.Style
	mem        lipgloss.Style
	video      lipgloss.Style
	audio      lipgloss.Style
	disk       lipgloss.Style
	cia        lipgloss.Style
	err        lipgloss.Style
	breakpoint lipgloss.Style
	watch      lipgloss.Style
	debugger   lipgloss.Style
}

// ANSI Color reference
// 0	Black
// 1	Red
// 2	Green
// 3	Yellow
// 4	Blue
// 5	Magenta
// 6	Cyan
// 7	White
// 8	Bright Black (Gray)
// 9	Bright Red
// 10	Bright Green
// 11	Bright Yellow
// 12	Bright Blue
// 13	Bright Magenta
// 14	Bright Cyan
// 15	Bright White

func newStyles() styles {
	// no styling when the output is redirected
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		plain := lipgloss.NewStyle()
		return styles{
			beam:       plain,
			custom:     plain,
			mem:        plain,
			video:      plain,
			audio:      plain,
			disk:       plain,
			cia:        plain,
			err:        plain,
			breakpoint: plain,
			watch:      plain,
			debugger:   plain,
		}
	}

	return styles{
		beam:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		custom:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(4)),
		mem:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(5)),
		video:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		audio:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		disk:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(11)),
		cia:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(14)),
		err:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		breakpoint: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(4)),
		watch:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(0)).Background(lipgloss.ANSIColor(3)),
		debugger:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(2)),
	}
}
