package main

import (
	"fmt"
	"os"

	"github.com/jetsetilly/amichip/debugger"
	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/gui/ebiten"
)

func main() {
	var endGui chan bool
	var endDebugger chan bool
	var resultDebugger chan error

	// buffered channels. this means we don't have to worry about the gui closing
	// before the debugger and vice versa
	endGui = make(chan bool, 1)
	endDebugger = make(chan bool, 1)

	// the result channel is buffered because we don't know the order in which
	// the gui and debugger will end
	resultDebugger = make(chan error, 1)

	g := gui.NewGUI()

	go func() {
		resultDebugger <- debugger.Launch(endDebugger, g, os.Args[1:])
		endGui <- true
	}()

	// the window must be created on the main goroutine
	errGui := ebiten.Launch(endGui, g)
	endDebugger <- true

	if errGui != nil {
		fmt.Printf("*** %s\n", errGui)
	}
	if err := <-resultDebugger; err != nil {
		fmt.Printf("*** %s\n", err)
	}
}
