// Command semu boots an xv6-style raw kernel image on the RV64IMA/Sv39 hart
// emulator in internal/riscv, driving its UART console and keyboard through
// a terminal UI.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/rv64go/xv6vm/internal/riscv"
)

const (
	cpuHz = 33_000_000
	fps   = 60
)

func main() {
	os.Exit(run())
}

func run() int {
	tracePath := flag.String("trace", "", "write an instruction trace to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <kernel image> [disk image]\n", os.Args[0])
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if flag.NArg() < 1 {
		flag.Usage()
		return 2
	}

	kernelPath := flag.Arg(0)
	kernel, err := os.ReadFile(kernelPath)
	if err != nil {
		logger.Error("failed to read kernel image", "path", kernelPath, "err", err)
		return 1
	}

	var disk []byte
	if flag.NArg() >= 2 {
		diskPath := flag.Arg(1)
		disk, err = os.ReadFile(diskPath)
		if err != nil {
			logger.Error("failed to read disk image", "path", diskPath, "err", err)
			return 1
		}
	}

	ram := riscv.NewRAM()
	if err := riscv.LoadKernel(ram, kernel); err != nil {
		logger.Error("failed to load kernel image", "err", err)
		return 1
	}

	// A terminal UI can't cheaply interleave raw console bytes with its own
	// cell buffer, so UART output goes straight to stdout; tcell owns only
	// keyboard capture (and, eventually, the framebuffer).
	uart := riscv.NewUART(func(b byte) { os.Stdout.Write([]byte{b}) })
	kbd := riscv.NewKeyboard()
	bus := riscv.NewBus(ram, uart, riscv.NewDisk(disk), kbd)
	hart := riscv.NewHart(bus)

	if *tracePath != "" {
		f, err := os.Create(*tracePath)
		if err != nil {
			logger.Error("failed to open trace file", "path", *tracePath, "err", err)
			return 1
		}
		defer f.Close()
		hart.Trace = f
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Error("failed to init terminal display", "err", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		logger.Error("failed to init terminal display", "err", err)
		return 1
	}
	defer screen.Fini()
	screen.Clear()

	events := make(chan tcell.Event, 16)
	go screen.ChannelEvents(events, nil)

	logger.Info("booting", "kernel", kernelPath, "ram_bytes", len(ram))

	return mainLoop(hart, screen, events, logger)
}

// mainLoop paces instruction execution at cpuHz by running a fixed
// cyclesPerTick = cpuHz/fps steps on each of fps ticks per second, and
// forwards terminal key events into the UART and keyboard devices between
// ticks. Grounded on the original source's main_loop's fixed
// cycles-per-tick budget. No framebuffer redraw is done per tick.
func mainLoop(hart *riscv.Hart, screen tcell.Screen, events <-chan tcell.Event, logger *slog.Logger) int {
	const cyclesPerTick = cpuHz / fps
	ticker := time.NewTicker(time.Second / fps)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventKey:
				if e.Key() == tcell.KeyCtrlC {
					return 0
				}
				forwardKey(hart, e)
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			for i := 0; i < cyclesPerTick; i++ {
				if err := hart.Step(); err != nil {
					logger.Error("hart halted", "err", err, "pc", fmt.Sprintf("%#x", hart.PC()))
					return 1
				}
			}
		}
	}
}

// forwardKey turns a terminal key event into a UART byte (xv6's console is
// the serial port) and, for non-printable keys, a keyboard scancode.
func forwardKey(hart *riscv.Hart, e *tcell.EventKey) {
	if r := e.Rune(); r != 0 {
		hart.PushUARTByte(byte(r))
		return
	}
	switch e.Key() {
	case tcell.KeyEnter:
		hart.PushUARTByte('\r')
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		hart.PushUARTByte(0x7f)
	default:
		hart.PushScancode(uint32(e.Key()))
	}
}
