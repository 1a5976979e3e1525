// Command vm32 loads a flat image into memory and runs it, optionally
// attaching a console device and dropping into the line debugger.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vm32/vm32/config"
	"github.com/vm32/vm32/debugger"
	"github.com/vm32/vm32/device"
	"github.com/vm32/vm32/loader"
	"github.com/vm32/vm32/vm"
)

func main() {
	cfg := config.DefaultConfig()
	if loaded, err := config.Load(); err == nil {
		cfg = loaded
	}

	var (
		debugMode = flag.Bool("debug", false, "start in the line debugger")
		tuiMode   = flag.Bool("tui", false, "start in the TUI debugger")
		console   = flag.Bool("console", true, "attach a console device at id 0")
		baseFlag  = flag.String("base", "", "image base address (default: 0x0008DE00)")
		entryFlag = flag.String("entry", "", "entry point address (default: word at 0x0008E000)")
		memSize   = flag.Uint("mem", uint(cfg.Execution.MemorySize), "memory size in bytes")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-debug|-tui] image.img\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	base := vm.ImageBase
	if *baseFlag != "" {
		v, err := strconv.ParseUint(strings.TrimPrefix(*baseFlag, "0x"), 16, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vm32: invalid -base: %v\n", err)
			os.Exit(1)
		}
		base = uint32(v)
	}

	mem := vm.NewMemory(uint32(memSize))
	if err := loader.LoadFile(mem, base, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "vm32: %v\n", err)
		os.Exit(1)
	}

	entry := vm.EntryPointAddr
	if *entryFlag != "" {
		v, err := strconv.ParseUint(strings.TrimPrefix(*entryFlag, "0x"), 16, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vm32: invalid -entry: %v\n", err)
			os.Exit(1)
		}
		entry = uint32(v)
	} else if w, err := mem.ReadWord(vm.EntryPointAddr); err == nil {
		entry = w
	}

	machine := vm.NewMachineContext(mem)

	var con *device.Console
	if *console {
		con = device.NewConsole(0)
		machine.RegisterDevice(0, con)
		go pumpConsole(con)
	}

	if *debugMode || *tuiMode {
		core := vm.NewDebugThreadCore(0, 0, machine, 0, mem.Size(), vm.PermRead|vm.PermWrite|vm.PermExecute)
		core.Regs.SetI(entry)

		dbg := debugger.NewDebugger(core)
		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "vm32: tui: %v\n", err)
				os.Exit(1)
			}
			return
		}
		fmt.Println("vm32 debugger - type 'help' for commands")
		if err := debugger.RunCLI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "vm32: debugger: %v\n", err)
			os.Exit(1)
		}
		return
	}

	id := machine.Spawn(0, entry, 0, mem.Size(), vm.PermRead|vm.PermWrite|vm.PermExecute)
	if t, ok := machine.Thread(id); ok {
		t.Wait()
	}
	machine.Shutdown()
}

// pumpConsole drains bytes the running program writes via outc to stdout,
// and feeds stdin bytes in for inc to read.
func pumpConsole(c *device.Console) {
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			b, err := reader.ReadByte()
			if err != nil {
				return
			}
			_, _ = c.Write([]byte{b})
		}
	}()

	for {
		if out := c.Drain(); len(out) > 0 {
			_, _ = os.Stdout.Write(out)
			continue
		}
		time.Sleep(time.Millisecond)
	}
}
