// Command vm32asm assembles vm32 source into a flat image plus an optional
// debug-info file mapping emission address back to source line.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vm32/vm32/encoder"
	"github.com/vm32/vm32/parser"
	"github.com/vm32/vm32/vm"
)

func main() {
	var (
		outPath   = flag.String("o", "", "output image path (default: input file with .img extension)")
		debugPath = flag.String("g", "", "write debug info to this path (default: none)")
		startFlag = flag.String("base", "", "base address for layout (default: 0x0008DE00)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-o out.img] [-g out.dbg] [-base 0xADDR] input.casm\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	startAddr := vm.ImageBase
	if *startFlag != "" {
		v, err := parseAddr(*startFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vm32asm: invalid -base: %v\n", err)
			os.Exit(1)
		}
		startAddr = v
	}

	prog, p, err := parser.ParseFile(inPath, parser.DefaultParseFileOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "vm32asm: %v\n", err)
		if p != nil {
			fmt.Fprint(os.Stderr, p.Errors().PrintWarnings())
		}
		os.Exit(1)
	}
	if p.Errors().HasErrors() {
		fmt.Fprint(os.Stderr, p.Errors().Error())
		os.Exit(1)
	}
	fmt.Fprint(os.Stderr, p.Errors().PrintWarnings())

	symbols, err := parser.Layout(prog, startAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vm32asm: layout: %v\n", err)
		os.Exit(1)
	}

	image, debug, err := encoder.NewEncoder(symbols).Emit(prog, startAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vm32asm: %v\n", err)
		os.Exit(1)
	}

	if unused := symbols.GetUnusedSymbols(); len(unused) > 0 {
		for _, s := range unused {
			fmt.Fprintf(os.Stderr, "vm32asm: warning: %s: unused symbol %q\n", s.Pos, s.Name)
		}
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".img"
	}
	if err := os.WriteFile(out, image, 0o644); err != nil { // #nosec G306 -- assembler output is not sensitive
		fmt.Fprintf(os.Stderr, "vm32asm: writing %s: %v\n", out, err)
		os.Exit(1)
	}

	if *debugPath != "" {
		if err := os.WriteFile(*debugPath, encoder.EncodeDebugInfo(debug), 0o644); err != nil { // #nosec G306
			fmt.Fprintf(os.Stderr, "vm32asm: writing %s: %v\n", *debugPath, err)
			os.Exit(1)
		}
	}

	fmt.Printf("vm32asm: wrote %d bytes to %s\n", len(image), out)
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
