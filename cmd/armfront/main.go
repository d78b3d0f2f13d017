// Package main provides the entry point for armfront, a thin CLI driver
// around this module's translate package. It loads an ELF image, maps
// it into a guestmem.FlatMemory, translates exactly one basic block at
// a caller-given PC/mode/condition, and prints the resulting ssa.Block
// for manual inspection. There is no downstream codegen or dispatcher
// here — spec.md §1 scopes those out — so this CLI's only job is to let
// a developer see what one call to translate.Translate produces.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/sarchlab/armfront/arch"
	"github.com/sarchlab/armfront/armdecode"
	"github.com/sarchlab/armfront/guestmem"
	"github.com/sarchlab/armfront/ssa"
	"github.com/sarchlab/armfront/translate"
)

var (
	pc        = flag.Uint64("pc", 0, "program counter to translate from (hex accepted with 0x prefix)")
	thumb     = flag.Bool("thumb", false, "translate in Thumb mode")
	bigEndian = flag.Bool("endian-big", false, "translate in big-endian mode")
	cond      = flag.String("cond", "AL", "condition context to translate the block under (e.g. AL, EQ, NE)")
	verbose   = flag.Bool("v", false, "enable V(1) translator diagnostics")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: armfront [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	condCtx, err := parseCond(*cond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	prog, err := guestmem.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	mem := guestmem.NewFlatMemory()
	prog.MapInto(mem)

	loc := arch.LocationDescriptor{
		PC:               uint32(*pc),
		ThumbMode:        *thumb,
		EndianBig:        *bigEndian,
		ConditionContext: condCtx,
	}
	if *pc == 0 {
		loc.PC = prog.EntryPoint
		loc.ThumbMode = prog.ThumbEntry
	}

	log := logr.Discard()
	if *verbose {
		log = funcr.New(func(prefix, args string) {
			fmt.Fprintln(os.Stderr, prefix, args)
		}, funcr.Options{Verbosity: 1})
	}

	decoder := armdecode.NewDecoder()
	block, err := translate.Translate(mem, decoder, loc, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error translating block: %v\n", err)
		os.Exit(1)
	}

	printBlock(block)
}

func parseCond(s string) (arch.Cond, error) {
	names := map[string]arch.Cond{
		"EQ": arch.EQ, "NE": arch.NE, "CS": arch.CS, "CC": arch.CC,
		"MI": arch.MI, "PL": arch.PL, "VS": arch.VS, "VC": arch.VC,
		"HI": arch.HI, "LS": arch.LS, "GE": arch.GE, "LT": arch.LT,
		"GT": arch.GT, "LE": arch.LE, "AL": arch.AL, "NV": arch.NV,
	}
	if c, ok := names[s]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown condition code %q", s)
}

// printBlock renders a translated block in a flat, NodeID-addressed
// form: one line per instruction followed by the terminal, enough to
// check a lowering by eye without a disassembler.
func printBlock(b *ssa.Block) {
	fmt.Printf("block %s\n", b.Location)
	for _, v := range b.Values() {
		printValue(&v)
	}
	printTerminal(b.Terminal(), "")
	fmt.Printf("instructions translated: %d\n", b.InstructionsTranslated)
}

func printValue(v *ssa.Value) {
	operands := ""
	for i := 0; i < v.OperandCount(); i++ {
		if i > 0 {
			operands += ", "
		}
		operands += fmt.Sprintf("%%%d", v.Operand(i))
	}

	fmt.Printf("  %%%d = %s(%s)", v.ID(), v.Op(), operands)
	if v.WriteFlags() != 0 {
		fmt.Printf(" {writes %s}", v.WriteFlags())
	}
	fmt.Println()
}

func printTerminal(t ssa.Terminal, indent string) {
	switch t.Kind {
	case ssa.If:
		fmt.Printf("%sif %s:\n", indent, t.Cond)
		printTerminal(*t.Then, indent+"  ")
		fmt.Printf("%selse:\n", indent)
		printTerminal(*t.Else, indent+"  ")
	case ssa.Interpret, ssa.LinkBlock, ssa.LinkBlockFast:
		fmt.Printf("%s%s %s\n", indent, t.Kind, t.Next)
	default:
		fmt.Printf("%s%s\n", indent, t.Kind)
	}
}
