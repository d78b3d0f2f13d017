// Package main provides a pointer to the real entry point.
// armfront is an ARM/Thumb dynamic recompiler front-end: it decodes a
// guest instruction stream and lowers it to the SSA IR in the ssa
// package.
//
// For the full CLI, use: go run ./cmd/armfront
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("armfront - ARM/Thumb SSA translation front-end")
	fmt.Println("")
	fmt.Println("Usage: armfront [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -pc          program counter to translate from")
	fmt.Println("  -thumb       translate in Thumb mode")
	fmt.Println("  -cond        condition context (default AL)")
	fmt.Println("  -v           verbose translator diagnostics")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/armfront' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/armfront' instead.")
	}
}
