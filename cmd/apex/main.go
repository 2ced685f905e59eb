// Package main provides the entry point for the APEX pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/apexsim/apex/asm"
	"github.com/apexsim/apex/config"
	"github.com/apexsim/apex/core"
	"github.com/apexsim/apex/pipeline"
	"github.com/apexsim/apex/report"
)

var (
	configPath = flag.String("config", "", "Path to simulator configuration JSON file")
	forwarding = flag.Bool("forwarding", false, "Use Variant B (operand forwarding) instead of Variant A (stall-only)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: apex <input_file> {simulate|display} [cycle_count]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	inputPath := flag.Arg(0)
	mode := flag.Arg(1)
	if mode != "simulate" && mode != "display" {
		fmt.Fprintf(os.Stderr, "Error: mode must be \"simulate\" or \"display\", got %q\n", mode)
		os.Exit(1)
	}

	var maxCycles uint64
	if flag.NArg() >= 3 {
		n, err := strconv.ParseUint(flag.Arg(2), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid cycle_count %q: %v\n", flag.Arg(2), err)
			os.Exit(1)
		}
		maxCycles = n
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	program, err := asm.Load(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing assembly file: %v\n", err)
		os.Exit(1)
	}

	variant := pipeline.VariantNoForwarding
	if *forwarding {
		variant = pipeline.VariantForwarding
	}
	c := core.New(variant, program, cfg)

	if mode == "display" {
		runDisplay(c, maxCycles)
		report.Summary(os.Stdout, c)
	} else {
		c.Run(maxCycles)
	}

	report.FinalState(os.Stdout, c, cfg.RegistersDisplayed, cfg.MemoryCellsDisplayed)
	os.Exit(0)
}

// runDisplay ticks the core one cycle at a time, printing the pipeline
// trace after each cycle, until it halts or maxCycles is exhausted.
func runDisplay(c *core.Core, maxCycles uint64) {
	for !c.Halted() {
		if maxCycles != 0 && c.Engine.Clock() >= maxCycles {
			return
		}
		c.Tick()
		report.Cycle(os.Stdout, c.Engine, c.Engine.Clock())
	}
}
