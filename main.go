// Package main provides a pointer to the APEX pipeline simulator CLI.
// APEX is a cycle-accurate, in-order 7-stage pipeline simulator for a
// teaching ISA.
//
// For the full CLI, use: go run ./cmd/apex
package main

import "fmt"

func main() {
	fmt.Println("APEX - in-order pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: apex <input_file> {simulate|display} [cycle_count]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to simulator configuration JSON file")
	fmt.Println("  -forwarding  Use Variant B (operand forwarding) instead of Variant A")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/apex' for the full CLI.")
}
