// Package main is the entry of the rawmem command.
package main

import "github.com/sarchlab/rawmem/rawmem/cmd"

func main() {
	cmd.Execute()
}
