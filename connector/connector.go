// Package connector creates physical memories from connector arguments.
package connector

import (
	"errors"
	"io"
	"log"

	"github.com/sarchlab/rawmem/mem/physmem"
)

// Name is the name of the connector.
const Name = "rawmem"

var logger = log.New(io.Discard, "", log.LstdFlags)

// SetLogger sets where the connector reports the memories it creates.
func SetLogger(l *log.Logger) {
	logger = l
}

// Create opens the image named by the arguments. The memory is read-only
// unless writable=true is given.
func Create(args Args) (*physmem.Memory, error) {
	if args.Target == "" {
		return nil, invalidArgs(errors.New("`target` missing"))
	}

	base, err := args.base()
	if err != nil {
		return nil, err
	}

	writable, err := args.writable()
	if err != nil {
		return nil, err
	}

	m, err := physmem.Open(args.Target, base, writable)
	if err != nil {
		logger.Printf("%s: cannot open '%s': %v", Name, args.Target, err)
		return nil, err
	}

	mode := "RO mmap"
	if writable {
		mode = "RW file"
	}

	logger.Printf("%s: '%s' (%s) base=%#x", Name, args.Target, mode, base)

	return m, nil
}

// CreateFromString parses the argument string and opens the image.
func CreateFromString(s string) (*physmem.Memory, error) {
	args, err := ParseArgs(s)
	if err != nil {
		return nil, err
	}

	return Create(args)
}

// Help describes the arguments of the connector.
func Help() string {
	return `The rawmem connector exposes a raw memory image as physical memory.

Args:
  target    - path to the raw image (required)
  base      - optional physical base (hex like 0x100000000 or decimal)
  writable  - open the image for writing (default false, read-only mmap)

Examples:
  rawmem::/path/to/mem.img
  rawmem::/path/to/mem.img:base=0x100000000
  rawmem::/path/to/mem.img:base=0x1000,writable=true
`
}
