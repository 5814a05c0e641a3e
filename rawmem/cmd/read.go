package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rawmem/connector"
	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/physmem"
)

const bytesPerLine = 16

var readCmd = &cobra.Command{
	Use:   "read ADDR SIZE",
	Short: "Read a range of physical memory.",
	Long: `Read SIZE bytes starting at the physical address ADDR and print ` +
		`them as a hex dump. Both values accept the 0x prefix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := connector.ParseBase(args[0])
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}

		size, err := connector.ParseBase(args[1])
		if err != nil {
			return fmt.Errorf("invalid size: %w", err)
		}

		raw, err := cmd.Flags().GetBool("raw")
		if err != nil {
			return err
		}

		return runRead(cfg, os.Stdout, addr, size, raw)
	},
}

func runRead(c config, w io.Writer, addr, size uint64, raw bool) (err error) {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	buf, err := readRange(s.memory, addr, size)
	if err != nil {
		return err
	}

	if raw {
		_, err = w.Write(buf)
		return err
	}

	return dump(w, addr, buf)
}

// readRange reads size bytes at addr. Ranges that cannot fit in the memory are
// rejected before the buffer is allocated.
func readRange(m mem.PhysicalMemory, addr, size uint64) ([]byte, error) {
	md := m.Metadata()

	if size > 0 && (size > md.RealSize ||
		addr > md.MaxAddress ||
		size-1 > md.MaxAddress-addr) {
		return nil, mem.NewAccessError(mem.KindOutOfBounds, "read", addr, size)
	}

	buf := make([]byte, size)
	if err := physmem.ReadInto(m, addr, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// dump prints buf in lines of 16 bytes, each prefixed by its physical
// address.
func dump(w io.Writer, addr uint64, buf []byte) error {
	for i := 0; i < len(buf); i += bytesPerLine {
		line := buf[i:min(i+bytesPerLine, len(buf))]

		_, err := fmt.Fprintf(w, "%016x  %-47s  |%s|\n",
			addr+uint64(i), spaced(line), printable(line))
		if err != nil {
			return err
		}
	}

	return nil
}

func spaced(line []byte) string {
	words := make([]string, len(line))
	for i, b := range line {
		words[i] = hex.EncodeToString([]byte{b})
	}

	return strings.Join(words, " ")
}

func printable(line []byte) string {
	out := make([]byte, len(line))
	for i, b := range line {
		if b < 0x20 || b > 0x7e {
			b = '.'
		}

		out[i] = b
	}

	return string(out)
}

func init() {
	readCmd.Flags().Bool("raw", false, "write the bytes as they are")
	rootCmd.AddCommand(readCmd)
}
