package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rawmem/connector"
	"github.com/sarchlab/rawmem/mem/physmem"
)

var writeCmd = &cobra.Command{
	Use:   "write ADDR HEXDATA",
	Short: "Write bytes to physical memory.",
	Long: `Write the bytes given as hex at the physical address ADDR. The ` +
		`image must be opened with --writable.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		addr, err := connector.ParseBase(args[0])
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}

		data, err := decodeHex(args[1])
		if err != nil {
			return fmt.Errorf("invalid data: %w", err)
		}

		return runWrite(cfg, os.Stdout, addr, data)
	},
}

func runWrite(c config, w io.Writer, addr uint64, data []byte) (err error) {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	if err := physmem.WriteFrom(s.memory, addr, data); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%d bytes written at %#x\n", len(data), addr)

	return err
}

// decodeHex accepts hex data with an optional 0x prefix and spaces between
// bytes.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.ReplaceAll(s, " ", "")

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no data")
	}

	return data, nil
}

func init() {
	rootCmd.AddCommand(writeCmd)
}
