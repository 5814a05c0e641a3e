package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rawmem/mem"
	"github.com/sarchlab/rawmem/mem/remap"
)

type infoRsp struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Base     uint64        `json:"base"`
	Metadata mem.Metadata  `json:"metadata"`
	Entries  []remap.Entry `json:"entries"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the metadata of the memory image.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runInfo(cfg, os.Stdout)
	},
}

func runInfo(c config, w io.Writer) (err error) {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	m := s.memory
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(infoRsp{
		ID:       m.ID(),
		Path:     m.Path(),
		Base:     m.Base(),
		Metadata: m.Metadata(),
		Entries:  m.Remapper().Entries(),
	})
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
