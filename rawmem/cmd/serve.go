package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rawmem/monitoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory image over HTTP.",
	Long: `Start the monitoring server, which exposes the metadata and the ` +
		`content of the memory image, and wait for an interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {
		flags := cmd.Flags()

		port := cfg.MonitorPort
		if flags.Changed("port") {
			if port, err = flags.GetInt("port"); err != nil {
				return err
			}
		}

		open, err := flags.GetBool("open")
		if err != nil {
			return err
		}

		maxRead, err := flags.GetUint64("max-read")
		if err != nil {
			return err
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer closeSession(s, &err)

		monitor := monitoring.NewMonitor().
			WithPortNumber(port).
			WithMaxReadSize(maxRead).
			WithWriteEnabled(cfg.Writable)
		monitor.RegisterMemory(s.memory)

		if s.tracer != nil {
			monitor.RegisterTracer(s.tracer)
		}

		url, err := monitor.StartServer()
		if err != nil {
			return err
		}

		if open {
			if err := browser.OpenURL(url + "/api/memory"); err != nil {
				fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		if err := monitor.StopServer(); err != nil {
			log.Print(err)
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port of the server, random if not set")
	serveCmd.Flags().Bool("open", false, "open the server in a browser")
	serveCmd.Flags().Uint64("max-read", monitoring.DefaultMaxReadSize,
		"largest number of bytes a request can read")
	rootCmd.AddCommand(serveCmd)
}
