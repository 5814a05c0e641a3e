// Package cmd provides the command-line interface of rawmem.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/rawmem/connector"
)

var cfg config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rawmem",
	Short: "rawmem exposes a raw memory image as physical memory.",
	Long: `rawmem exposes a flat memory image, such as a physical memory ` +
		`snapshot, as physical memory. It can read and write the image at ` +
		`physical addresses and serve it over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return err
		}

		if err := loadEnvFiles(envFile); err != nil {
			return err
		}

		cfg, err = resolveConfig(cmd.Flags(), os.LookupEnv)
		if err != nil {
			return err
		}

		if cfg.Verbose {
			connector.SetLogger(log.New(os.Stderr, "", log.LstdFlags))
		}

		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("target", "", "path to the memory image")
	flags.String("base", "", "physical address of the first byte of the image")
	flags.Bool("writable", false, "open the image for writing")
	flags.String("trace", "", "record every access into this file")
	flags.String("trace-format", "sqlite", "format of the trace, sqlite or csv")
	flags.BoolP("verbose", "v", false, "report what the connector opens")
	flags.String("env-file", "", "load the configuration from this file")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
