package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/sarchlab/rawmem/connector"
)

// Environment variables recognized by the CLI. Flags take precedence.
const (
	envTarget      = "RAWMEM_TARGET"
	envBase        = "RAWMEM_BASE"
	envWritable    = "RAWMEM_WRITABLE"
	envTrace       = "RAWMEM_TRACE"
	envTraceFormat = "RAWMEM_TRACE_FORMAT"
	envMonitorPort = "RAWMEM_MONITOR_PORT"
	envVerbose     = "RAWMEM_VERBOSE"
)

type config struct {
	Target      string
	Base        string
	Writable    bool
	Trace       string
	TraceFormat string
	Verbose     bool
	MonitorPort int
}

// loadEnvFiles loads the given dotenv file, or .env if it exists. Variables
// that are already set are not overridden.
func loadEnvFiles(envFile string) error {
	if envFile != "" {
		return godotenv.Load(envFile)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// resolveConfig reads the environment and then applies the flags that were
// explicitly set.
func resolveConfig(flags *pflag.FlagSet, lookup func(string) (string, bool)) (
	config, error,
) {
	var c config
	var err error

	if v, ok := lookup(envTarget); ok {
		c.Target = v
	}

	if v, ok := lookup(envBase); ok {
		c.Base = v
	}

	if v, ok := lookup(envTrace); ok {
		c.Trace = v
	}

	if v, ok := lookup(envTraceFormat); ok {
		c.TraceFormat = v
	}

	if c.Writable, err = boolEnv(lookup, envWritable); err != nil {
		return c, err
	}

	if c.Verbose, err = boolEnv(lookup, envVerbose); err != nil {
		return c, err
	}

	if v, ok := lookup(envMonitorPort); ok && v != "" {
		c.MonitorPort, err = strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", envMonitorPort, err)
		}
	}

	err = applyFlags(&c, flags)

	return c, err
}

func applyFlags(c *config, flags *pflag.FlagSet) error {
	var err error

	if flags.Changed("target") {
		c.Target, err = flags.GetString("target")
		if err != nil {
			return err
		}
	}

	if flags.Changed("base") {
		c.Base, err = flags.GetString("base")
		if err != nil {
			return err
		}
	}

	if flags.Changed("writable") {
		c.Writable, err = flags.GetBool("writable")
		if err != nil {
			return err
		}
	}

	if flags.Changed("trace") {
		c.Trace, err = flags.GetString("trace")
		if err != nil {
			return err
		}
	}

	if flags.Changed("trace-format") {
		c.TraceFormat, err = flags.GetString("trace-format")
		if err != nil {
			return err
		}
	}

	if flags.Changed("verbose") {
		c.Verbose, err = flags.GetBool("verbose")
		if err != nil {
			return err
		}
	}

	return nil
}

func boolEnv(lookup func(string) (string, bool), name string) (bool, error) {
	v, ok := lookup(name)
	if !ok || v == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}

	return b, nil
}

// connectorArgs converts the configuration into connector arguments.
func (c config) connectorArgs() connector.Args {
	args := connector.Args{
		Target: c.Target,
		Extra:  map[string]string{},
	}

	if c.Base != "" {
		args.Extra["base"] = c.Base
	}

	if c.Writable {
		args.Extra["writable"] = "true"
	}

	return args
}
