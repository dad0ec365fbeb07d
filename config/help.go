package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const HelpMessage = `
Mini ride booking server.

Usage:
  ride-booking [--config-path <file>] [--log-level <level>]
  ride-booking --help

Options:
  --config-path   Path to the config yaml file (default: config.yaml)
  --log-level     Overrides LOG_LEVEL: DEBUG, INFO, WARN or ERROR
  --help          Show this screen

Every config key can also be set through the environment,
e.g. DATABASE_DRIVER=postgres or EVENTS_SINKS=rabbitmq,kafka.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		pflag.Usage()
	}
}
