// Command pes resolves package version constraints into a concrete
// environment and launches a shell or command inside it.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pesenv/pes/version"
)

// Version identifies the build of pes. Overridden by CI via
// -ldflags at release time.
var Version = "dev"

var (
	debug    bool
	logLevel string
	log      = logrus.New()
)

var validLogLevels = map[string]logrus.Level{
	"trace":    logrus.TraceLevel,
	"debug":    logrus.DebugLevel,
	"info":     logrus.InfoLevel,
	"warn":     logrus.WarnLevel,
	"error":    logrus.ErrorLevel,
	"critical": logrus.FatalLevel,
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pes",
		Short:         "Resolve package constraints and launch an environment",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if debug {
				level = "debug"
			}
			lvl, ok := validLogLevels[level]
			if !ok {
				return fmt.Errorf("unknown log level %q (want one of trace, debug, info, warn, error, critical)", level)
			}
			log.SetLevel(lvl)
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging (shorthand for -l debug)")
	root.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "trace|debug|info|warn|error|critical")

	root.AddCommand(newEnvCmd())
	root.AddCommand(newShellCmd())
	root.AddCommand(newAuditCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// releaseTypeFlag parses the --pre-release flag's value into a
// version.ReleaseType, defaulting to Release (stable-only) when empty.
func releaseTypeFlag(s string) (version.ReleaseType, error) {
	switch s {
	case "", "release":
		return version.Release, nil
	case "rc":
		return version.ReleaseCandidate, nil
	case "beta":
		return version.Beta, nil
	case "alpha":
		return version.Alpha, nil
	default:
		return 0, fmt.Errorf("unknown --pre-release value %q (want release, rc, beta, or alpha)", s)
	}
}
