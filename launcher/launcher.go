// Package launcher execs a shell or a specific command inside a
// composed PES environment. It is the terminal step of both the
// "shell" and "shell -- <command>" CLI paths: by the time it runs, the
// resolve and the environment composition are done, and all that
// remains is replacing the current process image.
package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Shell identifies one of the supported interactive shells. Any other
// value is a configuration error.
type Shell string

const (
	Bash Shell = "bash"
	Tcsh Shell = "tcsh"
)

// args returns the shell-specific argv used to start an interactive,
// unconfigured session: bash gets "--noprofile --norc" so the
// composed environment isn't clobbered by the user's rc files, tcsh
// gets the equivalent "-f".
func (s Shell) args() ([]string, error) {
	switch s {
	case Bash:
		return []string{"bash", "--noprofile", "--norc"}, nil
	case Tcsh:
		return []string{"tcsh", "-f"}, nil
	default:
		return nil, fmt.Errorf("launcher: unsupported shell %q (want %q or %q)", s, Bash, Tcsh)
	}
}

// ShellFromEnv inspects $SHELL for a recognized shell name, falling
// back to Bash if unset or unrecognized.
func ShellFromEnv() Shell {
	switch base(os.Getenv("SHELL")) {
	case "tcsh", "csh":
		return Tcsh
	default:
		return Bash
	}
}

func base(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// execer abstracts process replacement so tests can substitute a fake
// in place of syscall.Exec (which, on success, never returns and
// terminates the test binary).
type execer interface {
	Exec(argv0 string, argv []string, envv []string) error
}

type syscallExecer struct{}

func (syscallExecer) Exec(argv0 string, argv []string, envv []string) error {
	return syscall.Exec(argv0, argv, envv)
}

// defaultExecer is replaced in tests with a fake that records its
// arguments instead of calling syscall.Exec.
var defaultExecer execer = syscallExecer{}

// Launcher holds the composed "KEY=value" environment a spawned
// process (shell or command) should run with.
type Launcher struct {
	env []string
}

// New returns a Launcher that will launch processes with env as their
// complete process environment (no merging with the caller's own
// os.Environ() — env is expected to already be the full, composed
// result of the environment composer).
func New(env []string) *Launcher {
	return &Launcher{env: env}
}

// Shell replaces the current process with an interactive instance of
// sh, run through /usr/bin/env so the composed env's PATH is honored
// when resolving the shell binary itself.
func (l *Launcher) Shell(sh Shell) error {
	shellArgv, err := sh.args()
	if err != nil {
		return err
	}
	argv := append([]string{"/usr/bin/env"}, shellArgv...)
	return defaultExecer.Exec("/usr/bin/env", argv, l.env)
}

// Run replaces the current process with command, run with the
// composed environment. Unlike Shell, it execs command directly
// rather than through an interactive shell wrapper.
func (l *Launcher) Run(command string, args []string) error {
	path, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("launcher: %w", err)
	}
	argv := append([]string{command}, args...)
	return defaultExecer.Exec(path, argv, l.env)
}
