package envcompose

import (
	"os"
	"strings"

	"github.com/pesenv/pes/pathexpr"
)

// allowPrefixes are host environment variable name prefixes carried
// into the clean base environment.
var allowPrefixes = []string{
	"JSYS_",
	"LC_",
	"XDG_",
	"GNOME_",
	"GTK_",
	"QT_",
	"DBUS_",
}

// allowExact are individual host environment variable names carried
// into the clean base environment.
var allowExact = map[string]bool{
	"LANG":      true,
	"PAPERSIZE": true,
	"DISPLAY":   true,
	"XAUTHORITY": true,
	"TERM":      true,
	"COLORTERM": true,
	"USER":      true,
	"HOME":      true,
	"LOGNAME":   true,
	"SHELL":     true,
	"PATH":      true,
	"PWD":       true,
	"SHLVL":     true,
}

func hostVarAllowed(name string) bool {
	if allowExact[name] {
		return true
	}
	for _, prefix := range allowPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// BaseEnv is the curated, hygienic starting point for a composed
// environment: every value the current process's environment
// contributes is wrapped as a Prepend, so distributions layered on
// top can prepend/append/replace it per the ordinary merge rule.
type BaseEnv struct {
	entries map[string]pathexpr.PathExpression
	order   []string
}

// Snapshot reads os.Environ(), keeping only allow-listed variable
// names, and returns a BaseEnv ready to seed a Composer.
func Snapshot() BaseEnv {
	b := BaseEnv{entries: map[string]pathexpr.PathExpression{}}
	for _, kv := range os.Environ() {
		i := strings.IndexByte(kv, '=')
		if i < 0 {
			continue
		}
		name, value := kv[:i], kv[i+1:]
		if !hostVarAllowed(name) {
			continue
		}
		b.entries[name] = pathexpr.NewPrepend(strings.Split(value, ":")...)
		b.order = append(b.order, name)
	}
	return b
}
