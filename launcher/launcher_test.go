package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecer struct {
	argv0 string
	argv  []string
	envv  []string
}

func (f *fakeExecer) Exec(argv0 string, argv []string, envv []string) error {
	f.argv0 = argv0
	f.argv = argv
	f.envv = envv
	return nil
}

func withFakeExecer(t *testing.T) *fakeExecer {
	t.Helper()
	fake := &fakeExecer{}
	old := defaultExecer
	defaultExecer = fake
	t.Cleanup(func() { defaultExecer = old })
	return fake
}

func TestShellFromEnvDefaultsToBash(t *testing.T) {
	t.Setenv("SHELL", "")
	assert.Equal(t, Bash, ShellFromEnv())
}

func TestShellFromEnvRecognizesTcsh(t *testing.T) {
	t.Setenv("SHELL", "/bin/tcsh")
	assert.Equal(t, Tcsh, ShellFromEnv())
}

func TestLauncherShellBash(t *testing.T) {
	fake := withFakeExecer(t)
	l := New([]string{"PATH=/r/foo/1.0.0/bin"})
	require.NoError(t, l.Shell(Bash))

	assert.Equal(t, "/usr/bin/env", fake.argv0)
	assert.Equal(t, []string{"/usr/bin/env", "bash", "--noprofile", "--norc"}, fake.argv)
	assert.Equal(t, []string{"PATH=/r/foo/1.0.0/bin"}, fake.envv)
}

func TestLauncherShellTcsh(t *testing.T) {
	fake := withFakeExecer(t)
	l := New(nil)
	require.NoError(t, l.Shell(Tcsh))
	assert.Equal(t, []string{"/usr/bin/env", "tcsh", "-f"}, fake.argv)
}

func TestLauncherShellUnknownIsConfigError(t *testing.T) {
	withFakeExecer(t)
	l := New(nil)
	err := l.Shell(Shell("fish"))
	require.Error(t, err)
}

func TestLauncherRunUsesComposedEnv(t *testing.T) {
	fake := withFakeExecer(t)
	l := New([]string{"PYTHONPATH=/r/foo/python"})
	require.NoError(t, l.Run("true", []string{"arg1"}))

	require.Len(t, fake.argv, 2)
	assert.Equal(t, "true", fake.argv[0])
	assert.Equal(t, "arg1", fake.argv[1])
	assert.Equal(t, []string{"PYTHONPATH=/r/foo/python"}, fake.envv)
}
