package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/pkgmerge/pkg/errors"
	"github.com/arthur-debert/pkgmerge/pkg/filesystem"
	"github.com/arthur-debert/pkgmerge/pkg/spawn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (spawn.Result, error) {
	a := m.Called(name, args)
	return a.Get(0).(spawn.Result), a.Error(1)
}

func (m *MockRunner) LookPath(name string) (string, error) {
	a := m.Called(name)
	return a.String(0), a.Error(1)
}

// noHelpers is a runner for hosts without ldconfig or install-info.
func noHelpers() *MockRunner {
	r := &MockRunner{}
	r.On("LookPath", mock.Anything).Return("", errors.New(errors.ErrNotFound, "not found"))
	return r
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the CLI with an isolated environment.
func execute(t *testing.T, runner spawn.Runner, args ...string) result {
	t.Helper()
	t.Setenv("PKGMERGE_CONFIG_DIR", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	cmd := newRootCmd(&app{fsys: filesystem.NewOS(), runner: runner})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

const sampleRecord = `dir /usr
dir /usr/bin
obj /usr/bin/hello 5d41402abc4b2a76b9719d911017c592 1700000000
sym /usr/bin/hi -> hello 1700000000
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestVersion(t *testing.T) {
	res := execute(t, noHelpers(), "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "pkgmerge version dev")
}

func TestNoCommand(t *testing.T) {
	res := execute(t, noHelpers())
	assert.Error(t, res.err)
}

func TestHelpGroupsCommands(t *testing.T) {
	res := execute(t, noHelpers(), "--help")
	require.NoError(t, res.err)

	out := res.stdout
	assert.Contains(t, out, "USAGE:")
	assert.Contains(t, out, "pkgmerge <command> [flags]")
	core := strings.Index(out, "COMMANDS:")
	misc := strings.Index(out, "MISC:")
	require.True(t, core >= 0 && misc > core, "group headings in order:\n%s", out)
	assert.Contains(t, out[core:misc], "contents")
	assert.Contains(t, out[core:misc], "run")
	assert.Contains(t, out[misc:], "config")
	assert.Contains(t, out, "FLAGS:")
	assert.Contains(t, out, "--root")
	assert.Contains(t, out, "Run 'pkgmerge <command> --help'")
}

func TestContentsShow(t *testing.T) {
	root := t.TempDir()
	record := filepath.Join(t.TempDir(), "CONTENTS")
	writeFile(t, record, sampleRecord)

	res := execute(t, noHelpers(), "contents", "show", record, "--root", root, "--format", "text")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "file    /usr/bin/hello 5d41402abc4b2a76b9719d911017c592")
	assert.Contains(t, res.stdout, "symlink /usr/bin/hi -> hello")

	res = execute(t, noHelpers(), "contents", "show", record, "--root", root, "--format", "json")
	require.NoError(t, res.err)
	var doc entriesDoc
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Len(t, doc.Entries, 4)
	assert.Equal(t, record, doc.Record)
}

func TestContentsShowByPackageName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "var/db/pkg/app-misc/hello-1.0/CONTENTS"), sampleRecord)

	res := execute(t, noHelpers(), "contents", "show", "app-misc/hello-1.0", "--root", root, "--format", "yaml")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "location: /usr/bin/hello")

	res = execute(t, noHelpers(), "contents", "show", "app-misc/missing-1.0", "--root", root)
	assert.True(t, errors.IsErrorCode(res.err, errors.ErrNotFound))
}

func TestContentsCheck(t *testing.T) {
	root := t.TempDir()
	record := filepath.Join(t.TempDir(), "CONTENTS")
	writeFile(t, record, sampleRecord)
	writeFile(t, filepath.Join(root, "usr/bin/hello"), "hello")
	require.NoError(t, os.Symlink("hello", filepath.Join(root, "usr/bin/hi")))

	res := execute(t, noHelpers(), "contents", "check", record, "--root", root, "--format", "text")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "all entries match")

	writeFile(t, filepath.Join(root, "usr/bin/hello"), "tampered")
	res = execute(t, noHelpers(), "contents", "check", record, "--root", root, "--format", "text")
	require.Error(t, res.err)
	assert.True(t, errors.IsErrorCode(res.err, errors.ErrValidation))
	assert.Contains(t, res.stdout, "/usr/bin/hello: checksum differs")
}

func TestContentsDiff(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old"), sampleRecord)
	writeFile(t, filepath.Join(dir, "new"), strings.Replace(sampleRecord, "sym /usr/bin/hi -> hello 1700000000\n", "", 1)+
		"obj /usr/bin/bye bfa99df33b137bc8fb5f5407d7e58da8 1700000000\n")

	res := execute(t, noHelpers(), "contents", "diff", filepath.Join(dir, "old"), filepath.Join(dir, "new"),
		"--root", t.TempDir(), "--format", "text")
	require.NoError(t, res.err)
	assert.Equal(t, "- /usr/bin/hi\n+ /usr/bin/bye\n", res.stdout)
}

func TestContentsScan(t *testing.T) {
	image := t.TempDir()
	writeFile(t, filepath.Join(image, "usr/bin/hello"), "hello")
	output := filepath.Join(t.TempDir(), "db", "CONTENTS")

	res := execute(t, noHelpers(), "contents", "scan", image, "-o", output)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Wrote 3 entries")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "obj /usr/bin/hello 5d41402abc4b2a76b9719d911017c592 ")

	res = execute(t, noHelpers(), "contents", "scan", filepath.Join(image, "nope"))
	assert.True(t, errors.IsErrorCode(res.err, errors.ErrInvalidInput))
}

func TestTriggersList(t *testing.T) {
	res := execute(t, noHelpers(), "triggers", "list", "--format", "json")
	require.NoError(t, res.err)

	var doc struct {
		Triggers []triggerRow `json:"triggers"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	require.Len(t, doc.Triggers, 2)
	assert.Equal(t, "info_regen", doc.Triggers[0].Name)
	assert.Equal(t, "ldconfig", doc.Triggers[1].Name)
	assert.Equal(t, 10, doc.Triggers[1].Priority)
	assert.True(t, doc.Triggers[1].Enabled)
	assert.Equal(t, MsgHelperMissing, doc.Triggers[1].Helper)
	assert.Equal(t, "[]", doc.Triggers[1].Csets)
}

func TestRunInstallFromImage(t *testing.T) {
	root := t.TempDir()
	image := t.TempDir()
	writeFile(t, filepath.Join(image, "usr/share/info/hello.info"), "info")
	record := filepath.Join(root, "var/db/pkg/app-misc/hello-1.0/CONTENTS")

	res := execute(t, noHelpers(), "run", "install", "--root", root, "--image", image,
		"--install", record, "--save", "--format", "text")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "install transaction complete: pre_merge -> post_merge")
	assert.Contains(t, res.stderr, "install-info not found")
	assert.True(t, filesystem.Exists(filesystem.NewOS(), record))
	assert.True(t, filesystem.Exists(filesystem.NewOS(), filepath.Join(root, "etc/ld.so.conf")))
}

func TestRunRejectsBadInput(t *testing.T) {
	res := execute(t, noHelpers(), "run", "upgrade")
	assert.Error(t, res.err)

	res = execute(t, noHelpers(), "run", "install", "--root", t.TempDir(), "--trigger", "gconf")
	assert.True(t, errors.IsErrorCode(res.err, errors.ErrLookup))
}

func TestConfigShow(t *testing.T) {
	res := execute(t, noHelpers(), "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "[ldconfig]")
	assert.Regexp(t, `conf_path = ['"]etc/ld.so.conf['"]`, res.stdout)

	res = execute(t, noHelpers(), "config", "show", "--defaults")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "index_name = \"dir\"")
}
