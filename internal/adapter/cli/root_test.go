package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/adapter/cli"
)

type fakeGateway struct {
	port int
	err  error
	runs int
}

func (f *fakeGateway) Run(_ context.Context, port int) error {
	f.runs++
	f.port = port
	return f.err
}

func newRoot(gateway *fakeGateway, out *bytes.Buffer) *cobra.Command {
	return cli.NewRootCommand(cli.Dependencies{
		Gateway:     gateway,
		Args:        cli.Arguments{OutWriter: out, ErrWriter: &bytes.Buffer{}},
		DefaultPort: 8080,
		Version:     "v1.2.3",
	})
}

func execute(root *cobra.Command, args ...string) error {
	root.SetArgs(args)
	return root.Execute()
}

func TestVersionFlag(t *testing.T) {
	out := &bytes.Buffer{}
	root := newRoot(&fakeGateway{}, out)

	err := execute(root, "--version")

	require.ErrorIs(t, err, cli.ErrVersionRequested)
	assert.Equal(t, "v1.2.3\n", out.String())
}

func TestServe_UsesDefaultPort(t *testing.T) {
	gateway := &fakeGateway{}
	root := newRoot(gateway, &bytes.Buffer{})

	err := execute(root, "serve")

	require.NoError(t, err)
	assert.Equal(t, 1, gateway.runs)
	assert.Equal(t, 8080, gateway.port)
}

func TestServe_PortFlagOverridesDefault(t *testing.T) {
	gateway := &fakeGateway{}
	root := newRoot(gateway, &bytes.Buffer{})

	err := execute(root, "serve", "--port", "9999")

	require.NoError(t, err)
	assert.Equal(t, 9999, gateway.port)
}

func TestServe_RejectsInvalidPort(t *testing.T) {
	gateway := &fakeGateway{}
	root := newRoot(gateway, &bytes.Buffer{})

	err := execute(root, "serve", "--port", "70000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Equal(t, 0, gateway.runs)
}

func TestServe_MissingGateway(t *testing.T) {
	root := cli.NewRootCommand(cli.Dependencies{
		Args: cli.Arguments{OutWriter: &bytes.Buffer{}, ErrWriter: &bytes.Buffer{}},
	})

	err := execute(root, "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestRootWithoutArgs_ShowsHelp(t *testing.T) {
	out := &bytes.Buffer{}
	root := newRoot(&fakeGateway{}, out)

	err := execute(root)

	require.NoError(t, err)
	assert.True(t, strings.Contains(out.String(), "serve"))
}
