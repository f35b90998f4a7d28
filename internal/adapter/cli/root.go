package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// GatewayRunner runs the webhook gateway until the context is cancelled.
type GatewayRunner interface {
	Run(ctx context.Context, port int) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Gateway     GatewayRunner
	Args        Arguments
	DefaultPort int
	Version     string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "professor",
		Short: "AI-assisted pull request review service",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(serveCommand(deps.Gateway, deps.DefaultPort))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func serveCommand(gateway GatewayRunner, defaultPort int) *cobra.Command {
	var port int

	if defaultPort <= 0 {
		defaultPort = 8080
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GitHub webhook gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gateway == nil {
				return fmt.Errorf("webhook gateway is not configured")
			}
			if port <= 0 || port > 65535 {
				return fmt.Errorf("invalid port %d; must be between 1 and 65535", port)
			}
			return gateway.Run(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", defaultPort, "Port for the webhook HTTP listener")

	return cmd
}
