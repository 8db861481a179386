package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holokin/holokin"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Params  string
}

// NewRootCommand creates the root command for the holokin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "holokin",
		Short: "Full-body IK solver harness",
		Long: `Offline harness for the holokin full-body inverse-kinematics solver.

Snapshots of the node table (save/load via the library) are the fixture
format: replay one through the solver, or serve a replay to websocket
viewers.`,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Params, "params", "", "body parameter YAML file (defaults built in)")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func (o *RootOptions) logger() holokin.Logger {
	return holokin.NewDefaultLogger("holokin", o.Verbose)
}

func (o *RootOptions) loadParams() (*holokin.BodyParameters, error) {
	if o.Params == "" {
		return holokin.DefaultBodyParameters(), nil
	}
	params, err := holokin.LoadBodyParameters(o.Params)
	if err != nil {
		return nil, fmt.Errorf("loading parameters: %w", err)
	}
	return params, nil
}
