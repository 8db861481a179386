package main

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/holokin/holokin"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	In    string
	Addr  string
	Rate  int
	Watch bool
}

// NewServeCommand creates the serve command: replay a snapshot in a loop
// and stream every solved tick to websocket viewers.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream a replay to debug viewers",
		Long: `Replay a snapshot continuously and broadcast the solved node poses to
websocket viewers connected at /poses.

With --watch, the body parameter file given via --params is polled and
reloaded while serving, so tuning knobs can be edited live.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.In, "in", "", "input snapshot file (required)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8585", "listen address")
	cmd.Flags().IntVar(&opts.Rate, "rate", 72, "ticks per second")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "hot-reload the --params file")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runServe(opts *ServeOptions) error {
	log := opts.logger()
	params, err := opts.loadParams()
	if err != nil {
		return err
	}
	state, err := loadState(opts.In)
	if err != nil {
		return err
	}

	container := holokin.NewParamsContainer(params)
	if opts.Watch && opts.Params != "" {
		watcher := holokin.NewParamsWatcher(opts.Params, 500*time.Millisecond, container, log)
		watcher.Start()
		defer watcher.Stop()
	}

	server := holokin.NewDebugServer(log)
	go func() {
		input := holokin.InputFromState(state, mgl32.Vec2{}, mgl32.Vec2{})
		interval := time.Second / time.Duration(opts.Rate)
		tick := 0
		for range time.Tick(interval) {
			holokin.Solve(input, container.Get(), state)
			server.Broadcast(tick, state)
			tick++
		}
	}()
	return server.ListenAndServe(opts.Addr)
}
