package main

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/holokin/holokin"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	In         string
	Out        string
	Ticks      int
	LeftStick  []float32
	RightStick []float32
}

// NewReplayCommand creates the replay command: load a snapshot, solve a
// number of ticks with the snapshot's tracked input held fixed, write the
// resulting snapshot.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Solve a snapshot offline",
		Long: `Load a node snapshot, run the solver for a fixed number of ticks with
the snapshot's tracked poses as input, and write the solved snapshot.

Examples:
  holokin replay --in fixture.snap --ticks 100 --out solved.snap
  holokin replay --in fixture.snap --left-stick 0,1 --out punch.snap`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts)
		},
	}

	cmd.Flags().StringVar(&opts.In, "in", "", "input snapshot file (required)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output snapshot file (default stdout)")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 100, "number of ticks to solve")
	cmd.Flags().Float32SliceVar(&opts.LeftStick, "left-stick", nil, "left thumbstick x,y in [-1,1]")
	cmd.Flags().Float32SliceVar(&opts.RightStick, "right-stick", nil, "right thumbstick x,y in [-1,1]")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func runReplay(opts *ReplayOptions) error {
	log := opts.logger()
	params, err := opts.loadParams()
	if err != nil {
		return err
	}

	state, err := loadState(opts.In)
	if err != nil {
		return err
	}
	left, err := stickArg(opts.LeftStick)
	if err != nil {
		return fmt.Errorf("--left-stick: %w", err)
	}
	right, err := stickArg(opts.RightStick)
	if err != nil {
		return fmt.Errorf("--right-stick: %w", err)
	}

	log.Debugf("replaying %s for %d ticks", opts.In, opts.Ticks)
	holokin.Replay(state, params, holokin.ReplayOptions{
		Ticks:      opts.Ticks,
		LeftStick:  left,
		RightStick: right,
	}, nil)
	log.Infof("solved %d ticks, weight distribution %s", opts.Ticks, state.Weight)

	if opts.Out == "" {
		return state.WriteSnapshot(os.Stdout)
	}
	f, err := os.Create(opts.Out)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()
	return state.WriteSnapshot(f)
}

func loadState(path string) (*holokin.IkState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	state := holokin.NewIkState()
	if err := state.LoadSnapshot(data); err != nil {
		return nil, err
	}
	return state, nil
}

func stickArg(v []float32) (mgl32.Vec2, error) {
	switch len(v) {
	case 0:
		return mgl32.Vec2{}, nil
	case 2:
		return mgl32.Vec2{v[0], v[1]}, nil
	default:
		return mgl32.Vec2{}, fmt.Errorf("want 2 components, got %d", len(v))
	}
}
