package holokin

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ReplayOptions drive an offline solve of a recorded fixture.
type ReplayOptions struct {
	Ticks      int
	LeftStick  mgl32.Vec2
	RightStick mgl32.Vec2
}

// InputFromState rebuilds a FrameInput from the tracked-input nodes already
// stored in the state, typically right after loading a snapshot.
func InputFromState(state *IkState, leftStick, rightStick mgl32.Vec2) FrameInput {
	return FrameInput{
		Hmd:        state.Pose(NodeHmd),
		LeftGrip:   state.Pose(NodeLeftGrip),
		LeftAim:    state.Pose(NodeLeftAim),
		RightGrip:  state.Pose(NodeRightGrip),
		RightAim:   state.Pose(NodeRightAim),
		LeftStick:  leftStick,
		RightStick: rightStick,
	}
}

// Replay solves the given number of ticks with the tracked input held at
// the poses recorded in the state. Each tick calls the optional observer
// after the solve, which is how the CLI streams replays to debug viewers.
func Replay(state *IkState, params *BodyParameters, opts ReplayOptions, observe func(tick int, s *IkState)) {
	input := InputFromState(state, opts.LeftStick, opts.RightStick)
	for tick := 0; tick < opts.Ticks; tick++ {
		Solve(input, params, state)
		if observe != nil {
			observe(tick, state)
		}
	}
}
