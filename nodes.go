package holokin

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID indexes the closed set of skeletal and reference points the solver
// works on. Nodes reference each other by index into flat arrays, never by
// pointer: the solve loop runs every frame and must not allocate.
type NodeID int

const (
	// Tracked inputs
	NodeHmd NodeID = iota
	NodeLeftAim
	NodeLeftGrip
	NodeRightAim
	NodeRightGrip
	// Helpers
	NodeNeckRoot
	NodeLeftWrist
	NodeRightWrist
	NodeBase
	NodeBalancePoint
	NodeLeftFootTarget
	NodeRightFootTarget
	// Body
	NodeHeadCenter
	NodeTorso
	NodePelvis
	NodeLeftPalm
	NodeLeftLowerArm
	NodeLeftUpperArm
	NodeLeftLowerLeg
	NodeLeftUpperLeg
	NodeLeftFoot
	NodeRightPalm
	NodeRightLowerArm
	NodeRightUpperArm
	NodeRightLowerLeg
	NodeRightUpperLeg
	NodeRightFoot

	NodeCount int = iota
)

var nodeNames = [NodeCount]string{
	NodeHmd:             "Hmd",
	NodeLeftAim:         "LeftAim",
	NodeLeftGrip:        "LeftGrip",
	NodeRightAim:        "RightAim",
	NodeRightGrip:       "RightGrip",
	NodeNeckRoot:        "NeckRoot",
	NodeLeftWrist:       "LeftWrist",
	NodeRightWrist:      "RightWrist",
	NodeBase:            "Base",
	NodeBalancePoint:    "BalancePoint",
	NodeLeftFootTarget:  "LeftFootTarget",
	NodeRightFootTarget: "RightFootTarget",
	NodeHeadCenter:      "HeadCenter",
	NodeTorso:           "Torso",
	NodePelvis:          "Pelvis",
	NodeLeftPalm:        "LeftPalm",
	NodeLeftLowerArm:    "LeftLowerArm",
	NodeLeftUpperArm:    "LeftUpperArm",
	NodeLeftLowerLeg:    "LeftLowerLeg",
	NodeLeftUpperLeg:    "LeftUpperLeg",
	NodeLeftFoot:        "LeftFoot",
	NodeRightPalm:       "RightPalm",
	NodeRightLowerArm:   "RightLowerArm",
	NodeRightUpperArm:   "RightUpperArm",
	NodeRightLowerLeg:   "RightLowerLeg",
	NodeRightUpperLeg:   "RightUpperLeg",
	NodeRightFoot:       "RightFoot",
}

var nodeIDByName = func() map[string]NodeID {
	m := make(map[string]NodeID, NodeCount)
	for id, name := range nodeNames {
		m[name] = NodeID(id)
	}
	return m
}()

func (id NodeID) String() string {
	if id < 0 || int(id) >= NodeCount {
		return "InvalidNode"
	}
	return nodeNames[id]
}

// WeightDistribution says which foot currently carries the body.
type WeightDistribution int

const (
	SharedWeight WeightDistribution = iota
	LeftPlanted
	RightPlanted
)

func (w WeightDistribution) String() string {
	switch w {
	case LeftPlanted:
		return "LeftPlanted"
	case RightPlanted:
		return "RightPlanted"
	default:
		return "SharedWeight"
	}
}

// IkState is the solver's whole mutable state: one pose per node plus the
// foot poses and weight distribution the stepping machine carries across
// ticks. It is created once and owned by the host simulation; the solve
// loop mutates it in place, one tick at a time.
type IkState struct {
	Positions [NodeCount]mgl32.Vec3
	Rotations [NodeCount]mgl32.Quat

	// Foot targets from the previous tick, nil until the first solve.
	LastLeftFoot  *Pose
	LastRightFoot *Pose

	Weight WeightDistribution
}

func NewIkState() *IkState {
	s := &IkState{}
	for i := range s.Rotations {
		s.Rotations[i] = mgl32.QuatIdent()
	}
	return s
}

func (s *IkState) Pose(id NodeID) Pose {
	return Pose{Position: s.Positions[id], Rotation: s.Rotations[id]}
}

// SetFixed overwrites a node pose from external input or a derived
// transform. Fixed nodes are rewritten every relaxation iteration so
// constraint corrections can never leak into them within a tick.
func (s *IkState) SetFixed(id NodeID, p Pose) {
	s.Positions[id] = p.Position
	s.Rotations[id] = p.Rotation.Normalize()
}
