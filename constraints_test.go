package holokin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const convergenceIterations = 50

func checkUnitRotations(t *testing.T, s *IkState) {
	t.Helper()
	for id := 0; id < NodeCount; id++ {
		if l := s.Rotations[id].Len(); math.Abs(float64(l)-1) > 1e-5 {
			t.Errorf("node %s rotation norm %v, want 1", NodeID(id), l)
		}
	}
}

func TestSphericalConvergence(t *testing.T) {
	s := NewIkState()
	anchor := Pose{Position: mgl32.Vec3{0, 1, 0}, Rotation: mgl32.QuatIdent()}
	s.SetFixed(NodeTorso, anchor)
	s.Positions[NodePelvis] = mgl32.Vec3{0.5, 0.3, -0.2}

	c := SphericalConstraint{NodeA: NodeTorso, NodeB: NodePelvis}
	for i := 0; i < convergenceIterations; i++ {
		s.SetFixed(NodeTorso, anchor)
		c.Apply(s)
	}
	s.SetFixed(NodeTorso, anchor)

	p1 := s.Pose(NodeTorso).TransformPoint(c.PointInA)
	p2 := s.Pose(NodePelvis).TransformPoint(c.PointInB)
	if gap := p1.Sub(p2).Len(); gap > 1e-4 {
		t.Errorf("spherical constraint gap %v after %d passes", gap, convergenceIterations)
	}
	checkUnitRotations(t, s)
}

func TestSphericalLeverArm(t *testing.T) {
	// An off-center attachment must also rotate the free body.
	s := NewIkState()
	anchor := PoseIdent()
	s.SetFixed(NodeTorso, anchor)
	s.Positions[NodePelvis] = mgl32.Vec3{0.4, 0, 0}

	c := SphericalConstraint{
		NodeA:    NodeTorso,
		NodeB:    NodePelvis,
		PointInB: mgl32.Vec3{0, 0.3, 0},
	}
	for i := 0; i < convergenceIterations; i++ {
		s.SetFixed(NodeTorso, anchor)
		c.Apply(s)
	}
	if s.Rotations[NodePelvis].Dot(mgl32.QuatIdent()) > 1-1e-6 {
		t.Errorf("free body with offset attachment should have rotated, got %v", s.Rotations[NodePelvis])
	}
	checkUnitRotations(t, s)
}

func TestDistanceConvergence(t *testing.T) {
	s := NewIkState()
	anchor := PoseIdent()
	s.SetFixed(NodeTorso, anchor)
	s.Positions[NodeLeftUpperArm] = mgl32.Vec3{1, 0, 0}

	c := DistanceConstraint{NodeA: NodeTorso, NodeB: NodeLeftUpperArm, Distance: 0.4}
	for i := 0; i < convergenceIterations; i++ {
		s.SetFixed(NodeTorso, anchor)
		c.Apply(s)
	}
	s.SetFixed(NodeTorso, anchor)

	sep := s.Positions[NodeTorso].Sub(s.Positions[NodeLeftUpperArm]).Len()
	if math.Abs(float64(sep)-0.4) > 1e-4 {
		t.Errorf("distance constraint separation %v, want 0.4", sep)
	}
	checkUnitRotations(t, s)
}

func TestCardanPerpendicularity(t *testing.T) {
	s := NewIkState()
	c := AngularCardanConstraint{
		NodeA:   NodeLeftUpperLeg,
		NodeB:   NodeLeftLowerLeg,
		AxisInA: mgl32.Vec3{1, 0, 0},
		AxisInB: mgl32.Vec3{0.5, 1, 0.2}.Normalize(),
	}
	for i := 0; i < convergenceIterations; i++ {
		c.Apply(s)
	}
	axis1 := s.Rotations[c.NodeA].Rotate(c.AxisInA)
	axis2 := s.Rotations[c.NodeB].Rotate(c.AxisInB)
	if d := math.Abs(float64(axis1.Dot(axis2))); d > 1e-3 {
		t.Errorf("cardan axes not perpendicular, |dot| = %v", d)
	}
	checkUnitRotations(t, s)
}

func TestCardanDegenerateAxes(t *testing.T) {
	// Parallel axes give a zero cross product; the correction must be
	// skipped, not become NaN.
	s := NewIkState()
	c := AngularCardanConstraint{
		NodeA:   NodeLeftUpperLeg,
		NodeB:   NodeLeftLowerLeg,
		AxisInA: mgl32.Vec3{1, 0, 0},
		AxisInB: mgl32.Vec3{1, 0, 0},
	}
	c.Apply(s)
	for id := 0; id < NodeCount; id++ {
		q := s.Rotations[id]
		for _, v := range []float32{q.W, q.X(), q.Y(), q.Z()} {
			if math.IsNaN(float64(v)) {
				t.Fatalf("NaN in rotation of %s", NodeID(id))
			}
		}
	}
}

func TestCompliantSphericalSofter(t *testing.T) {
	move := func(compliance float32) float32 {
		s := NewIkState()
		s.SetFixed(NodeTorso, PoseIdent())
		s.Positions[NodeLeftUpperArm] = mgl32.Vec3{0.5, 0, 0}
		c := CompliantSphericalConstraint{
			NodeA: NodeTorso, NodeB: NodeLeftUpperArm, Compliance: compliance,
		}
		s.SetFixed(NodeTorso, PoseIdent())
		c.Apply(s)
		return 0.5 - s.Positions[NodeLeftUpperArm].X()
	}
	if soft, stiff := move(25), move(0); soft >= stiff {
		t.Errorf("compliance 25 moved %v, compliance 0 moved %v; want softer", soft, stiff)
	}
}

func TestCompliantFixedAngleConvergence(t *testing.T) {
	s := NewIkState()
	fixed := PoseIdent()
	s.SetFixed(NodeLeftLowerArm, fixed)
	s.Rotations[NodeLeftPalm] = mgl32.QuatRotate(0.8, mgl32.Vec3{0, 1, 0})

	c := CompliantFixedAngleConstraint{
		NodeA: NodeLeftLowerArm,
		NodeB: NodeLeftPalm,
		BInA:  mgl32.QuatIdent(),
	}
	for i := 0; i < 100; i++ {
		s.SetFixed(NodeLeftLowerArm, fixed)
		c.Apply(s)
	}
	s.SetFixed(NodeLeftLowerArm, fixed)

	delta := s.Rotations[NodeLeftPalm].Mul(s.Rotations[NodeLeftLowerArm].Inverse())
	_, angle := quatAxisAngle(delta)
	if math.Abs(float64(angle)) > 1e-3 {
		t.Errorf("fixed-angle residual %v rad", angle)
	}
	checkUnitRotations(t, s)
}

func TestCompliantHingeAlignment(t *testing.T) {
	s := NewIkState()
	c := CompliantHingeAngleConstraint{
		NodeA:   NodeLeftUpperArm,
		NodeB:   NodeLeftLowerArm,
		AxisInA: mgl32.Vec3{1, 0, 0},
		AxisInB: mgl32.Vec3{0.6, 0.8, 0},
	}
	for i := 0; i < 200; i++ {
		c.Apply(s)
	}
	axis1 := s.Rotations[c.NodeA].Rotate(c.AxisInA)
	axis2 := s.Rotations[c.NodeB].Rotate(c.AxisInB)
	if d := axis1.Dot(axis2); d < 0.999 {
		t.Errorf("hinge axes not aligned, dot = %v", d)
	}
	checkUnitRotations(t, s)
}

func TestAnchorPullsTowardTarget(t *testing.T) {
	s := NewIkState()
	target := Pose{
		Position: mgl32.Vec3{1, 0.5, -0.25},
		Rotation: mgl32.QuatRotate(0.9, mgl32.Vec3{0, 0, 1}),
	}
	c := AnchorFromPose(NodeLeftFoot, mgl32.Vec3{}, target, 0.25)
	for i := 0; i < 100; i++ {
		c.Apply(s)
	}
	nearVec3(t, s.Positions[NodeLeftFoot], target.Position, 1e-4, "anchored position")
	if d := math.Abs(float64(s.Rotations[NodeLeftFoot].Dot(target.Rotation))); d < 1-1e-4 {
		t.Errorf("anchored rotation off target, |dot| = %v", d)
	}
	checkUnitRotations(t, s)
}

func TestAnchorZeroStrengthIsInert(t *testing.T) {
	s := NewIkState()
	before := s.Pose(NodeLeftFoot)
	c := AnchorFromPose(NodeLeftFoot, mgl32.Vec3{}, Pose{
		Position: mgl32.Vec3{5, 5, 5},
		Rotation: mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0}),
	}, 0)
	c.Apply(s)
	nearVec3(t, s.Positions[NodeLeftFoot], before.Position, 0, "position with zero strength")
	if d := math.Abs(float64(s.Rotations[NodeLeftFoot].Dot(before.Rotation))); d < 1-1e-6 {
		t.Errorf("rotation changed under zero-strength anchor, |dot| = %v", d)
	}
}
