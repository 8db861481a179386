package holokin

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// The seven constraint archetypes. Each Apply performs one Gauss-Seidel
// correction directly on the state, so later constraints in the same pass
// already see it. Corrections use the lever-arm pseudo-inverse-mass from
// leverWeight; this is deliberately not true rigid-body inertia.

// SphericalConstraint is a hard ball joint: a point fixed in each body,
// pulled together.
type SphericalConstraint struct {
	NodeA, NodeB       NodeID
	PointInA, PointInB mgl32.Vec3
}

func (c SphericalConstraint) Apply(s *IkState) {
	r1 := s.Rotations[c.NodeA].Rotate(c.PointInA)
	r2 := s.Rotations[c.NodeB].Rotate(c.PointInB)
	w1 := leverWeight(r1)
	w2 := leverWeight(r2)
	p1 := s.Positions[c.NodeA].Add(r1)
	p2 := s.Positions[c.NodeB].Add(r2)
	corr := divElem(p2.Sub(p1), w1.Add(w2))
	s.Positions[c.NodeA] = s.Positions[c.NodeA].Add(corr)
	s.Positions[c.NodeB] = s.Positions[c.NodeB].Sub(corr)
	s.Rotations[c.NodeA] = applySpin(s.Rotations[c.NodeA], r1.Cross(corr), 0.5)
	s.Rotations[c.NodeB] = applySpin(s.Rotations[c.NodeB], r2.Cross(corr), -0.5)
}

// DistanceConstraint keeps two attachment points a fixed length apart.
type DistanceConstraint struct {
	NodeA, NodeB       NodeID
	PointInA, PointInB mgl32.Vec3
	Distance           float32
}

func (c DistanceConstraint) Apply(s *IkState) {
	r1 := s.Rotations[c.NodeA].Rotate(c.PointInA)
	r2 := s.Rotations[c.NodeB].Rotate(c.PointInB)
	w1 := leverWeight(r1)
	w2 := leverWeight(r2)
	p1 := s.Positions[c.NodeA].Add(r1)
	p2 := s.Positions[c.NodeB].Add(r2)
	v := p1.Sub(p2)
	vLen := v.Len()
	if vLen < 1e-6 {
		return
	}
	errLen := vLen - c.Distance
	w := w1.Add(w2)
	corr := mgl32.Vec3{
		-errLen / (w.X() * vLen) * v.X(),
		-errLen / (w.Y() * vLen) * v.Y(),
		-errLen / (w.Z() * vLen) * v.Z(),
	}
	s.Positions[c.NodeA] = s.Positions[c.NodeA].Add(corr)
	s.Positions[c.NodeB] = s.Positions[c.NodeB].Sub(corr)
	s.Rotations[c.NodeA] = applySpin(s.Rotations[c.NodeA], r1.Cross(corr), 0.5)
	s.Rotations[c.NodeB] = applySpin(s.Rotations[c.NodeB], r2.Cross(corr), -0.5)
}

// AngularCardanConstraint keeps one local axis of each body perpendicular
// to the other. Paired with a SphericalConstraint it emulates a 2-DOF
// universal joint.
type AngularCardanConstraint struct {
	NodeA, NodeB     NodeID
	AxisInA, AxisInB mgl32.Vec3
}

func (c AngularCardanConstraint) Apply(s *IkState) {
	axis1 := s.Rotations[c.NodeA].Rotate(c.AxisInA)
	axis2 := s.Rotations[c.NodeB].Rotate(c.AxisInB)
	angle := acos32(axis1.Dot(axis2)) - math.Pi/2
	axis, ok := safeNormalize(axis1.Cross(axis2))
	if !ok {
		return
	}
	// Split the correction evenly between the two bodies.
	sin, cos := sinCos32(angle * 0.25)
	v := axis.Mul(sin)
	delta1 := mgl32.Quat{W: cos, V: v}
	delta2 := mgl32.Quat{W: cos, V: v.Mul(-1)}
	s.Rotations[c.NodeA] = delta1.Mul(s.Rotations[c.NodeA]).Normalize()
	s.Rotations[c.NodeB] = delta2.Mul(s.Rotations[c.NodeB]).Normalize()
}

// CompliantSphericalConstraint is a soft ball joint; compliance widens the
// denominator and weakens each correction.
type CompliantSphericalConstraint struct {
	NodeA, NodeB       NodeID
	PointInA, PointInB mgl32.Vec3
	Compliance         float32
}

func (c CompliantSphericalConstraint) Apply(s *IkState) {
	r1 := s.Rotations[c.NodeA].Rotate(c.PointInA)
	r2 := s.Rotations[c.NodeB].Rotate(c.PointInB)
	w1 := leverWeight(r1)
	w2 := leverWeight(r2)
	p1 := s.Positions[c.NodeA].Add(r1)
	p2 := s.Positions[c.NodeB].Add(r2)
	denom := w1.Add(w2).Add(mgl32.Vec3{c.Compliance, c.Compliance, c.Compliance})
	corr := divElem(p2.Sub(p1), denom)
	s.Positions[c.NodeA] = s.Positions[c.NodeA].Add(corr)
	s.Positions[c.NodeB] = s.Positions[c.NodeB].Sub(corr)
	s.Rotations[c.NodeA] = applySpin(s.Rotations[c.NodeA], r1.Cross(corr), 0.5)
	s.Rotations[c.NodeB] = applySpin(s.Rotations[c.NodeB], r2.Cross(corr), -0.5)
}

// CompliantFixedAngleConstraint softly locks the relative rotation of body
// B in body A's frame to a target.
type CompliantFixedAngleConstraint struct {
	NodeA, NodeB NodeID
	BInA         mgl32.Quat
	Compliance   float32
}

func (c CompliantFixedAngleConstraint) Apply(s *IkState) {
	wantedB := s.Rotations[c.NodeA].Mul(c.BInA)
	delta := s.Rotations[c.NodeB].Mul(wantedB.Inverse())
	axis, angle := quatAxisAngle(delta)
	sin, cos := sinCos32(angle * 0.5 / (2 + c.Compliance))
	v := axis.Mul(sin)
	delta1 := mgl32.Quat{W: cos, V: v}
	delta2 := mgl32.Quat{W: cos, V: v.Mul(-1)}
	s.Rotations[c.NodeA] = delta1.Mul(s.Rotations[c.NodeA]).Normalize()
	s.Rotations[c.NodeB] = delta2.Mul(s.Rotations[c.NodeB]).Normalize()
}

// CompliantHingeAngleConstraint softly aligns one local axis of each body.
// The rig currently builds none of these, but the archetype stays available
// for additional joints.
type CompliantHingeAngleConstraint struct {
	NodeA, NodeB     NodeID
	AxisInA, AxisInB mgl32.Vec3
	Compliance       float32
}

func (c CompliantHingeAngleConstraint) Apply(s *IkState) {
	axis1 := s.Rotations[c.NodeA].Rotate(c.AxisInA)
	axis2 := s.Rotations[c.NodeB].Rotate(c.AxisInB)
	omega := axis1.Cross(axis2)
	factor := 1 / (2 + c.Compliance)
	s.Rotations[c.NodeA] = applySpin(s.Rotations[c.NodeA], omega, factor)
	s.Rotations[c.NodeB] = applySpin(s.Rotations[c.NodeB], omega, -factor)
}

// AnchorConstraint pulls a local point of one body toward a world-space
// target pose. Strength runs 0..1 and is what action blending modulates.
type AnchorConstraint struct {
	Node           NodeID
	PointInNode    mgl32.Vec3
	TargetPosition mgl32.Vec3
	TargetRotation mgl32.Quat
	Strength       float32
}

func AnchorFromPose(node NodeID, pointInNode mgl32.Vec3, target Pose, strength float32) AnchorConstraint {
	return AnchorConstraint{
		Node:           node,
		PointInNode:    pointInNode,
		TargetPosition: target.Position,
		TargetRotation: target.Rotation,
		Strength:       strength,
	}
}

func (c AnchorConstraint) Apply(s *IkState) {
	r1 := s.Rotations[c.Node].Rotate(c.PointInNode)
	w1 := leverWeight(r1)
	p1 := s.Positions[c.Node].Add(r1)
	diff := c.TargetPosition.Sub(p1)
	corr := divElem(diff, w1).Mul(c.Strength)
	s.Positions[c.Node] = s.Positions[c.Node].Add(corr)
	s.Rotations[c.Node] = applySpin(s.Rotations[c.Node], r1.Cross(corr), 0.5)

	// The rotational part is a direct blend toward the target, not a
	// lever-arm step.
	s.Rotations[c.Node] = mgl32.QuatSlerp(s.Rotations[c.Node], c.TargetRotation, c.Strength).Normalize()
}
