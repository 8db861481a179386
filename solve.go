package holokin

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameInput is everything the tracking layer supplies for one tick: five
// rigid poses in the stage frame plus the two thumbsticks.
type FrameInput struct {
	Hmd       Pose
	LeftGrip  Pose
	LeftAim   Pose
	RightGrip Pose
	RightAim  Pose

	LeftStick  mgl32.Vec2
	RightStick mgl32.Vec2
}

type fixedNode struct {
	id   NodeID
	pose Pose
}

// rig is the constraint set for one tick. Lengths and compliances are
// constant across a session but anchor targets and the fixed-node poses
// depend on tracked input, so the whole rig is rebuilt every tick.
type rig struct {
	fixed []fixedNode

	anchors              []AnchorConstraint
	sphericals           []SphericalConstraint
	distances            []DistanceConstraint
	cardans              []AngularCardanConstraint
	compliantSphericals  []CompliantSphericalConstraint
	compliantFixedAngles []CompliantFixedAngleConstraint
	compliantHinges      []CompliantHingeAngleConstraint
}

const invSqrt2 = math.Sqrt2 / 2

// Offsets of the foot action pose relative to the driving palm.
var (
	footActionForward = mgl32.Vec3{0, 0, -0.1}
	footActionDrop    = mgl32.Vec3{0, -0.5, 0}
)

// baseFrame grounds the neck root: origin at its floor projection, X along
// its flattened forward axis, Y world up.
func baseFrame(neckRoot Pose) Pose {
	origin := neckRoot.Position
	origin[1] = 0
	x := neckRoot.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	x[1] = 0
	xDir, ok := safeNormalize(x)
	if !ok {
		xDir = mgl32.Vec3{1, 0, 0}
	}
	zDir := xDir.Cross(mgl32.Vec3{0, 1, 0})
	m := mgl32.Mat4{
		xDir.X(), xDir.Y(), xDir.Z(), 0,
		0, 1, 0, 0,
		zDir.X(), zDir.Y(), zDir.Z(), 0,
		0, 0, 0, 1,
	}
	return Pose{Position: origin, Rotation: mgl32.Mat4ToQuat(m).Normalize()}
}

// Solve reconstructs the full-body pose for one tick. It runs the balance
// machine once, then the configured number of relaxation passes, rewriting
// the fixed nodes at the start of each pass and applying the archetype
// groups in a fixed order: anchors, spherical, distance, cardan, compliant
// spherical, compliant fixed-angle, compliant hinge. The order is part of
// the contract; Gauss-Seidel convergence depends on it.
func Solve(input FrameInput, params *BodyParameters, state *IkState) {
	r := buildRig(input, params, state)
	for i := 0; i < params.Iterations; i++ {
		for _, f := range r.fixed {
			state.SetFixed(f.id, f.pose)
		}
		for _, c := range r.anchors {
			c.Apply(state)
		}
		for _, c := range r.sphericals {
			c.Apply(state)
		}
		for _, c := range r.distances {
			c.Apply(state)
		}
		for _, c := range r.cardans {
			c.Apply(state)
		}
		for _, c := range r.compliantSphericals {
			c.Apply(state)
		}
		for _, c := range r.compliantFixedAngles {
			c.Apply(state)
		}
		for _, c := range r.compliantHinges {
			c.Apply(state)
		}
	}
}

func buildRig(input FrameInput, params *BodyParameters, state *IkState) rig {
	axisX := mgl32.Vec3{1, 0, 0}
	axisY := mgl32.Vec3{0, 1, 0}
	axisZ := mgl32.Vec3{0, 0, 1}

	// Joint attachment points in their body frames.
	leftWristInPalm := params.LeftWristInPalm
	rightWristInPalm := mgl32.Vec3{-leftWristInPalm.X(), leftWristInPalm.Y(), leftWristInPalm.Z()}
	wristInLowerArm := mgl32.Vec3{0, 0, -params.LowerArmLength / 2}
	elbowInLowerArm := mgl32.Vec3{0, 0, params.LowerArmLength / 2}
	elbowInUpperArm := mgl32.Vec3{0, 0, -params.UpperArmLength / 2}
	shoulderInUpperArm := mgl32.Vec3{0, 0, params.UpperArmLength / 2}
	leftShoulderInTorso := mgl32.Vec3{-params.ShoulderWidth / 2, params.SternumHeightInTorso, 0}
	rightShoulderInTorso := mgl32.Vec3{params.ShoulderWidth / 2, params.SternumHeightInTorso, 0}
	leftScJointInTorso := mgl32.Vec3{-params.SternumWidth / 2, params.SternumHeightInTorso, 0}
	rightScJointInTorso := mgl32.Vec3{params.SternumWidth / 2, params.SternumHeightInTorso, 0}
	neckRootInTorso := mgl32.Vec3{0, params.NeckRootHeightInTorso, 0}
	lowerBackInTorso := mgl32.Vec3{0, params.LowerBackHeightInTorso, 0}
	lowerBackInPelvis := mgl32.Vec3{0, params.LowerBackHeightInPelvis, 0}
	leftHipInPelvis := mgl32.Vec3{-params.HipWidth / 2, params.HipHeightInPelvis, 0}
	rightHipInPelvis := mgl32.Vec3{params.HipWidth / 2, params.HipHeightInPelvis, 0}
	hipInUpperLeg := mgl32.Vec3{0, params.UpperLegLength / 2, 0}
	kneeInUpperLeg := mgl32.Vec3{0, -params.UpperLegLength / 2, 0}
	kneeInLowerLeg := mgl32.Vec3{0, params.LowerLegLength / 2, 0}
	ankleInLowerLeg := mgl32.Vec3{0, -params.LowerLegLength / 2, 0}
	ankleInFoot := mgl32.Vec3{0, params.AnkleHeight - params.FootHeight/2, params.AnkleForwardOffset}
	footTargetInFoot := mgl32.Vec3{0, -params.FootHeight / 2, 0}

	// Derived frames from tracked input.
	headCenter := input.Hmd.Mul(TranslationPose(params.HeadCenterInHmd))
	neckRoot := headCenter.Mul(TranslationPose(params.NeckRootInHeadCenter))
	base := baseFrame(neckRoot)

	leftPalm := Pose{Position: input.LeftGrip.Position, Rotation: input.LeftAim.Rotation}
	rightPalm := Pose{Position: input.RightGrip.Position, Rotation: input.RightAim.Rotation}
	leftWrist := leftPalm.Mul(TranslationPose(leftWristInPalm))
	rightWrist := rightPalm.Mul(TranslationPose(rightWristInPalm))

	leftFoot, rightFoot, balanceInBase := stepBalance(state, base, params)

	// Action blending.
	leftBlend := LeftActionBlend(input.LeftStick)
	rightBlend := RightActionBlend(input.RightStick)
	leftHandAngle := params.HandActionMaxAngle * leftBlend.Hand.Z()
	rightHandAngle := params.HandActionMaxAngle * rightBlend.Hand.Z()
	leftFootAngle := footActionAngle(leftBlend, params)
	rightFootAngle := footActionAngle(rightBlend, params)

	leftHandAction := leftPalm.Mul(RotationPose(mgl32.QuatRotate(leftHandAngle, axisX)))
	rightHandAction := rightPalm.Mul(RotationPose(mgl32.QuatRotate(rightHandAngle, axisX)))
	leftFootAction := leftPalm.
		Mul(TranslationPose(footActionForward)).
		Mul(RotationPose(mgl32.QuatRotate(leftFootAngle, axisX))).
		Mul(TranslationPose(footActionDrop))
	rightFootAction := rightPalm.
		Mul(TranslationPose(footActionForward)).
		Mul(RotationPose(mgl32.QuatRotate(rightFootAngle, axisX))).
		Mul(TranslationPose(footActionDrop))

	anchor := params.AnchorStrength
	anchors := []AnchorConstraint{
		// Neutral hands
		AnchorFromPose(NodeLeftPalm, mgl32.Vec3{}, leftHandAction, anchor*leftBlend.Hand.X()),
		AnchorFromPose(NodeRightPalm, mgl32.Vec3{}, rightHandAction, anchor*rightBlend.Hand.X()),
		// Punch
		AnchorFromPose(NodeLeftLowerArm, elbowInLowerArm, leftHandAction, anchor*leftBlend.Hand.Y()),
		AnchorFromPose(NodeRightLowerArm, elbowInLowerArm, rightHandAction, anchor*rightBlend.Hand.Y()),
		// Elbow
		AnchorFromPose(NodeLeftLowerArm, elbowInLowerArm, leftHandAction, anchor*leftBlend.Hand.Z()),
		AnchorFromPose(NodeRightLowerArm, elbowInLowerArm, rightHandAction, anchor*rightBlend.Hand.Z()),
		// Neutral feet
		AnchorFromPose(NodeLeftFoot, footTargetInFoot, leftFoot, anchor*leftBlend.Foot.X()),
		AnchorFromPose(NodeRightFoot, footTargetInFoot, rightFoot, anchor*rightBlend.Foot.X()),
		// Kick
		AnchorFromPose(NodeLeftFoot, footTargetInFoot, leftFootAction, anchor*leftBlend.Foot.Y()),
		AnchorFromPose(NodeRightFoot, footTargetInFoot, rightFootAction, anchor*rightBlend.Foot.Y()),
		// Knee
		AnchorFromPose(NodeLeftFoot, footTargetInFoot, leftFootAction, anchor*leftBlend.Foot.Z()),
		AnchorFromPose(NodeRightFoot, footTargetInFoot, rightFootAction, anchor*rightBlend.Foot.Z()),
		AnchorFromPose(NodeLeftLowerLeg, kneeInLowerLeg, leftFootAction,
			anchor*leftBlend.Foot.Z()*leftBlend.Foot.Z()*params.KneeStrength),
		AnchorFromPose(NodeRightLowerLeg, kneeInLowerLeg, rightFootAction,
			anchor*rightBlend.Foot.Z()*rightBlend.Foot.Z()*params.KneeStrength),
		// Head
		AnchorFromPose(NodeHeadCenter, mgl32.Vec3{}, headCenter, anchor),
	}

	sphericals := []SphericalConstraint{
		// Wrists
		{NodeA: NodeLeftPalm, NodeB: NodeLeftLowerArm, PointInA: leftWristInPalm, PointInB: wristInLowerArm},
		{NodeA: NodeRightPalm, NodeB: NodeRightLowerArm, PointInA: rightWristInPalm, PointInB: wristInLowerArm},
		// Elbows
		{NodeA: NodeLeftLowerArm, NodeB: NodeLeftUpperArm, PointInA: elbowInLowerArm, PointInB: elbowInUpperArm},
		{NodeA: NodeRightLowerArm, NodeB: NodeRightUpperArm, PointInA: elbowInLowerArm, PointInB: elbowInUpperArm},
		// Neck
		{NodeA: NodeHeadCenter, NodeB: NodeTorso, PointInA: params.NeckRootInHeadCenter, PointInB: neckRootInTorso},
		// Lower back
		{NodeA: NodeTorso, NodeB: NodePelvis, PointInA: lowerBackInTorso, PointInB: lowerBackInPelvis},
		// Hips
		{NodeA: NodePelvis, NodeB: NodeLeftUpperLeg, PointInA: leftHipInPelvis, PointInB: hipInUpperLeg},
		{NodeA: NodePelvis, NodeB: NodeRightUpperLeg, PointInA: rightHipInPelvis, PointInB: hipInUpperLeg},
		// Knees
		{NodeA: NodeLeftUpperLeg, NodeB: NodeLeftLowerLeg, PointInA: kneeInUpperLeg, PointInB: kneeInLowerLeg},
		{NodeA: NodeRightUpperLeg, NodeB: NodeRightLowerLeg, PointInA: kneeInUpperLeg, PointInB: kneeInLowerLeg},
		// Ankles
		{NodeA: NodeLeftLowerLeg, NodeB: NodeLeftFoot, PointInA: ankleInLowerLeg, PointInB: ankleInFoot},
		{NodeA: NodeRightLowerLeg, NodeB: NodeRightFoot, PointInA: ankleInLowerLeg, PointInB: ankleInFoot},
	}

	distances := []DistanceConstraint{
		// Collarbones
		{NodeA: NodeLeftUpperArm, NodeB: NodeTorso, PointInA: shoulderInUpperArm,
			PointInB: leftScJointInTorso, Distance: params.CollarboneLength},
		{NodeA: NodeRightUpperArm, NodeB: NodeTorso, PointInA: shoulderInUpperArm,
			PointInB: rightScJointInTorso, Distance: params.CollarboneLength},
	}

	ankleHingeAxis := mgl32.Vec3{0, invSqrt2, invSqrt2}
	cardans := []AngularCardanConstraint{
		// Knees
		{NodeA: NodeLeftUpperLeg, NodeB: NodeLeftLowerLeg, AxisInA: axisX, AxisInB: axisY},
		{NodeA: NodeRightUpperLeg, NodeB: NodeRightLowerLeg, AxisInA: axisX, AxisInB: axisY},
		// Ankles
		{NodeA: NodeLeftLowerLeg, NodeB: NodeLeftFoot, AxisInA: axisX, AxisInB: ankleHingeAxis},
		{NodeA: NodeRightLowerLeg, NodeB: NodeRightFoot, AxisInA: axisX, AxisInB: ankleHingeAxis},
		// Elbows
		{NodeA: NodeLeftLowerArm, NodeB: NodeLeftUpperArm, AxisInA: axisZ, AxisInB: axisX},
		{NodeA: NodeRightLowerArm, NodeB: NodeRightUpperArm, AxisInA: axisZ, AxisInB: axisX},
		// Wrists
		{NodeA: NodeLeftPalm, NodeB: NodeLeftLowerArm, AxisInA: axisX, AxisInB: axisY},
		{NodeA: NodeRightPalm, NodeB: NodeRightLowerArm, AxisInA: axisX, AxisInB: axisY},
	}

	compliantSphericals := []CompliantSphericalConstraint{
		// Shoulders
		{NodeA: NodeTorso, NodeB: NodeLeftUpperArm, PointInA: leftShoulderInTorso,
			PointInB: shoulderInUpperArm, Compliance: params.ShoulderCompliance},
		{NodeA: NodeTorso, NodeB: NodeRightUpperArm, PointInA: rightShoulderInTorso,
			PointInB: shoulderInUpperArm, Compliance: params.ShoulderCompliance},
	}

	ident := mgl32.QuatIdent()
	kneeRest := mgl32.QuatRotate(-math.Pi/2, axisX)
	elbowRest := mgl32.QuatRotate(math.Pi/2, axisX)
	hipRest := mgl32.QuatRotate(math.Pi/4, axisX)
	compliantFixedAngles := []CompliantFixedAngleConstraint{
		// Wrists
		{NodeA: NodeLeftLowerArm, NodeB: NodeLeftPalm, BInA: ident, Compliance: params.WristFixedAngleCompliance},
		{NodeA: NodeRightLowerArm, NodeB: NodeRightPalm, BInA: ident, Compliance: params.WristFixedAngleCompliance},
		// Ankles
		{NodeA: NodeLeftLowerLeg, NodeB: NodeLeftFoot, BInA: ident, Compliance: params.AnkleFixedAngleCompliance},
		{NodeA: NodeRightLowerLeg, NodeB: NodeRightFoot, BInA: ident, Compliance: params.AnkleFixedAngleCompliance},
		// Knees
		{NodeA: NodeLeftUpperLeg, NodeB: NodeLeftLowerLeg, BInA: kneeRest, Compliance: params.KneeFixedAngleCompliance},
		{NodeA: NodeRightUpperLeg, NodeB: NodeRightLowerLeg, BInA: kneeRest, Compliance: params.KneeFixedAngleCompliance},
		// Elbows
		{NodeA: NodeLeftUpperArm, NodeB: NodeLeftLowerArm, BInA: elbowRest, Compliance: params.ElbowFixedAngleCompliance},
		{NodeA: NodeRightUpperArm, NodeB: NodeRightLowerArm, BInA: elbowRest, Compliance: params.ElbowFixedAngleCompliance},
		// Lower back
		{NodeA: NodeTorso, NodeB: NodePelvis, BInA: ident, Compliance: params.LowerBackCompliance},
		// Hips
		{NodeA: NodePelvis, NodeB: NodeLeftUpperLeg, BInA: hipRest, Compliance: params.HipFixedAngleCompliance},
		{NodeA: NodePelvis, NodeB: NodeRightUpperLeg, BInA: hipRest, Compliance: params.HipFixedAngleCompliance},
		// Head
		{NodeA: NodeHeadCenter, NodeB: NodeTorso, BInA: ident, Compliance: params.HeadFixedAngleCompliance},
	}

	fixed := []fixedNode{
		{NodeHmd, input.Hmd},
		{NodeLeftGrip, input.LeftGrip},
		{NodeLeftAim, input.LeftAim},
		{NodeRightGrip, input.RightGrip},
		{NodeRightAim, input.RightAim},
		{NodeNeckRoot, neckRoot},
		{NodeBase, base},
		{NodeBalancePoint, base.Mul(TranslationPose(balanceInBase))},
		{NodeLeftFootTarget, leftFoot},
		{NodeRightFootTarget, rightFoot},
		{NodeLeftWrist, leftWrist},
		{NodeRightWrist, rightWrist},
	}

	return rig{
		fixed:                fixed,
		anchors:              anchors,
		sphericals:           sphericals,
		distances:            distances,
		cardans:              cardans,
		compliantSphericals:  compliantSphericals,
		compliantFixedAngles: compliantFixedAngles,
		compliantHinges:      nil,
	}
}
