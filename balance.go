package holokin

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Stance used before the first tick has recorded any foot poses.
const defaultStanceHalfWidth = 0.2

// stepBalance runs the foot-placement state machine, once per tick and
// before the relaxation loop. It classifies which foot is planted, updates
// the persisted foot poses with anticipatory step targets, and returns the
// targets plus the balance point in base-local coordinates.
func stepBalance(state *IkState, base Pose, params *BodyParameters) (leftFoot, rightFoot Pose, balanceInBase mgl32.Vec3) {
	leftFoot = base.Mul(TranslationPose(mgl32.Vec3{-defaultStanceHalfWidth, 0, 0}))
	if state.LastLeftFoot != nil {
		leftFoot = *state.LastLeftFoot
	}
	rightFoot = base.Mul(TranslationPose(mgl32.Vec3{defaultStanceHalfWidth, 0, 0}))
	if state.LastRightFoot != nil {
		rightFoot = *state.LastRightFoot
	}

	baseFromStage := base.Inverse()
	leftInBase := baseFromStage.Mul(leftFoot).Position
	rightInBase := baseFromStage.Mul(rightFoot).Position

	leftInside := leftInBase.Len() < params.FootRadius
	rightInside := rightInBase.Len() < params.FootRadius
	switch {
	case leftInside && rightInside:
		// Ambiguous, keep the previous distribution.
	case leftInside:
		state.Weight = LeftPlanted
	case rightInside:
		state.Weight = RightPlanted
	default:
		state.Weight = SharedWeight
	}

	// Closest point to the base origin on the segment between the feet.
	v := rightInBase.Sub(leftInBase)
	vv := v.Dot(v)
	if vv < 0.001 {
		vv = 0.001
	}
	t := mgl32.Clamp(leftInBase.Mul(-1).Dot(v)/vv, 0, 1)
	balanceInBase = leftInBase.Add(v.Mul(t))

	switch state.Weight {
	case RightPlanted:
		// Swing the free foot through, amplified past the planted one.
		leftFoot = base.Mul(TranslationPose(rightInBase.Mul(-params.StepMultiplier)))
	case LeftPlanted:
		rightFoot = base.Mul(TranslationPose(leftInBase.Mul(-params.StepMultiplier)))
	case SharedWeight:
		if balanceInBase.Len() > params.StaggerThreshold {
			// Stagger step: lift the foot that carries the least load and
			// step it back across the base origin.
			v1 := balanceInBase.Sub(leftInBase)
			v2 := balanceInBase.Sub(rightInBase)
			if v1.LenSqr() < v2.LenSqr() {
				if dir, ok := safeNormalize(leftInBase.Mul(-1)); ok {
					rightFoot = base.Mul(TranslationPose(leftInBase.Add(dir.Mul(params.stepSize()))))
				}
			} else {
				if dir, ok := safeNormalize(rightInBase.Mul(-1)); ok {
					leftFoot = base.Mul(TranslationPose(rightInBase.Add(dir.Mul(params.stepSize()))))
				}
			}
		}
	}

	l, r := leftFoot, rightFoot
	state.LastLeftFoot = &l
	state.LastRightFoot = &r
	return leftFoot, rightFoot, balanceInBase
}
