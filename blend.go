package holokin

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Action blending maps thumbstick deflection onto the anchor strengths of
// the hand and foot pose anchors. Each stick drives one ActionBlend: the
// hand components select neutral/punch/elbow, the foot components select
// neutral/kick/knee.

type ActionBlend struct {
	// X neutral, Y punch, Z elbow.
	Hand mgl32.Vec3
	// X neutral, Y kick, Z knee.
	Foot mgl32.Vec3
}

// Influence ramp: zero inside the dead zone, one near full deflection.
const (
	influenceDeadZone = 0.25
	influenceSaturate = 0.95
)

// thumbstickInfluence measures how far the stick is pushed toward a target
// direction on the stick circle.
func thumbstickInfluence(stick, target mgl32.Vec2) float32 {
	d := stick.Dot(target)
	return mgl32.Clamp((d-influenceDeadZone)/(influenceSaturate-influenceDeadZone), 0, 1)
}

// Stick directions for the four actions. Forward is punch, inward is
// elbow, backward is kick, outward is knee; inward/outward mirror between
// hands so both controllers feel symmetric.
var (
	punchDir = mgl32.Vec2{0, 1}
	kickDir  = mgl32.Vec2{0, -1}
)

func actionBlend(stick mgl32.Vec2, inward mgl32.Vec2) ActionBlend {
	punch := thumbstickInfluence(stick, punchDir)
	elbow := thumbstickInfluence(stick, inward)
	kick := thumbstickInfluence(stick, kickDir)
	knee := thumbstickInfluence(stick, inward.Mul(-1))
	return ActionBlend{
		Hand: mgl32.Vec3{mgl32.Clamp(1-punch-elbow, 0, 1), punch, elbow},
		Foot: mgl32.Vec3{mgl32.Clamp(1-kick-knee, 0, 1), kick, knee},
	}
}

func LeftActionBlend(stick mgl32.Vec2) ActionBlend {
	return actionBlend(stick, mgl32.Vec2{1, 0})
}

func RightActionBlend(stick mgl32.Vec2) ActionBlend {
	return actionBlend(stick, mgl32.Vec2{-1, 0})
}

// footActionAngle blends the kick and knee pose angles by the relative
// magnitude of the two components. The denominator is floored so a fully
// neutral foot cannot produce NaN.
func footActionAngle(blend ActionBlend, params *BodyParameters) float32 {
	denom := blend.Foot.Y() + blend.Foot.Z()
	if denom < 0.001 {
		denom = 0.001
	}
	return lerp32(params.FootActionKickAngle, params.FootActionKneeAngle, blend.Foot.Z()/denom)
}
