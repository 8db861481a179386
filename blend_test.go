package holokin

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestActionBlendNeutralAtRest(t *testing.T) {
	for _, blend := range []ActionBlend{
		LeftActionBlend(mgl32.Vec2{}),
		RightActionBlend(mgl32.Vec2{}),
	} {
		nearVec3(t, blend.Hand, mgl32.Vec3{1, 0, 0}, 1e-6, "hand blend at rest")
		nearVec3(t, blend.Foot, mgl32.Vec3{1, 0, 0}, 1e-6, "foot blend at rest")
	}
}

func TestActionBlendFullDeflections(t *testing.T) {
	// Full forward saturates punch and zeroes the hand-neutral weight.
	blend := LeftActionBlend(mgl32.Vec2{0, 1})
	nearVec3(t, blend.Hand, mgl32.Vec3{0, 1, 0}, 1e-6, "punch blend")
	nearVec3(t, blend.Foot, mgl32.Vec3{1, 0, 0}, 1e-6, "foot stays neutral on punch")

	// Full back saturates kick.
	blend = LeftActionBlend(mgl32.Vec2{0, -1})
	nearVec3(t, blend.Foot, mgl32.Vec3{0, 1, 0}, 1e-6, "kick blend")

	// Inward mirrors between hands.
	if LeftActionBlend(mgl32.Vec2{1, 0}).Hand.Z() != RightActionBlend(mgl32.Vec2{-1, 0}).Hand.Z() {
		t.Errorf("elbow influence should mirror between hands")
	}
}

func TestActionBlendDeadZone(t *testing.T) {
	// Deflections inside the dead zone leave everything neutral.
	blend := RightActionBlend(mgl32.Vec2{0.1, 0.2})
	nearVec3(t, blend.Hand, mgl32.Vec3{1, 0, 0}, 1e-6, "hand inside dead zone")
	nearVec3(t, blend.Foot, mgl32.Vec3{1, 0, 0}, 1e-6, "foot inside dead zone")
}

func TestActionBlendContinuity(t *testing.T) {
	// The mapping must be continuous: small stick motion, small weight
	// motion.
	prev := LeftActionBlend(mgl32.Vec2{0, 0})
	for i := 1; i <= 100; i++ {
		stick := mgl32.Vec2{0, float32(i) / 100}
		next := LeftActionBlend(stick)
		if d := next.Hand.Sub(prev.Hand).Len(); d > 0.05 {
			t.Fatalf("hand blend jumped %v at stick %v", d, stick)
		}
		prev = next
	}
}

func TestFootActionAngleFloorsDenominator(t *testing.T) {
	params := DefaultBodyParameters()

	// Fully neutral foot: ratio would be 0/0 without the epsilon floor.
	angle := footActionAngle(ActionBlend{Foot: mgl32.Vec3{1, 0, 0}}, params)
	if math.IsNaN(float64(angle)) || math.IsInf(float64(angle), 0) {
		t.Fatalf("foot angle degenerate: %v", angle)
	}
	if angle != params.FootActionKickAngle {
		t.Errorf("neutral foot angle %v, want kick angle %v", angle, params.FootActionKickAngle)
	}

	// Pure knee selects the knee angle.
	angle = footActionAngle(ActionBlend{Foot: mgl32.Vec3{0, 0, 1}}, params)
	if math.Abs(float64(angle-params.FootActionKneeAngle)) > 1e-3 {
		t.Errorf("knee foot angle %v, want %v", angle, params.FootActionKneeAngle)
	}

	// Even split lands midway.
	angle = footActionAngle(ActionBlend{Foot: mgl32.Vec3{0, 0.5, 0.5}}, params)
	mid := (params.FootActionKickAngle + params.FootActionKneeAngle) / 2
	if math.Abs(float64(angle-mid)) > 1e-5 {
		t.Errorf("split foot angle %v, want %v", angle, mid)
	}
}
