package holokin

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pose is a rigid transform in the stage frame: a translation plus a unit
// quaternion. It is the only transform representation the solver uses.
type Pose struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func PoseIdent() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

func TranslationPose(v mgl32.Vec3) Pose {
	return Pose{Position: v, Rotation: mgl32.QuatIdent()}
}

func RotationPose(q mgl32.Quat) Pose {
	return Pose{Rotation: q}
}

// Mul composes two poses: (p * o) transforms first by o, then by p.
func (p Pose) Mul(o Pose) Pose {
	return Pose{
		Position: p.Position.Add(p.Rotation.Rotate(o.Position)),
		Rotation: p.Rotation.Mul(o.Rotation).Normalize(),
	}
}

func (p Pose) Inverse() Pose {
	inv := p.Rotation.Conjugate()
	return Pose{
		Position: inv.Rotate(p.Position).Mul(-1),
		Rotation: inv,
	}
}

func (p Pose) TransformPoint(v mgl32.Vec3) mgl32.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(v))
}

// leverWeight is the per-axis generalized inverse mass of an attachment
// offset r: unit mass and unit inverse inertia are assumed, only the lever
// arm contributes. w.x = 1 + r.y^2 + r.z^2, cyclic for the other axes.
func leverWeight(r mgl32.Vec3) mgl32.Vec3 {
	sx, sy, sz := r.X()*r.X(), r.Y()*r.Y(), r.Z()*r.Z()
	return mgl32.Vec3{1 + sy + sz, 1 + sz + sx, 1 + sx + sy}
}

func divElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a.X() / b.X(), a.Y() / b.Y(), a.Z() / b.Z()}
}

// applySpin integrates a small rotation into q: q <- q + factor*(omega ⊗ q),
// renormalized. The caller flips the sign of factor for the second body.
func applySpin(q mgl32.Quat, omega mgl32.Vec3, factor float32) mgl32.Quat {
	dq := mgl32.Quat{W: 0, V: omega}.Mul(q)
	return q.Add(dq.Scale(factor)).Normalize()
}

// quatAxisAngle decomposes q into an axis and an angle in (-pi, pi].
func quatAxisAngle(q mgl32.Quat) (mgl32.Vec3, float32) {
	w := mgl32.Clamp(q.W, -1, 1)
	angle := 2 * float32(math.Acos(float64(w)))
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	s := float32(math.Sqrt(float64(1 - w*w)))
	if s < 1e-6 {
		return mgl32.Vec3{1, 0, 0}, angle
	}
	return q.V.Mul(1 / s), angle
}

// safeNormalize reports false for vectors too short to carry a direction.
func safeNormalize(v mgl32.Vec3) (mgl32.Vec3, bool) {
	l := v.Len()
	if l < 1e-6 {
		return mgl32.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func acos32(x float32) float32 {
	return float32(math.Acos(float64(mgl32.Clamp(x, -1, 1))))
}

func sinCos32(x float32) (float32, float32) {
	s, c := math.Sincos(float64(x))
	return float32(s), float32(c)
}

func lerp32(a, b, t float32) float32 {
	return (1-t)*a + t*b
}
