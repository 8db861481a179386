package holokin

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyParameters holds the morphology of the tracked user plus the solver
// tuning knobs. It is loaded once per session (or republished by the dev
// watcher) and read-only while a tick is being solved.
type BodyParameters struct {
	// Bone lengths and widths, meters.
	LowerArmLength   float32 `yaml:"lower_arm_length"`
	UpperArmLength   float32 `yaml:"upper_arm_length"`
	CollarboneLength float32 `yaml:"collarbone_length"`
	ShoulderWidth    float32 `yaml:"shoulder_width"`
	SternumWidth     float32 `yaml:"sternum_width"`
	HipWidth         float32 `yaml:"hip_width"`
	UpperLegLength   float32 `yaml:"upper_leg_length"`
	LowerLegLength   float32 `yaml:"lower_leg_length"`
	AnkleHeight      float32 `yaml:"ankle_height"`
	FootHeight       float32 `yaml:"foot_height"`

	// Joint attachment heights inside the torso and pelvis frames.
	SternumHeightInTorso    float32 `yaml:"sternum_height_in_torso"`
	NeckRootHeightInTorso   float32 `yaml:"neck_root_height_in_torso"`
	LowerBackHeightInTorso  float32 `yaml:"lower_back_height_in_torso"`
	LowerBackHeightInPelvis float32 `yaml:"lower_back_height_in_pelvis"`
	HipHeightInPelvis       float32 `yaml:"hip_height_in_pelvis"`

	// Fixed offsets between tracked frames and body frames.
	HeadCenterInHmd      mgl32.Vec3 `yaml:"head_center_in_hmd"`
	NeckRootInHeadCenter mgl32.Vec3 `yaml:"neck_root_in_head_center"`
	LeftWristInPalm      mgl32.Vec3 `yaml:"left_wrist_in_palm"`
	AnkleForwardOffset   float32    `yaml:"ankle_forward_offset"`

	// Stepping.
	FootRadius       float32 `yaml:"foot_radius"`
	StepMultiplier   float32 `yaml:"step_multiplier"`
	StaggerThreshold float32 `yaml:"stagger_threshold"`

	// Per-joint compliances. Larger is softer.
	ShoulderCompliance        float32 `yaml:"shoulder_compliance"`
	ElbowFixedAngleCompliance float32 `yaml:"elbow_fixed_angle_compliance"`
	LowerBackCompliance       float32 `yaml:"lower_back_compliance"`
	HipFixedAngleCompliance   float32 `yaml:"hip_fixed_angle_compliance"`
	KneeFixedAngleCompliance  float32 `yaml:"knee_fixed_angle_compliance"`
	AnkleFixedAngleCompliance float32 `yaml:"ankle_fixed_angle_compliance"`
	HeadFixedAngleCompliance  float32 `yaml:"head_fixed_angle_compliance"`
	WristFixedAngleCompliance float32 `yaml:"wrist_fixed_angle_compliance"`

	// Anchors and action blending.
	AnchorStrength      float32 `yaml:"anchor_strength"`
	KneeStrength        float32 `yaml:"knee_strength"`
	HandActionMaxAngle  float32 `yaml:"hand_action_max_angle"`
	FootActionKickAngle float32 `yaml:"foot_action_kick_angle"`
	FootActionKneeAngle float32 `yaml:"foot_action_knee_angle"`

	// Relaxation passes per tick. The loop always runs the full count.
	Iterations int `yaml:"iterations"`
}

// stepSize is the length of a corrective stagger step.
func (p *BodyParameters) stepSize() float32 {
	return p.FootRadius * (p.StepMultiplier + 1)
}

func DefaultBodyParameters() *BodyParameters {
	return &BodyParameters{
		LowerArmLength:   0.28,
		UpperArmLength:   0.28,
		CollarboneLength: 0.17,
		ShoulderWidth:    0.40,
		SternumWidth:     0.06,
		HipWidth:         0.26,
		UpperLegLength:   0.40,
		LowerLegLength:   0.40,
		AnkleHeight:      0.10,
		FootHeight:       0.05,

		SternumHeightInTorso:    0.20,
		NeckRootHeightInTorso:   0.22,
		LowerBackHeightInTorso:  -0.20,
		LowerBackHeightInPelvis: 0.10,
		HipHeightInPelvis:       -0.07,

		HeadCenterInHmd:      mgl32.Vec3{0, 0, 0.10},
		NeckRootInHeadCenter: mgl32.Vec3{0, -0.1, 0},
		LeftWristInPalm:      mgl32.Vec3{-0.015, -0.01, 0.065},
		AnkleForwardOffset:   0.05,

		FootRadius:       0.1,
		StepMultiplier:   3.0,
		StaggerThreshold: 0.2,

		ShoulderCompliance:        25,
		ElbowFixedAngleCompliance: 100000,
		LowerBackCompliance:       1000,
		HipFixedAngleCompliance:   10000,
		KneeFixedAngleCompliance:  10000,
		AnkleFixedAngleCompliance: 1000,
		HeadFixedAngleCompliance:  1000,
		WristFixedAngleCompliance: 1000,

		AnchorStrength:      0.25,
		KneeStrength:        0.1,
		HandActionMaxAngle:  math.Pi / 4,
		FootActionKickAngle: math.Pi / 2,
		FootActionKneeAngle: -math.Pi / 4,

		Iterations: 10,
	}
}

func (p *BodyParameters) Validate() error {
	lengths := map[string]float32{
		"lower_arm_length":  p.LowerArmLength,
		"upper_arm_length":  p.UpperArmLength,
		"collarbone_length": p.CollarboneLength,
		"shoulder_width":    p.ShoulderWidth,
		"hip_width":         p.HipWidth,
		"upper_leg_length":  p.UpperLegLength,
		"lower_leg_length":  p.LowerLegLength,
		"foot_height":       p.FootHeight,
	}
	for name, v := range lengths {
		if v <= 0 {
			return fmt.Errorf("body parameter %s must be positive, got %g", name, v)
		}
	}
	if p.FootRadius <= 0 {
		return fmt.Errorf("foot_radius must be positive, got %g", p.FootRadius)
	}
	if p.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", p.Iterations)
	}
	return nil
}
