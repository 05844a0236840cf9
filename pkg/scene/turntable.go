package scene

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// Turntable spins the model about the world Y axis over a sequence of
// frames. The yaw follows a damped spring from 0 toward Degrees.
type Turntable struct {
	Frames    int
	Degrees   float64
	Frequency float64 // Spring angular frequency
	Damping   float64 // Spring damping ratio; 1 is critically damped
}

func (c TurntableConfig) turntable() (Turntable, error) {
	if c.Frames < 1 {
		return Turntable{}, fmt.Errorf("turntable frames %d: %w", c.Frames, ErrInvalidConfig)
	}
	if c.Frames > 1 && (c.Frequency <= 0 || c.Damping <= 0) {
		return Turntable{}, fmt.Errorf("turntable spring %v/%v: %w", c.Frequency, c.Damping, ErrInvalidConfig)
	}
	return Turntable(c), nil
}

// Angles returns the yaw of every frame in radians. A single frame is not
// rotated. Otherwise the first frame is at 0 and the last lands exactly on
// Degrees; the frames between step the spring with a time delta of one
// second spread over the sequence.
func (t Turntable) Angles() []float64 {
	if t.Frames <= 1 {
		return []float64{0}
	}

	target := t.Degrees * math.Pi / 180
	spring := harmonica.NewSpring(harmonica.FPS(t.Frames-1), t.Frequency, t.Damping)

	angles := make([]float64, t.Frames)
	var pos, vel float64
	for i := 1; i < t.Frames-1; i++ {
		pos, vel = spring.Update(pos, vel, target)
		angles[i] = pos
	}
	angles[t.Frames-1] = target
	return angles
}
