package orbit

// AccelerationFunc returns the acceleration in km/s^2 for a position in km
// and a velocity in km/s.
type AccelerationFunc func(position, velocity []float64) []float64

// RK4 is a fixed-step classical fourth order Runge-Kutta stepper over an
// acceleration function. It is deterministic and holds no state besides
// reusable scratch buffers, which are never observable to the caller; one
// RK4 value must not be shared between goroutines.
type RK4 struct {
	kv1, kv2, kv3, kv4 []float64 // velocity stage derivatives (accelerations)
	tPos, tVel         []float64 // trial state buffers
}

// NewRK4 returns a stepper with its scratch buffers allocated once.
func NewRK4() *RK4 {
	return &RK4{
		kv1: make([]float64, 3), kv2: make([]float64, 3),
		kv3: make([]float64, 3), kv4: make([]float64, 3),
		tPos: make([]float64, 3), tVel: make([]float64, 3),
	}
}

// Step advances the state by dt seconds and returns the new position and
// velocity as fresh slices. Panics on a non-positive step, which is a
// programmer error.
func (r *RK4) Step(position, velocity []float64, accel AccelerationFunc, dt float64) (newPos, newVel []float64) {
	if dt <= 0 {
		panic("RK4 step size must be positive")
	}
	const (
		half     = 1 / 2.0
		oneSixth = 1 / 6.0
		oneThird = 1 / 3.0
	)

	// Stage 1 at the current state.
	copy(r.kv1, accel(position, velocity))
	// Stage 2 at the midpoint using stage 1 slopes.
	for i := 0; i < 3; i++ {
		r.tPos[i] = position[i] + half*dt*velocity[i]
		r.tVel[i] = velocity[i] + half*dt*r.kv1[i]
	}
	copy(r.kv2, accel(r.tPos, r.tVel))
	// Stage 3 at the midpoint using stage 2 slopes.
	for i := 0; i < 3; i++ {
		r.tPos[i] = position[i] + half*dt*(velocity[i]+half*dt*r.kv1[i])
		r.tVel[i] = velocity[i] + half*dt*r.kv2[i]
	}
	copy(r.kv3, accel(r.tPos, r.tVel))
	// Stage 4 at the full step using stage 3 slopes.
	for i := 0; i < 3; i++ {
		r.tPos[i] = position[i] + dt*(velocity[i]+half*dt*r.kv2[i])
		r.tVel[i] = velocity[i] + dt*r.kv3[i]
	}
	copy(r.kv4, accel(r.tPos, r.tVel))

	newPos = make([]float64, 3)
	newVel = make([]float64, 3)
	for i := 0; i < 3; i++ {
		// Position slopes are the stage velocities.
		kp1 := velocity[i]
		kp2 := velocity[i] + half*dt*r.kv1[i]
		kp3 := velocity[i] + half*dt*r.kv2[i]
		kp4 := velocity[i] + dt*r.kv3[i]
		newPos[i] = position[i] + dt*(oneSixth*(kp1+kp4)+oneThird*(kp2+kp3))
		newVel[i] = velocity[i] + dt*(oneSixth*(r.kv1[i]+r.kv4[i])+oneThird*(r.kv2[i]+r.kv3[i]))
	}
	return newPos, newVel
}
