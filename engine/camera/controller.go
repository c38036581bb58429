package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// pitchLimit keeps the orbit just short of the poles so the view matrix
// never degenerates against the up vector.
const pitchLimit = math32.Pi/2 - 0.01

// Controller supplies the camera's position and look-at target each frame.
type Controller interface {
	// Position returns the camera position in world space.
	Position() mgl32.Vec3

	// Target returns the look-at target in world space.
	Target() mgl32.Vec3
}

// orbitController orbits a target point at a fixed distance, driven by
// yaw/pitch angles. Mouse input maps to Rotate and Zoom.
type orbitController struct {
	mu *sync.Mutex

	target   mgl32.Vec3
	distance float32
	yaw      float32
	pitch    float32

	minDistance float32
	maxDistance float32
}

// OrbitController is a Controller that circles a target point, with rotation
// and zoom driven by input callbacks.
type OrbitController interface {
	Controller

	// Rotate adjusts the orbit angles by the given deltas in radians.
	//
	// Parameters:
	//   - yawDelta: rotation around the vertical axis
	//   - pitchDelta: rotation toward/away from the poles, clamped short of them
	Rotate(yawDelta, pitchDelta float32)

	// Zoom moves the camera along the view direction. Positive delta zooms
	// in; distance is clamped to the configured range.
	//
	// Parameters:
	//   - delta: zoom amount in world units
	Zoom(delta float32)

	// SetTarget moves the orbit center.
	//
	// Parameters:
	//   - target: the new look-at target
	SetTarget(target mgl32.Vec3)
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller around a target.
//
// Parameters:
//   - target: the orbit center
//   - distance: the initial distance from the target
//   - options: functional options to configure the controller
//
// Returns:
//   - OrbitController: the new controller
func NewOrbitController(target mgl32.Vec3, distance float32, options ...OrbitControllerOption) OrbitController {
	c := &orbitController{
		mu:          &sync.Mutex{},
		target:      target,
		distance:    distance,
		minDistance: 1,
		maxDistance: 100,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// OrbitControllerOption is a functional option used to configure an
// OrbitController during construction.
type OrbitControllerOption func(*orbitController)

// WithZoomRange sets the minimum and maximum orbit distance.
//
// Parameters:
//   - minDistance: closest allowed distance
//   - maxDistance: farthest allowed distance
//
// Returns:
//   - OrbitControllerOption: a function that sets the zoom range
func WithZoomRange(minDistance, maxDistance float32) OrbitControllerOption {
	return func(c *orbitController) {
		c.minDistance = minDistance
		c.maxDistance = maxDistance
	}
}

// WithAngles sets the initial yaw and pitch in radians.
//
// Parameters:
//   - yaw: rotation around the vertical axis
//   - pitch: elevation angle
//
// Returns:
//   - OrbitControllerOption: a function that sets the angles
func WithAngles(yaw, pitch float32) OrbitControllerOption {
	return func(c *orbitController) {
		c.yaw = yaw
		c.pitch = clampPitch(pitch)
	}
}

func (c *orbitController) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cosPitch := math32.Cos(c.pitch)
	return c.target.Add(mgl32.Vec3{
		c.distance * cosPitch * math32.Sin(c.yaw),
		c.distance * math32.Sin(c.pitch),
		c.distance * cosPitch * math32.Cos(c.yaw),
	})
}

func (c *orbitController) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitController) Rotate(yawDelta, pitchDelta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw += yawDelta
	c.pitch = clampPitch(c.pitch + pitchDelta)
}

func (c *orbitController) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = math32.Max(c.minDistance, math32.Min(c.maxDistance, c.distance-delta))
}

func (c *orbitController) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
}

func clampPitch(pitch float32) float32 {
	return math32.Max(-pitchLimit, math32.Min(pitchLimit, pitch))
}
