// Package camera computes view and projection matrices for rendering. The
// camera holds perspective settings and reads its position and target from an
// attached controller each frame via Update().
package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4

	controller Controller
}

// Camera defines the interface for the camera system.
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	ViewProjectionMatrix() mgl32.Mat4

	// Controller returns the attached controller, or nil.
	Controller() Controller

	// Update reads position/target from the controller and recomputes the
	// matrices. Should be called once per frame. No-op without a controller.
	Update()

	// SetUp sets the camera's up vector and recomputes matrices.
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians and recomputes matrices.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes
	// matrices. Typically called from the resize path.
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	SetFar(far float32)

	// SetController attaches a Controller to the camera.
	SetController(ctrl Controller)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings. A
// controller must be attached via SetController or WithController before
// position/target data is available.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		up:                   mgl32.Vec3{0, 1, 0},
		fov:                  mgl32.DegToRad(45),
		aspect:               1.0,
		near:                 0.1,
		far:                  100.0,
		viewMatrix:           mgl32.Ident4(),
		projectionMatrix:     mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.updateMatrices()
	}
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

// updateMatrices recalculates the view, projection and view-projection
// matrices from the controller's position and target. Caller must hold the
// mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}

	position := c.controller.Position()
	target := c.controller.Target()

	c.viewMatrix = mgl32.LookAtV(position, target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}
