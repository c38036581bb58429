package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option used to configure a Camera
// during construction.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithController attaches a Controller at construction time.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: a function that sets the controller
func WithController(ctrl Controller) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
