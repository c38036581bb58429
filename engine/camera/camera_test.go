package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, mgl32.DegToRad(45), c.Fov(), 1e-6)
	assert.Equal(t, mgl32.Ident4(), c.ViewMatrix())
	assert.Nil(t, c.Controller())
}

func TestCameraLooksAtControllerTarget(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 10)
	c := NewCamera(WithController(orbit), WithAspect(16.0/9.0))

	// The orbit target must project to the center of the view.
	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
}

func TestCameraSetAspectRecomputesProjection(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 10)
	c := NewCamera(WithController(orbit), WithAspect(1))

	before := c.ProjectionMatrix()
	c.SetAspect(2)
	assert.NotEqual(t, before, c.ProjectionMatrix())
}

func TestCameraUpdateFollowsController(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 10)
	c := NewCamera(WithController(orbit))

	before := c.ViewMatrix()
	orbit.Rotate(math32.Pi/2, 0)
	c.Update()
	assert.NotEqual(t, before, c.ViewMatrix())
}

func TestOrbitControllerPosition(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{1, 2, 3}, 5)

	// Yaw 0, pitch 0: the camera sits on the target's +Z axis.
	pos := orbit.Position()
	assert.InDelta(t, 1, pos.X(), 1e-5)
	assert.InDelta(t, 2, pos.Y(), 1e-5)
	assert.InDelta(t, 8, pos.Z(), 1e-5)

	// The orbit distance is invariant under rotation.
	orbit.Rotate(1.3, 0.7)
	assert.InDelta(t, 5, orbit.Position().Sub(orbit.Target()).Len(), 1e-5)
}

func TestOrbitControllerPitchClamped(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 5)
	orbit.Rotate(0, 100)

	// Short of the pole: the view direction never becomes parallel to up.
	pos := orbit.Position()
	assert.Greater(t, float64(math32.Hypot(pos.X(), pos.Z())), 1e-4)
}

func TestOrbitControllerZoomClamped(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 10, WithZoomRange(2, 20))

	orbit.Zoom(100)
	assert.InDelta(t, 2, orbit.Position().Len(), 1e-5)

	orbit.Zoom(-100)
	assert.InDelta(t, 20, orbit.Position().Len(), 1e-5)
}

func TestOrbitControllerSetTarget(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 5)
	orbit.SetTarget(mgl32.Vec3{4, 0, 0})
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, orbit.Target())
}

func TestWithAnglesInitialOrientation(t *testing.T) {
	orbit := NewOrbitController(mgl32.Vec3{}, 5, WithAngles(math32.Pi/2, 0))

	// Yaw pi/2 puts the camera on the +X axis.
	pos := orbit.Position()
	require.InDelta(t, 5, pos.X(), 1e-5)
	assert.InDelta(t, 0, pos.Z(), 1e-5)
}
