package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPositionFront(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX = 0
	c.RotationY = 0
	c.Distance = 5
	c.Center = mgl32.Vec3{1, 2, 3}

	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{1, 2, 8}).Len(), 1e-5, "got %v", c.Position())
}

func TestPositionYaw(t *testing.T) {
	c := NewOrbitCamera()
	c.RotationX = 0
	c.RotationY = math.Pi / 2
	c.Distance = 2

	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{2, 0, 0}).Len(), 1e-5, "got %v", c.Position())
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = mgl32.Vec3{0, 1, 0}

	// The center lands on the view-space -Z axis.
	v := c.ViewMatrix().Mul4x1(c.Center.Vec4(1))
	assert.InDelta(t, 0, v[0], 1e-5)
	assert.InDelta(t, 0, v[1], 1e-5)
	assert.InDelta(t, -c.Distance, v[2], 1e-4)
}

func TestHandleDragClampsPitch(t *testing.T) {
	c := NewOrbitCamera()
	c.HandleDrag(0, 1e6)
	assert.Equal(t, c.MaxPitch, c.RotationX)
	c.HandleDrag(0, -1e6)
	assert.Equal(t, c.MinPitch, c.RotationX)

	c.HandleDrag(100, 0)
	assert.InDelta(t, -100*c.DragSensitivity, c.RotationY, 1e-6)
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewOrbitCamera()
	for i := 0; i < 100; i++ {
		c.HandleZoom(1)
	}
	assert.Equal(t, c.MinDistance, c.Distance)
	for i := 0; i < 100; i++ {
		c.HandleZoom(-1)
	}
	assert.Equal(t, c.MaxDistance, c.Distance)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-0.5, 0, -0.2}, mgl32.Vec3{0.5, 1.6, 0.2})

	assert.InDelta(t, 0, c.Center.Sub(mgl32.Vec3{0, 0.8, 0}).Len(), 1e-5, "got %v", c.Center)
	assert.Greater(t, c.Distance, float32(0.8))
	assert.Greater(t, c.Far, c.Distance)
}

func TestProjectionAspectGuard(t *testing.T) {
	c := NewOrbitCamera()
	assert.Equal(t, c.ProjectionMatrix(1), c.ProjectionMatrix(0))
}
