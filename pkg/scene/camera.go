package scene

import (
	"math"

	"github.com/chazu/crease/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position v3.Vec
	Target   v3.Vec
	UpDir    v3.Vec
	FOV      float64 // vertical field of view in degrees
	Aspect   float64 // width / height
	Near     float64
	Far      float64
}

// NewCamera returns a camera with the default pose.
func NewCamera() *Camera {
	c := &Camera{}
	c.Defaults()
	return c
}

// Defaults sets the lens and pose defaults.
func (c *Camera) Defaults() {
	c.FOV = 45
	c.Aspect = 1.5
	c.Near = 0.01
	c.Far = 1000
	c.DefaultPose()
}

// DefaultPose looks down the stack axis at the origin from 0,0,30 with +Y
// up.
func (c *Camera) DefaultPose() {
	c.Position = v3.Vec{Z: 30}
	c.LookAt(v3.Vec{}, v3.Vec{Y: 1})
}

// LookAt points the camera at target with the given up direction.
func (c *Camera) LookAt(target, up v3.Vec) {
	c.Target = target
	if up.Length() < geom.Epsilon {
		up = v3.Vec{Y: 1}
	}
	c.UpDir = up.Normalize()
}

// ViewVector is the vector from the target to the camera.
func (c *Camera) ViewVector() v3.Vec {
	return c.Position.Sub(c.Target)
}

// Basis returns the camera right, up and forward unit vectors.
func (c *Camera) Basis() (right, up, forward v3.Vec) {
	forward = c.Target.Sub(c.Position)
	if forward.Length() < geom.Epsilon {
		forward = v3.Vec{Z: -1}
	}
	forward = forward.Normalize()
	right = forward.Cross(c.UpDir)
	if right.Length() < geom.Epsilon {
		// Looking along UpDir; pick any perpendicular.
		right = forward.Cross(v3.Vec{X: 1})
		if right.Length() < geom.Epsilon {
			right = forward.Cross(v3.Vec{Y: 1})
		}
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

func (c *Camera) tanHalf() float64 {
	return math.Tan(c.FOV * math.Pi / 360)
}

// Ray returns the world ray through normalized device coordinates x, y.
func (c *Camera) Ray(x, y float64) geom.Ray {
	right, up, forward := c.Basis()
	th := c.tanHalf()
	dir := forward.Add(right.MulScalar(x * th * c.Aspect)).Add(up.MulScalar(y * th))
	return geom.Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Project maps a world point to normalized device coordinates. depth is the
// distance along the view axis; ok is false for points not in front of the
// near plane.
func (c *Camera) Project(p v3.Vec) (x, y, depth float64, ok bool) {
	right, up, forward := c.Basis()
	d := p.Sub(c.Position)
	depth = d.Dot(forward)
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	th := c.tanHalf()
	x = d.Dot(right) / (depth * th * c.Aspect)
	y = d.Dot(up) / (depth * th)
	return x, y, depth, true
}

// Orbit moves the camera around the target by the given angles in degrees
// (delX = left/right, delY = up/down), keeping its distance and rotating the
// up direction with vertical moves.
func (c *Camera) Orbit(delX, delY float64) {
	offset := c.ViewVector()
	if offset.Length() < geom.Epsilon {
		offset = v3.Vec{Z: 1}
	}
	right, _, _ := c.Basis()

	yaw := sdf.Rotate3d(c.UpDir, delX*math.Pi/180)
	pitch := sdf.Rotate3d(right, delY*math.Pi/180)
	rot := pitch.Mul(yaw)

	c.Position = c.Target.Add(rot.MulPosition(offset))
	c.UpDir = pitch.MulPosition(c.UpDir).Normalize()
}

// Pan moves camera and target together in the view plane.
func (c *Camera) Pan(delX, delY float64) {
	right, up, _ := c.Basis()
	d := right.MulScalar(-delX).Add(up.MulScalar(-delY))
	c.Position = c.Position.Add(d)
	c.Target = c.Target.Add(d)
}

// Zoom moves the camera toward (negative) or away from (positive) the
// target by the given fraction of the current distance.
func (c *Camera) Zoom(pct float64) {
	offset := c.ViewVector()
	dist := offset.Length()
	next := dist * (1 + pct)
	if next < c.Near*10 {
		next = c.Near * 10
	}
	if dist < geom.Epsilon {
		offset, dist = v3.Vec{Z: 1}, 1
	}
	c.Position = c.Target.Add(offset.MulScalar(next / dist))
}
