package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Elevation is kept away from the poles where the look-at basis degenerates.
const (
	MinElevation = 0.01
	MaxElevation = math.Pi - 0.01
)

// Distances span 1e9..1e13 world units, so everything here is float64 and
// converted to float32 only when the uniform blocks are packed.
const (
	DefaultOrbitRadius    = 6.34194e10
	DefaultMinOrbitRadius = 1e10
	DefaultMaxOrbitRadius = 1e12
	DefaultOrbitSpeed     = 0.01
	DefaultZoomSpeed      = 25e9
	DefaultFovDegrees     = 60.0
	DefaultNearPlane      = 1e9
	DefaultFarPlane       = 1e14
)

var WorldUp = mgl64.Vec3{0, 1, 0}

type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// OrbitalCamera orbits a target on a sphere parameterised by azimuth,
// elevation and radius. View and projection are rebuilt lazily.
type OrbitalCamera struct {
	azimuth   float64
	elevation float64

	radius     float64
	minRadius  float64
	maxRadius  float64
	orbitSpeed float64
	zoomSpeed  float64

	target mgl64.Vec3

	fovDeg float64
	aspect float64
	near   float64
	far    float64

	dragging bool
	// panning is reserved; no input path sets it yet.
	panning bool

	lastX, lastY float64
	haveCursor   bool

	viewDirty bool
	projDirty bool
	view      mgl64.Mat4
	proj      mgl64.Mat4
}

func NewOrbitalCamera() *OrbitalCamera {
	return &OrbitalCamera{
		azimuth:    0,
		elevation:  math.Pi / 2,
		radius:     DefaultOrbitRadius,
		minRadius:  DefaultMinOrbitRadius,
		maxRadius:  DefaultMaxOrbitRadius,
		orbitSpeed: DefaultOrbitSpeed,
		zoomSpeed:  DefaultZoomSpeed,
		fovDeg:     DefaultFovDegrees,
		aspect:     16.0 / 9.0,
		near:       DefaultNearPlane,
		far:        DefaultFarPlane,
		viewDirty:  true,
		projDirty:  true,
	}
}

func clampElevation(e float64) float64 {
	if math.IsNaN(e) {
		return math.Pi / 2
	}
	return mgl64.Clamp(e, MinElevation, MaxElevation)
}

func (c *OrbitalCamera) clampRadius() {
	if math.IsNaN(c.radius) {
		c.radius = c.minRadius
	}
	c.radius = mgl64.Clamp(c.radius, c.minRadius, c.maxRadius)
}

// ProcessDragDelta rotates the camera by a cursor delta while dragging.
func (c *OrbitalCamera) ProcessDragDelta(dx, dy float64) {
	if !c.dragging || c.panning {
		return
	}
	c.azimuth += dx * c.orbitSpeed
	c.elevation = clampElevation(c.elevation - dy*c.orbitSpeed)
	c.viewDirty = true
}

// ProcessCursor turns an absolute cursor position into a drag delta. The first
// sample only seeds the cache.
func (c *OrbitalCamera) ProcessCursor(x, y float64) {
	if c.haveCursor {
		c.ProcessDragDelta(x-c.lastX, y-c.lastY)
	}
	c.lastX, c.lastY = x, y
	c.haveCursor = true
}

// ProcessButton starts or ends a drag on the left button. Other buttons are
// reserved for panning.
func (c *OrbitalCamera) ProcessButton(button MouseButton, pressed bool) {
	if button != MouseButtonLeft {
		return
	}
	c.dragging = pressed
	c.panning = false
}

func (c *OrbitalCamera) ProcessScroll(deltaY float64) {
	c.radius -= deltaY * c.zoomSpeed
	c.clampRadius()
	c.viewDirty = true
}

func (c *OrbitalCamera) Dragging() bool { return c.dragging }
func (c *OrbitalCamera) Panning() bool  { return c.panning }

// Moving is true while the user manipulates the camera.
func (c *OrbitalCamera) Moving() bool { return c.dragging || c.panning }

func (c *OrbitalCamera) SetPanning(on bool) { c.panning = on }

func (c *OrbitalCamera) Azimuth() float64   { return c.azimuth }
func (c *OrbitalCamera) Elevation() float64 { return c.elevation }
func (c *OrbitalCamera) Radius() float64    { return c.radius }
func (c *OrbitalCamera) MinRadius() float64 { return c.minRadius }
func (c *OrbitalCamera) MaxRadius() float64 { return c.maxRadius }

func (c *OrbitalCamera) SetAzimuth(a float64) {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return
	}
	c.azimuth = a
	c.viewDirty = true
}

func (c *OrbitalCamera) SetElevation(e float64) {
	c.elevation = clampElevation(e)
	c.viewDirty = true
}

func (c *OrbitalCamera) SetRadius(r float64) {
	c.radius = r
	c.clampRadius()
	c.viewDirty = true
}

// SetLimits changes the zoom range. A non-positive or NaN minimum is ignored,
// a maximum below the minimum is raised to it.
func (c *OrbitalCamera) SetLimits(minRadius, maxRadius float64) {
	if minRadius > 0 && !math.IsInf(minRadius, 0) {
		c.minRadius = minRadius
	}
	if math.IsNaN(maxRadius) || maxRadius < c.minRadius {
		maxRadius = c.minRadius
	}
	c.maxRadius = maxRadius
	c.clampRadius()
	c.viewDirty = true
}

func (c *OrbitalCamera) SetSpeeds(orbitSpeed, zoomSpeed float64) {
	if orbitSpeed > 0 {
		c.orbitSpeed = orbitSpeed
	}
	if zoomSpeed > 0 {
		c.zoomSpeed = zoomSpeed
	}
}

func (c *OrbitalCamera) Target() mgl64.Vec3 { return c.target }

func (c *OrbitalCamera) SetTarget(t mgl64.Vec3) {
	c.target = t
	c.viewDirty = true
}

func (c *OrbitalCamera) FovDegrees() float64 { return c.fovDeg }
func (c *OrbitalCamera) Aspect() float64     { return c.aspect }

func (c *OrbitalCamera) SetFov(deg float64) {
	if deg <= 0 || deg >= 180 || deg == c.fovDeg {
		return
	}
	c.fovDeg = deg
	c.projDirty = true
}

func (c *OrbitalCamera) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsInf(aspect, 0) || math.IsNaN(aspect) || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.projDirty = true
}

// TanHalfFov is tan(fov/2) with the field of view in radians.
func (c *OrbitalCamera) TanHalfFov() float64 {
	return math.Tan(mgl64.DegToRad(c.fovDeg) / 2)
}

// Position is the world-space eye position.
func (c *OrbitalCamera) Position() mgl64.Vec3 {
	e := clampElevation(c.elevation)
	return c.target.Add(mgl64.Vec3{
		c.radius * math.Sin(e) * math.Cos(c.azimuth),
		c.radius * math.Cos(e),
		c.radius * math.Sin(e) * math.Sin(c.azimuth),
	})
}

// Basis returns the orthonormal right, up and forward vectors of the view.
func (c *OrbitalCamera) Basis() (right, up, forward mgl64.Vec3) {
	forward = c.target.Sub(c.Position()).Normalize()
	right = forward.Cross(WorldUp).Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

func (c *OrbitalCamera) ViewMatrix() mgl64.Mat4 {
	if c.viewDirty {
		c.view = mgl64.LookAtV(c.Position(), c.target, WorldUp)
		c.viewDirty = false
	}
	return c.view
}

func (c *OrbitalCamera) ProjectionMatrix() mgl64.Mat4 {
	if c.projDirty {
		c.proj = mgl64.Perspective(mgl64.DegToRad(c.fovDeg), c.aspect, c.near, c.far)
		c.projDirty = false
	}
	return c.proj
}

// Ray returns the eye position and the unit direction through the given
// normalized device coordinates.
func (c *OrbitalCamera) Ray(ndcX, ndcY float64) (origin, dir mgl64.Vec3) {
	right, up, forward := c.Basis()
	t := c.TanHalfFov()
	dir = forward.
		Add(right.Mul(ndcX * t * c.aspect)).
		Add(up.Mul(ndcY * t)).
		Normalize()
	return c.Position(), dir
}
