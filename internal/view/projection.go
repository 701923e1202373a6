package view

import "math"

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// Orthographic projects geographic coordinates onto a globe seen from
// infinite distance, showing one hemisphere. Points on the far hemisphere
// are clipped. Rotation follows the mapping convention: a rotation of
// [-lon, -lat] centres the view on (lon, lat).
type Orthographic struct {
	size    int     // square drawing area, in cells
	radius  float64 // globe radius in cell rows
	aspect  float64 // horizontal stretch compensating cell geometry
	offsetX int
	offsetY int

	rotLon float64
	rotLat float64
}

// NewOrthographic sizes a square drawing area from the viewport: the lesser
// of 90% of the width or 45% of the aspect-scaled height, so the globe stays
// square and visible. aspect is the cell width/height compensation (2 for
// terminal cells roughly twice as tall as wide, 1 for square pixels).
func NewOrthographic(viewW, viewH int, aspect float64) *Orthographic {
	if aspect <= 0 {
		aspect = 1
	}
	size := int(0.90 * float64(viewW))
	if scaled := int(0.45 * float64(viewH) * aspect); scaled < size {
		size = scaled
	}
	if size < 8 {
		size = 8
	}
	p := &Orthographic{
		size:   size,
		radius: float64(size)/(2*aspect) - 1,
		aspect: aspect,
	}
	if p.radius < 1 {
		p.radius = 1
	}
	return p
}

// Size returns the side of the square drawing area in cells.
func (p *Orthographic) Size() int { return p.size }

// SetOffset positions the drawing area's top-left corner on the surface.
func (p *Orthographic) SetOffset(x, y int) {
	p.offsetX, p.offsetY = x, y
}

// SetRotation stores the rotation vector. Rotation always reflects the most
// recent known ground position.
func (p *Orthographic) SetRotation(lon, lat float64) {
	p.rotLon, p.rotLat = lon, lat
}

// Rotation returns the current rotation vector.
func (p *Orthographic) Rotation() (lon, lat float64) {
	return p.rotLon, p.rotLat
}

// Center returns the geographic point currently at the middle of the view.
func (p *Orthographic) Center() (lon, lat float64) {
	return -p.rotLon, -p.rotLat
}

// Project maps (lon, lat) in degrees to surface cell coordinates. visible
// is false for points on the far hemisphere (clipped at 90° from centre).
func (p *Orthographic) Project(lon, lat float64) (x, y int, visible bool) {
	cLon, cLat := p.Center()
	lam := (lon - cLon) * deg2rad
	phi := lat * deg2rad
	phi0 := cLat * deg2rad

	cosC := math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(lam)
	if cosC < 0 {
		return 0, 0, false
	}

	px := math.Cos(phi) * math.Sin(lam)
	py := math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(lam)

	cx := float64(p.size) / 2
	cy := float64(p.size) / (2 * p.aspect)
	x = p.offsetX + int(math.Round(cx+px*p.radius*p.aspect))
	y = p.offsetY + int(math.Round(cy-py*p.radius))
	return x, y, true
}

// CenterCell returns the surface cell at the middle of the globe, where the
// tracked satellite always sits since the view is recentred on every fix.
func (p *Orthographic) CenterCell() (x, y int) {
	return p.offsetX + p.size/2, p.offsetY + int(float64(p.size)/(2*p.aspect))
}

// Outline yields points approximating the sphere's limb.
func (p *Orthographic) Outline() [][2]int {
	cx := float64(p.size) / 2
	cy := float64(p.size) / (2 * p.aspect)
	var pts [][2]int
	for deg := 0; deg < 360; deg++ {
		a := float64(deg) * deg2rad
		x := p.offsetX + int(math.Round(cx+math.Cos(a)*p.radius*p.aspect))
		y := p.offsetY + int(math.Round(cy-math.Sin(a)*p.radius))
		pts = append(pts, [2]int{x, y})
	}
	return pts
}

// Graticule yields the latitude/longitude grid as polylines in degrees,
// every stepDeg degrees, sampled finely enough to render smooth arcs.
func Graticule(stepDeg int) [][][2]float64 {
	if stepDeg <= 0 {
		stepDeg = 30
	}
	var lines [][][2]float64
	// Meridians.
	for lon := -180; lon < 180; lon += stepDeg {
		var line [][2]float64
		for lat := -90.0; lat <= 90.0; lat += 2 {
			line = append(line, [2]float64{float64(lon), lat})
		}
		lines = append(lines, line)
	}
	// Parallels.
	for lat := -90 + stepDeg; lat < 90; lat += stepDeg {
		var line [][2]float64
		for lon := -180.0; lon <= 180.0; lon += 2 {
			line = append(line, [2]float64{lon, float64(lat)})
		}
		lines = append(lines, line)
	}
	return lines
}
