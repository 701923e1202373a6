package view

import "testing"

func TestNewOrthographicSizing(t *testing.T) {
	// A wide viewport: the height term governs.
	p := NewOrthographic(200, 40, 2)
	if want := int(0.45 * 40 * 2); p.Size() != want {
		t.Fatalf("Size() = %d, want %d", p.Size(), want)
	}

	// A narrow viewport: the width term governs.
	p = NewOrthographic(20, 200, 2)
	if want := int(0.90 * 20); p.Size() != want {
		t.Fatalf("Size() = %d, want %d", p.Size(), want)
	}

	// A tiny viewport still leaves a drawable globe.
	p = NewOrthographic(2, 2, 2)
	if p.Size() < 8 {
		t.Fatalf("Size() = %d, want at least 8", p.Size())
	}
}

func TestRotationAndCenter(t *testing.T) {
	p := NewOrthographic(80, 40, 2)
	p.SetRotation(-100, -45)

	lon, lat := p.Rotation()
	if lon != -100 || lat != -45 {
		t.Fatalf("Rotation() = (%v, %v), want (-100, -45)", lon, lat)
	}
	cLon, cLat := p.Center()
	if cLon != 100 || cLat != 45 {
		t.Fatalf("Center() = (%v, %v), want (100, 45)", cLon, cLat)
	}
}

func TestProjectCenterLandsOnCenterCell(t *testing.T) {
	p := NewOrthographic(80, 40, 2)
	p.SetOffset(3, 2)
	p.SetRotation(-100, -45)

	x, y, visible := p.Project(100, 45)
	if !visible {
		t.Fatal("the view centre projected as invisible")
	}
	cx, cy := p.CenterCell()
	if x != cx || y != cy {
		t.Fatalf("Project(centre) = (%d, %d), want the centre cell (%d, %d)", x, y, cx, cy)
	}
}

func TestProjectClipsFarHemisphere(t *testing.T) {
	p := NewOrthographic(80, 40, 2)
	p.SetRotation(0, 0) // centred on (0, 0)

	if _, _, visible := p.Project(180, 0); visible {
		t.Fatal("the antipode projected as visible")
	}
	if _, _, visible := p.Project(0, 0); !visible {
		t.Fatal("the centre projected as invisible")
	}
	if _, _, visible := p.Project(89, 0); !visible {
		t.Fatal("a near-limb point projected as invisible")
	}
}

func TestProjectStaysInsideDrawingArea(t *testing.T) {
	p := NewOrthographic(80, 40, 2)
	p.SetRotation(0, 0)

	for lon := -80; lon <= 80; lon += 10 {
		for lat := -80; lat <= 80; lat += 10 {
			x, y, visible := p.Project(float64(lon), float64(lat))
			if !visible {
				continue
			}
			if x < 0 || x > p.Size() || y < 0 || y > p.Size() {
				t.Fatalf("Project(%d, %d) = (%d, %d), outside the %d-cell area",
					lon, lat, x, y, p.Size())
			}
		}
	}
}

func TestGraticule(t *testing.T) {
	lines := Graticule(30)
	// 360/30 meridians plus parallels every 30° strictly between the poles.
	wantMeridians := 12
	wantParallels := 5
	if len(lines) != wantMeridians+wantParallels {
		t.Fatalf("Graticule(30) produced %d lines, want %d", len(lines), wantMeridians+wantParallels)
	}
	for i, line := range lines {
		if len(line) < 2 {
			t.Fatalf("line %d has %d points", i, len(line))
		}
	}
}
