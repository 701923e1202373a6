package view

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// cellAspect compensates terminal cells being roughly twice as tall as wide.
const cellAspect = 2.0

const maxLogLines = 128

// TermSurface renders the globe, labels, and log panel on a tcell screen.
// It implements Surface. All drawing happens on the caller's goroutine; the
// mutex only guards state shared with the event loop (resize).
type TermSurface struct {
	mu     sync.Mutex
	screen tcell.Screen
	atlas  *Atlas
	proj   *Orthographic

	labels     Labels
	trajectory [][2]float64
	logLines   []string // top-to-bottom display order, newest first
}

// NewTermSurface sets up the projection for the current screen size and
// draws the static layers once.
func NewTermSurface(screen tcell.Screen, atlas *Atlas) *TermSurface {
	s := &TermSurface{screen: screen, atlas: atlas}
	w, h := screen.Size()
	s.proj = newScreenProjection(w, h)
	s.draw()
	return s
}

// newScreenProjection reserves the bottom rows for the log panel and builds
// a projection for the remaining area.
func newScreenProjection(w, h int) *Orthographic {
	mapH := h - logPanelRows(h)
	if mapH < 4 {
		mapH = 4
	}
	p := NewOrthographic(w, mapH, cellAspect)
	p.SetOffset(1, 1)
	return p
}

func logPanelRows(h int) int {
	rows := h / 5
	if rows < 3 {
		rows = 3
	}
	return rows
}

// Resize rebuilds the projection for a new screen size, keeping rotation.
func (s *TermSurface) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	lon, lat := s.proj.Rotation()
	w, h := s.screen.Size()
	s.proj = newScreenProjection(w, h)
	s.proj.SetRotation(lon, lat)
	s.draw()
}

// SetRotation implements Surface.
func (s *TermSurface) SetRotation(lon, lat float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proj.SetRotation(lon, lat)
}

// RedrawLayers implements Surface.
func (s *TermSurface) RedrawLayers(trajectory [][2]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trajectory = trajectory
	s.draw()
}

// UpdateLabels implements Surface.
func (s *TermSurface) UpdateLabels(labels Labels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = labels
	s.drawChrome()
	s.screen.Show()
}

// AppendLogLines implements Surface. Lines are prepended one at a time in
// order, so the last line of a batch ends up on top.
func (s *TermSurface) AppendLogLines(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		s.logLines = append([]string{line}, s.logLines...)
	}
	if len(s.logLines) > maxLogLines {
		s.logLines = s.logLines[:maxLogLines]
	}
	s.drawChrome()
	s.screen.Show()
}

var (
	styleSphere     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGraticule  = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleLand       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleTrajectory = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleMarker     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleLabel      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLog        = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// draw renders every layer back-to-front: sphere outline, graticule, land,
// borders, trajectory, marker, then labels and log.
func (s *TermSurface) draw() {
	s.screen.Clear()

	for _, pt := range s.proj.Outline() {
		s.screen.SetContent(pt[0], pt[1], '.', nil, styleSphere)
	}
	for _, line := range Graticule(30) {
		s.plotLine(line, '·', styleGraticule)
	}
	if s.atlas != nil {
		for _, line := range s.atlas.Land {
			s.plotLine(line, '#', styleLand)
		}
		for _, line := range s.atlas.Borders {
			s.plotLine(line, '+', styleBorder)
		}
	}
	s.plotLine(s.trajectory, '*', styleTrajectory)

	// The view is recentred on the satellite every fix, so the marker sits
	// at the globe's centre cell.
	mx, my := s.proj.CenterCell()
	s.screen.SetContent(mx, my, '@', nil, styleMarker)

	s.drawChrome()
	s.screen.Show()
}

func (s *TermSurface) plotLine(line [][2]float64, ch rune, style tcell.Style) {
	for _, pt := range line {
		if x, y, ok := s.proj.Project(pt[0], pt[1]); ok {
			s.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// drawChrome renders the label column and log panel without touching the
// globe area.
func (s *TermSurface) drawChrome() {
	w, h := s.screen.Size()
	col := s.proj.Size() + 4
	if col >= w-10 {
		col = w - 20
		if col < 0 {
			col = 0
		}
	}

	rows := []string{
		fmt.Sprintf("longitude: %9.4f", s.labels.Lon),
		fmt.Sprintf("latitude:  %9.4f", s.labels.Lat),
		fmt.Sprintf("azimuth:   %9.4f", s.labels.Az),
		fmt.Sprintf("altitude:  %9.4f", s.labels.Alt),
		fmt.Sprintf("time:      %s", s.labels.Time),
	}
	for i, row := range rows {
		s.printAt(col, 1+i, row, styleLabel, w)
	}
	s.printAt(col, 7, "[c] start  [C] stop computing", styleLog, w)
	s.printAt(col, 8, "[t] start  [T] stop tracking", styleLog, w)
	s.printAt(col, 9, "[q] quit", styleLog, w)

	panelTop := h - logPanelRows(h)
	s.printAt(1, panelTop, "log:", styleLabel, w)
	for i := 0; i < logPanelRows(h)-1; i++ {
		// Clear the row before writing so shorter lines don't leave residue.
		for x := 1; x < w; x++ {
			s.screen.SetContent(x, panelTop+1+i, ' ', nil, styleLog)
		}
		if i < len(s.logLines) {
			s.printAt(1, panelTop+1+i, s.logLines[i], styleLog, w)
		}
	}
}

func (s *TermSurface) printAt(x, y int, text string, style tcell.Style, maxW int) {
	for i, r := range text {
		if x+i >= maxW {
			break
		}
		s.screen.SetContent(x+i, y, r, nil, style)
	}
}
