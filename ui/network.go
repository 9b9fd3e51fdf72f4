package ui

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qstack-client/layout"
	"qstack-client/models"
)

const (
	frameInterval = 33 * time.Millisecond

	zoomMin  = 0.5
	zoomMax  = 3.0
	zoomStep = 1.1

	panStep = 8.0

	// headerRows offsets mouse coordinates to the body viewport.
	headerRows = 1

	// grabRadius is the extra slack, in world units, around a node
	// when hit-testing a mouse press.
	grabRadius = 10.0

	pulsePeriod = 20
)

// networkModel renders the mentor/ticket graph with a running force
// simulation. The snapshot is rebuilt on every graph poll; node
// positions and drag pins carry over by node id.
type networkModel struct {
	sim  *layout.Simulation
	zoom float64
	panX float64
	panY float64

	dragID  string
	panning bool
	lastPX  float64
	lastPY  float64
	frame   int
}

func newNetworkModel() networkModel {
	return networkModel{zoom: 1}
}

// reset drops the simulation so a remount starts from a fresh layout.
func (m networkModel) reset() networkModel {
	m.sim = nil
	m.dragID = ""
	m.panning = false
	return m
}

func (m networkModel) setSnapshot(snap models.GraphSnapshot, width, height int) networkModel {
	pw := float64(width * 2)
	ph := float64(height * 4)
	next := layout.New(snap, pw, ph)
	next.AdoptPositions(m.sim)
	m.sim = next
	return m
}

func (m networkModel) advance() networkModel {
	if m.sim != nil && !m.sim.Settled() {
		m.sim.Step()
	}
	m.frame++
	return m
}

func (m networkModel) handleKey(msg tea.KeyMsg, keys KeyMap) networkModel {
	switch {
	case key.Matches(msg, keys.ZoomIn):
		m.zoom = math.Min(zoomMax, m.zoom*zoomStep)
		return m
	case key.Matches(msg, keys.ZoomOut):
		m.zoom = math.Max(zoomMin, m.zoom/zoomStep)
		return m
	}

	switch msg.String() {
	case "left":
		m.panX += panStep
	case "right":
		m.panX -= panStep
	case "up":
		m.panY += panStep
	case "down":
		m.panY -= panStep
	case "0":
		m.zoom, m.panX, m.panY = 1, 0, 0
	}
	return m
}

func (m networkModel) handleMouse(msg tea.MouseMsg) networkModel {
	if m.sim == nil {
		return m
	}

	px := float64(msg.X * 2)
	py := float64((msg.Y - headerRows) * 4)
	wx := (px - m.panX) / m.zoom
	wy := (py - m.panY) / m.zoom

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoom = math.Min(zoomMax, m.zoom*zoomStep)
		return m
	case tea.MouseButtonWheelDown:
		m.zoom = math.Max(zoomMin, m.zoom/zoomStep)
		return m
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m
		}
		if n := m.hitTest(wx, wy); n != nil {
			m.dragID = n.ID
			m.sim.SetAlphaTarget(0.3)
			m.sim.Pin(n.ID, wx, wy)
		} else {
			m.panning = true
			m.lastPX = px
			m.lastPY = py
		}

	case tea.MouseActionMotion:
		if m.dragID != "" {
			m.sim.Pin(m.dragID, wx, wy)
		} else if m.panning {
			m.panX += px - m.lastPX
			m.panY += py - m.lastPY
			m.lastPX = px
			m.lastPY = py
		}

	case tea.MouseActionRelease:
		if m.dragID != "" {
			m.sim.Unpin(m.dragID)
			m.sim.SetAlphaTarget(0)
			m.dragID = ""
		}
		m.panning = false
	}
	return m
}

func (m networkModel) hitTest(wx, wy float64) *layout.Node {
	var best *layout.Node
	bestDist := math.MaxFloat64
	for _, n := range m.sim.Nodes() {
		d := math.Hypot(n.X-wx, n.Y-wy)
		if d <= n.Radius+grabRadius && d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

func (m networkModel) view(theme Theme, width, height int) string {
	if m.sim == nil {
		return theme.StatusBar.Render("Loading network…")
	}
	if len(m.sim.Nodes()) == 0 {
		return theme.StatusBar.Render("No tickets yet.")
	}

	c := newCanvas(width, height)

	// Links first so nodes draw over them.
	pulsing := (m.frame/pulsePeriod)%2 == 0
	for _, l := range m.sim.Links() {
		x0, y0 := m.project(l.Source.X, l.Source.Y)
		x1, y1 := m.project(l.Target.X, l.Target.Y)
		switch l.Status {
		case models.LinkResolved:
			c.line(x0, y0, x1, y1, theme.Muted)
		default:
			// Approximate the gradient: mentor color on the mentor
			// half, ticket color on the ticket half, pulsing between
			// bright and muted phases.
			mx, my := (x0+x1)/2, (y0+y1)/2
			if pulsing {
				c.line(x0, y0, mx, my, theme.Mentor)
				c.line(mx, my, x1, y1, theme.StatusColor(l.Target.Status))
			} else {
				c.line(x0, y0, x1, y1, theme.Accent)
			}
		}
	}

	for _, n := range m.sim.Nodes() {
		x, y := m.project(n.X, n.Y)
		r := int(math.Max(1, n.Radius*m.zoom/4))
		switch n.Kind {
		case models.NodeMentor:
			c.fillCircle(x, y, r+1, theme.Accent)
			c.fillCircle(x, y, r, theme.Mentor)
			c.label(x+r+2, y, n.Name, lipgloss.NewStyle().Bold(true).Foreground(theme.Mentor))
		default:
			c.fillCircle(x, y, r, theme.StatusColor(n.Status))
		}
	}

	return c.render()
}

func (m networkModel) project(x, y float64) (int, int) {
	return int(x*m.zoom + m.panX), int(y*m.zoom + m.panY)
}
