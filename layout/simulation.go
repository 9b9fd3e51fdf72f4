// Package layout runs a force-directed simulation over a graph
// snapshot. Nodes repel each other, links pull their endpoints toward
// a resting distance, and a centering force keeps the whole drawing
// inside the viewport. The integrator is velocity Verlet with a decaying
// cooling parameter, so the graph settles instead of oscillating.
package layout

import (
	"math"
	"math/rand"

	"qstack-client/models"
)

const (
	linkDistance    = 100.0
	chargeStrength  = -300.0
	collidePadding  = 10.0
	initialRadius   = 10.0
	alphaMin        = 0.001
	friction        = 0.6
	chargeDistMin2  = 1.0
	jiggleMagnitude = 1e-6
	simulationTicks = 300
)

var (
	initialAngle = math.Pi * (3 - math.Sqrt(5))
	alphaDecay   = 1 - math.Pow(alphaMin, 1.0/simulationTicks)
)

// Node carries simulation state for one graph node. FX/FY pin the node
// at a fixed position while set, as during a drag.
type Node struct {
	ID     string
	Kind   string
	Name   string
	Status string
	Radius float64

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	index int
}

// Link joins two nodes after index resolution.
type Link struct {
	Source *Node
	Target *Node
	Status string

	strength float64
	bias     float64
}

type Simulation struct {
	nodes []*Node
	links []*Link
	byID  map[string]*Node

	cx, cy      float64
	alpha       float64
	alphaTarget float64
	rng         *rand.Rand
}

// New builds a simulation from a snapshot. Links that name an unknown
// node are skipped rather than panicking; the snapshot builder should
// never produce them but a stale push event can race a rebuild.
func New(snap models.GraphSnapshot, width, height float64) *Simulation {
	s := &Simulation{
		byID:  make(map[string]*Node, len(snap.Nodes)),
		cx:    width / 2,
		cy:    height / 2,
		alpha: 1,
		rng:   rand.New(rand.NewSource(0x9e3779b9)),
	}

	for i, n := range snap.Nodes {
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		node := &Node{
			ID:     n.ID,
			Kind:   n.Kind,
			Name:   n.Name,
			Status: n.Status,
			Radius: n.Radius,
			X:      s.cx + radius*math.Cos(angle),
			Y:      s.cy + radius*math.Sin(angle),
			index:  i,
		}
		s.nodes = append(s.nodes, node)
		s.byID[n.ID] = node
	}

	degree := make(map[*Node]int)
	for _, l := range snap.Links {
		src, ok := s.byID[l.Source]
		if !ok {
			continue
		}
		dst, ok := s.byID[l.Target]
		if !ok {
			continue
		}
		degree[src]++
		degree[dst]++
		s.links = append(s.links, &Link{Source: src, Target: dst, Status: l.Status})
	}
	for _, l := range s.links {
		sc, tc := float64(degree[l.Source]), float64(degree[l.Target])
		l.strength = 1 / math.Min(sc, tc)
		l.bias = sc / (sc + tc)
	}

	return s
}

// AdoptPositions carries node positions, velocities and pins forward
// from a previous simulation, keyed by node ID. Nodes new to this
// snapshot keep their seeded placement. Adopting an existing layout
// cools the restart so the drawing does not re-explode on every poll.
func (s *Simulation) AdoptPositions(prev *Simulation) {
	if prev == nil {
		return
	}
	adopted := false
	for _, n := range s.nodes {
		p, ok := prev.byID[n.ID]
		if !ok {
			continue
		}
		n.X, n.Y = p.X, p.Y
		n.VX, n.VY = p.VX, p.VY
		n.FX, n.FY = p.FX, p.FY
		adopted = true
	}
	if adopted {
		s.alpha = math.Min(1, math.Max(prev.alpha, 0.1))
	}
}

func (s *Simulation) Nodes() []*Node { return s.nodes }
func (s *Simulation) Links() []*Link { return s.links }
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlphaTarget reheats (or cools) the simulation; dragging sets a
// target of 0.3 so the graph keeps reacting under the cursor.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// Pin fixes a node at the given position until Unpin.
func (s *Simulation) Pin(id string, x, y float64) {
	n, ok := s.byID[id]
	if !ok {
		return
	}
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
	n.X, n.Y = x, y
}

func (s *Simulation) Unpin(id string) {
	if n, ok := s.byID[id]; ok {
		n.FX, n.FY = nil, nil
	}
}

// Settled reports whether the simulation has cooled past the point of
// visible movement.
func (s *Simulation) Settled() bool {
	return s.alpha < alphaMin && s.alphaTarget < alphaMin
}

// Step advances the simulation one tick.
func (s *Simulation) Step() {
	s.alpha += (s.alphaTarget - s.alpha) * alphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	for _, n := range s.nodes {
		if n.FX != nil {
			n.X, n.VX = *n.FX, 0
		} else {
			n.VX *= friction
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y, n.VY = *n.FY, 0
		} else {
			n.VY *= friction
			n.Y += n.VY
		}
	}
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		x := l.Target.X + l.Target.VX - l.Source.X - l.Source.VX
		y := l.Target.Y + l.Target.VY - l.Source.Y - l.Source.VY
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		dist := math.Sqrt(x*x + y*y)
		k := (dist - linkDistance) / dist * s.alpha * l.strength
		x, y = x*k, y*k
		l.Target.VX -= x * l.bias
		l.Target.VY -= y * l.bias
		l.Source.VX += x * (1 - l.bias)
		l.Source.VY += y * (1 - l.bias)
	}
}

func (s *Simulation) applyCharge() {
	for i, a := range s.nodes {
		for _, b := range s.nodes[i+1:] {
			x := b.X - a.X
			y := b.Y - a.Y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < chargeDistMin2 {
				l = math.Sqrt(chargeDistMin2 * l)
			}
			w := chargeStrength * s.alpha / l
			b.VX += x * w
			b.VY += y * w
			a.VX -= x * w
			a.VY -= y * w
		}
	}
}

func (s *Simulation) applyCenter() {
	if len(s.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range s.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(s.nodes)) - s.cx
	sy = sy/float64(len(s.nodes)) - s.cy
	for _, n := range s.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

func (s *Simulation) applyCollide() {
	for i, a := range s.nodes {
		ra := a.Radius + collidePadding
		for _, b := range s.nodes[i+1:] {
			rb := b.Radius + collidePadding
			x := b.X + b.VX - a.X - a.VX
			y := b.Y + b.VY - a.Y - a.VY
			l := x*x + y*y
			r := ra + rb
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			d := math.Sqrt(l)
			k := (r - d) / d
			wa := rb * rb / (ra*ra + rb*rb)
			x, y = x*k, y*k
			b.VX += x * wa
			b.VY += y * wa
			a.VX -= x * (1 - wa)
			a.VY -= y * (1 - wa)
		}
	}
}

// jiggle nudges exactly coincident nodes apart so force directions are
// defined. Seeded, so layouts are reproducible in tests.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * jiggleMagnitude
}
