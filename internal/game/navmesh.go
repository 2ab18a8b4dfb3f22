package game

import "container/heap"

// NavMode selects which living units block a path.
type NavMode int

const (
	// UnitsBlock treats every other living unit as an obstacle.
	UnitsBlock NavMode = iota
	// UnitsPass only blocks on walls and corpses.
	UnitsPass
)

// NavGrid is a board-sized walkability grid where true = blocked.
// It is rebuilt for every query from the living units.
type NavGrid struct {
	size    int
	blocked []bool
}

// NewNavGrid snapshots the board for a path query by self. self never blocks.
func (b *Battle) NewNavGrid(self *Unit, mode NavMode) *NavGrid {
	ng := &NavGrid{size: b.Size, blocked: make([]bool, b.Size*b.Size)}
	for _, u := range b.Units {
		if !u.Alive || u == self || !b.InBounds(u.Pos) {
			continue
		}
		if mode == UnitsPass && !u.Arch.Obstacle() {
			continue
		}
		ng.blocked[u.Pos.Y*ng.size+u.Pos.X] = true
	}
	return ng
}

// IsBlocked returns true if the cell is off the board or occupied.
func (ng *NavGrid) IsBlocked(p Point) bool {
	if p.X < 0 || p.Y < 0 || p.X >= ng.size || p.Y >= ng.size {
		return true
	}
	return ng.blocked[p.Y*ng.size+p.X]
}

// --- A* pathfinding ---

type pathNode struct {
	p      Point
	g, h   int
	seq    int // insertion order, breaks ties on f
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)  { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x any)    { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	n.index = -1
	return n
}

// FindPath returns the cells from start to goal inclusive, or nil when the
// goal cannot be reached. Steps cost 1 in all 8 directions and the
// heuristic is Manhattan distance.
func (ng *NavGrid) FindPath(start, goal Point) []Point {
	if start == goal {
		return []Point{start}
	}
	key := func(p Point) int { return p.Y*ng.size + p.X }
	seq := 0
	startNode := &pathNode{p: start, h: Manhattan(start, goal)}
	ol := &openList{startNode}
	heap.Init(ol)

	closed := make(map[int]bool)
	open := map[int]*pathNode{key(start): startNode}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.p == goal {
			return buildPath(cur)
		}
		k := key(cur.p)
		delete(open, k)
		closed[k] = true

		for _, d := range dirs {
			np := Point{cur.p.X + d[0], cur.p.Y + d[1]}
			if ng.IsBlocked(np) {
				continue
			}
			nk := key(np)
			if closed[nk] {
				continue
			}
			g := cur.g + 1
			if prev, ok := open[nk]; ok {
				if g < prev.g {
					prev.g = g
					prev.parent = cur
					heap.Fix(ol, prev.index)
				}
				continue
			}
			seq++
			node := &pathNode{p: np, g: g, h: Manhattan(np, goal), seq: seq, parent: cur}
			open[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil
}

func buildPath(end *pathNode) []Point {
	var cells []Point
	for n := end; n != nil; n = n.parent {
		cells = append(cells, n.p)
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// FindPath plans a route for u on the current board.
func (b *Battle) FindPath(u *Unit, goal Point, mode NavMode) []Point {
	return b.NewNavGrid(u, mode).FindPath(u.Pos, goal)
}

// MoveToTarget returns the next cell for u on a path toward target, or u's
// own cell when no progress is possible. An occupied target is swapped for
// its free neighbour closest to u.
func (b *Battle) MoveToTarget(u *Unit, target Point, mode NavMode) Point {
	occupied := func(p Point) bool {
		o := b.UnitAt(p)
		if o == nil || o == u {
			return false
		}
		return mode == UnitsBlock || o.Arch.Obstacle()
	}
	if occupied(target) {
		var free []Point
		for _, n := range b.Neighbors(target) {
			if !occupied(n) {
				free = append(free, n)
			}
		}
		if len(free) == 0 {
			return u.Pos
		}
		best := free[0]
		for _, n := range free[1:] {
			if Manhattan(n, u.Pos) < Manhattan(best, u.Pos) {
				best = n
			}
		}
		target = best
	}
	path := b.FindPath(u, target, mode)
	if len(path) > 1 {
		return path[1]
	}
	return u.Pos
}
