package geo

import (
	"fmt"
	"math"
	"sort"
)

// radiusToleranceKm absorbs floating-point noise at the radius boundary:
// points within tolerance of the cutoff are included rather than dropped.
const radiusToleranceKm = 1e-6

// leafSize is the range below which a node stops splitting and queries fall
// back to per-point haversine checks. Small enough to keep queries O(log n + k),
// large enough that leaves stay cache-friendly.
const leafSize = 32

// Tree is an immutable spatial index over a fixed set of points supporting
// exact radius queries under the haversine metric. Points are embedded on the
// unit sphere in 3-D; chord distance there is strictly monotone in haversine
// distance, so ball pruning by chord bound plus a per-point haversine check
// at the leaves returns exactly the points within the radius — no false
// positives, no false negatives.
//
// Internals are flat arrays: the point arena is reordered in place during the
// build and nodes reference index ranges into it, so the structure holds no
// pointers between nodes. A Tree is read-only after Build and safe for
// concurrent queries.
type Tree struct {
	nodes []treeNode

	// Point arena, reordered during build. xs/ys/zs are unit-sphere
	// coordinates; lats/lons keep the original degrees for leaf checks;
	// ids maps arena positions back to input positions.
	xs, ys, zs []float64
	lats, lons []float64
	ids        []int
}

// treeNode is a bounding ball over the arena range [start, end). Leaves have
// left == -1.
type treeNode struct {
	left, right int32
	start, end  int32
	cx, cy, cz  float64 // ball center (unit vector, not normalized to length 1 exactly but close)
	radius      float64 // max chord distance from center to members
}

// Build constructs the index from parallel longitude/latitude arrays in
// decimal degrees. The build is O(n log n): each level partitions its range
// at the median of the widest-spread embedded axis.
func Build(lons, lats []float64) (*Tree, error) {
	if len(lons) != len(lats) {
		return nil, fmt.Errorf("build spatial index: %d longitudes vs %d latitudes", len(lons), len(lats))
	}
	n := len(lons)
	t := &Tree{
		xs:   make([]float64, n),
		ys:   make([]float64, n),
		zs:   make([]float64, n),
		lats: make([]float64, n),
		lons: make([]float64, n),
		ids:  make([]int, n),
	}
	const rad = math.Pi / 180
	for i := 0; i < n; i++ {
		latR, lonR := lats[i]*rad, lons[i]*rad
		cosLat := math.Cos(latR)
		t.xs[i] = cosLat * math.Cos(lonR)
		t.ys[i] = cosLat * math.Sin(lonR)
		t.zs[i] = math.Sin(latR)
		t.lats[i] = lats[i]
		t.lons[i] = lons[i]
		t.ids[i] = i
	}
	if n > 0 {
		t.nodes = make([]treeNode, 0, 2*n/leafSize+1)
		t.buildRange(0, n)
	}
	return t, nil
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return len(t.ids) }

// buildRange appends the subtree covering arena range [start, end) and
// returns its node index.
func (t *Tree) buildRange(start, end int) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{left: -1, right: -1, start: int32(start), end: int32(end)})

	// Bounding ball: centroid of member vectors, radius = max chord to it.
	var cx, cy, cz float64
	for i := start; i < end; i++ {
		cx += t.xs[i]
		cy += t.ys[i]
		cz += t.zs[i]
	}
	n := float64(end - start)
	cx, cy, cz = cx/n, cy/n, cz/n
	var radius float64
	for i := start; i < end; i++ {
		if d := chord(cx, cy, cz, t.xs[i], t.ys[i], t.zs[i]); d > radius {
			radius = d
		}
	}
	t.nodes[idx].cx, t.nodes[idx].cy, t.nodes[idx].cz = cx, cy, cz
	t.nodes[idx].radius = radius

	if end-start <= leafSize {
		return idx
	}

	axis := t.widestAxis(start, end)
	mid := start + (end-start)/2
	t.selectNth(start, end-1, mid, axis)

	left := t.buildRange(start, mid)
	right := t.buildRange(mid, end)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

// widestAxis picks the embedded axis with the largest coordinate spread over
// the range, the standard split heuristic for balanced depth.
func (t *Tree) widestAxis(start, end int) int {
	axes := [3][]float64{t.xs, t.ys, t.zs}
	best, bestSpread := 0, -1.0
	for a, coords := range axes {
		lo, hi := coords[start], coords[start]
		for i := start + 1; i < end; i++ {
			if coords[i] < lo {
				lo = coords[i]
			}
			if coords[i] > hi {
				hi = coords[i]
			}
		}
		if spread := hi - lo; spread > bestSpread {
			best, bestSpread = a, spread
		}
	}
	return best
}

// selectNth partitions the arena so position n holds the n-th smallest value
// along axis, in place (quickselect over [lo, hi]).
func (t *Tree) selectNth(lo, hi, n, axis int) {
	coords := [3][]float64{t.xs, t.ys, t.zs}[axis]
	for lo < hi {
		p := t.partition(coords, lo, hi, (lo+hi)/2)
		switch {
		case p == n:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func (t *Tree) partition(coords []float64, lo, hi, pivot int) int {
	pv := coords[pivot]
	t.swap(pivot, hi)
	i := lo
	for j := lo; j < hi; j++ {
		if coords[j] < pv {
			t.swap(i, j)
			i++
		}
	}
	t.swap(i, hi)
	return i
}

// swap exchanges two arena positions across every parallel slice.
func (t *Tree) swap(i, j int) {
	t.xs[i], t.xs[j] = t.xs[j], t.xs[i]
	t.ys[i], t.ys[j] = t.ys[j], t.ys[i]
	t.zs[i], t.zs[j] = t.zs[j], t.zs[i]
	t.lats[i], t.lats[j] = t.lats[j], t.lats[i]
	t.lons[i], t.lons[j] = t.lons[j], t.lons[i]
	t.ids[i], t.ids[j] = t.ids[j], t.ids[i]
}

// QueryRadius returns the original indices of every point within radiusKm
// haversine distance of (lat, lon), sorted ascending for determinism. A point
// is included iff its true haversine distance is within radiusKm plus the
// floating-point tolerance.
func (t *Tree) QueryRadius(lat, lon, radiusKm float64) []int {
	if len(t.nodes) == 0 || radiusKm < 0 {
		return nil
	}

	effective := radiusKm + radiusToleranceKm
	theta := effective / EarthRadiusKm
	if theta > math.Pi {
		theta = math.Pi
	}
	// Chord length subtending the angular radius; the pruning threshold.
	chordLimit := 2 * math.Sin(theta/2)

	const rad = math.Pi / 180
	cosLat := math.Cos(lat * rad)
	qx := cosLat * math.Cos(lon*rad)
	qy := cosLat * math.Sin(lon*rad)
	qz := math.Sin(lat * rad)

	var out []int
	stack := make([]int32, 1, 64)
	stack[0] = 0
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.nodes[ni]

		d := chord(qx, qy, qz, node.cx, node.cy, node.cz)
		if d-node.radius > chordLimit {
			continue // ball entirely outside the radius
		}

		if node.left < 0 {
			for i := node.start; i < node.end; i++ {
				if HaversineKm(lat, lon, t.lats[i], t.lons[i]) <= effective {
					out = append(out, t.ids[i])
				}
			}
			continue
		}
		stack = append(stack, node.left, node.right)
	}

	sort.Ints(out)
	return out
}

func chord(ax, ay, az, bx, by, bz float64) float64 {
	dx, dy, dz := ax-bx, ay-by, az-bz
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
