package engine

import "math/rand"

// carveDirections are the four cardinal offsets between cells on the odd
// lattice: cells sit two tiles apart with a wall tile between them.
var carveDirections = [4]Position{
	{Row: -2, Col: 0},
	{Row: 2, Col: 0},
	{Row: 0, Col: -2},
	{Row: 0, Col: 2},
}

// GenerateMaze builds a perfect maze on an odd-sized grid using randomized
// depth-first carving. Even dimensions are bumped to the next odd value and
// anything below MinGridSize is raised to it, so generation is total. The
// result is a spanning tree over the odd-coordinate cells: exactly one
// simple path between any two open tiles, with the outer border solid Wall.
func GenerateMaze(width, height int, rng *rand.Rand) Grid {
	width = normalizeDimension(width)
	height = normalizeDimension(height)

	grid := NewGrid(width, height)

	start := Position{Row: 1, Col: 1}
	grid[start.Row][start.Col] = PathCell
	stack := []Position{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		neighbors := unvisitedNeighbors(grid, current)
		if len(neighbors) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := neighbors[rng.Intn(len(neighbors))]
		between := Position{
			Row: (current.Row + next.Row) / 2,
			Col: (current.Col + next.Col) / 2,
		}
		grid[between.Row][between.Col] = PathCell
		grid[next.Row][next.Col] = PathCell
		stack = append(stack, next)
	}

	return grid
}

// unvisitedNeighbors returns the cells two tiles away from p that are still
// Wall, skipping any step that would leave the interior.
func unvisitedNeighbors(grid Grid, p Position) []Position {
	var out []Position
	for _, d := range carveDirections {
		n := Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
		if n.Row < 1 || n.Row > grid.Rows()-2 || n.Col < 1 || n.Col > grid.Cols()-2 {
			continue
		}
		if grid[n.Row][n.Col] == Wall {
			out = append(out, n)
		}
	}
	return out
}

// AddLoops punches extra openings into a perfect maze so it gains cycles and
// alternate routes. For each pass it scans every interior wall; a wall with
// at least two orthogonal open neighbors separates two already-connected
// regions, and flipping it creates a loop. Each such wall flips with
// independent probability chance per pass.
func AddLoops(grid Grid, passes int, chance float64, rng *rand.Rand) {
	for pass := 0; pass < passes; pass++ {
		for r := 1; r < grid.Rows()-1; r++ {
			for c := 1; c < grid.Cols()-1; c++ {
				if grid[r][c] != Wall {
					continue
				}
				if openNeighborCount(grid, Position{Row: r, Col: c}) < 2 {
					continue
				}
				if rng.Float64() < chance {
					grid[r][c] = PathCell
				}
			}
		}
	}
}

// openNeighborCount counts the orthogonally adjacent path cells of p.
func openNeighborCount(grid Grid, p Position) int {
	count := 0
	for _, d := range stepDirections {
		if grid.IsOpen(Position{Row: p.Row + d.Row, Col: p.Col + d.Col}) {
			count++
		}
	}
	return count
}

// normalizeDimension coerces a requested dimension to a usable odd size.
func normalizeDimension(n int) int {
	if n < MinGridSize {
		n = MinGridSize
	}
	if n%2 == 0 {
		n++
	}
	return n
}
