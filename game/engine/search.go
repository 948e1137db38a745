package engine

// stepDirections are the single-tile cardinal offsets used by traversal.
var stepDirections = [4]Position{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// Reachable returns every open cell whose shortest-hop distance from start
// is between 1 and steps inclusive. A cell discovered exactly at the step
// budget is still reachable but is not expanded further, and the start cell
// itself is never part of the result. The search walks the 4-neighborhood
// over path cells only; the solid border keeps it inside the grid.
func Reachable(grid Grid, start Position, steps int) map[Position]bool {
	result := make(map[Position]bool)
	if steps <= 0 {
		return result
	}

	dist := map[Position]int{start: 0}
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if dist[current] >= steps {
			continue
		}

		for _, d := range stepDirections {
			next := Position{Row: current.Row + d.Row, Col: current.Col + d.Col}
			if !grid.IsOpen(next) {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			result[next] = true
			queue = append(queue, next)
		}
	}

	return result
}

// ShortestPath returns the shortest sequence of open cells from one position
// to another, inclusive of both endpoints, or nil when no route exists. The
// breadth-first mechanics match Reachable; parent pointers reconstruct the
// route.
func ShortestPath(grid Grid, from, to Position) []Position {
	if from == to {
		return []Position{from}
	}
	if !grid.IsOpen(from) || !grid.IsOpen(to) {
		return nil
	}

	parent := map[Position]Position{from: from}
	queue := []Position{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range stepDirections {
			next := Position{Row: current.Row + d.Row, Col: current.Col + d.Col}
			if !grid.IsOpen(next) {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == to {
				return reconstructPath(parent, from, to)
			}
			queue = append(queue, next)
		}
	}

	return nil
}

// reconstructPath walks parent pointers from to back to from and reverses.
func reconstructPath(parent map[Position]Position, from, to Position) []Position {
	var path []Position
	for at := to; ; at = parent[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
