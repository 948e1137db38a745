package engine

// CellType represents the two kinds of maze tiles.
type CellType string

const (
	Wall     CellType = "wall"
	PathCell CellType = "path"
)

// GameTurn identifies whose move it is.
type GameTurn string

const (
	TurnPlayer GameTurn = "player"
	TurnEnemy  GameTurn = "enemy"
)

// TurnPhase is the sub-state within a single turn.
type TurnPhase string

const (
	PhaseRolling TurnPhase = "rolling"
	PhaseMoving  TurnPhase = "moving"
)

// GameStatus is the overall session state. StatusLore is the pre-game
// screen; StatusWin and StatusLose are terminal until restart.
type GameStatus string

const (
	StatusLore    GameStatus = "lore"
	StatusPlaying GameStatus = "playing"
	StatusWin     GameStatus = "win"
	StatusLose    GameStatus = "lose"
)

// Terminal result categories reported alongside StatusWin/StatusLose.
const (
	ResultEscaped  = "escaped"  // player reached the exit
	ResultCaught   = "caught"   // warden landed on the player
	ResultDetected = "detected" // warden closed to Manhattan distance 1
)

// Echo expiry policies. OnMove clears the echo on the next player move (or
// at the end of the activating turn); Timed auto-expires after a fixed
// duration regardless of turns elapsed.
const (
	EchoExpiryOnMove = "on_move"
	EchoExpiryTimed  = "timed"
)

// Validation constants
const (
	MinGridSize  = 5
	MaxGridSize  = 51
	MinDiceSides = 2
	MaxDiceSides = 12

	DefaultDiceSides     = 6
	DefaultMaxEchoCharge = 6
)

// Position is a grid coordinate. It is a comparable value type so it can
// key maps and sets directly.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ManhattanDistance returns the L1 distance between two positions.
func (p Position) ManhattanDistance(o Position) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

// Grid is a rectangular field of cells indexed [row][col]. The outer border
// of a generated grid is always Wall.
type Grid [][]CellType

// NewGrid returns a grid of the given dimensions with every cell set to Wall.
func NewGrid(width, height int) Grid {
	g := make(Grid, height)
	for r := range g {
		g[r] = make([]CellType, width)
		for c := range g[r] {
			g[r][c] = Wall
		}
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether the position lies inside the grid.
func (g Grid) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.Rows() && p.Col >= 0 && p.Col < g.Cols()
}

// At returns the cell at p. Out-of-bounds positions read as Wall.
func (g Grid) At(p Position) CellType {
	if !g.InBounds(p) {
		return Wall
	}
	return g[p.Row][p.Col]
}

// IsOpen reports whether p is a walkable path cell.
func (g Grid) IsOpen(p Position) bool {
	return g.At(p) == PathCell
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for r := range g {
		out[r] = make([]CellType, len(g[r]))
		copy(out[r], g[r])
	}
	return out
}

// GameState is a point-in-time snapshot of a game, safe to serialize and
// hand to consumers. Enemy and exit positions are present only while the
// visibility contract reveals them (echo active, enemy's turn, or a
// terminal status); the Revealed flag mirrors that predicate.
type GameState struct {
	Grid          Grid       `json:"grid"`
	PlayerPos     Position   `json:"player_pos"`
	EnemyPos      *Position  `json:"enemy_pos,omitempty"`
	ExitPos       *Position  `json:"exit_pos,omitempty"`
	Turn          GameTurn   `json:"turn"`
	Phase         TurnPhase  `json:"phase"`
	Status        GameStatus `json:"status"`
	DiceResult    int        `json:"dice_result"`
	PossibleMoves []Position `json:"possible_moves"`
	EchoCharge    int        `json:"echo_charge"`
	EchoActive    bool       `json:"echo_active"`
	Revealed      bool       `json:"revealed"`
	Message       string     `json:"message"`
	Result        string     `json:"result,omitempty"`
	ConfigName    string     `json:"config_name"`
}

// abs returns the absolute value of x.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
