package engine

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// ErrInvalidPosition is returned when a caller passes a coordinate outside
// the grid. Positions inside the grid that are merely unreachable this turn
// are not errors; those operations are silently rejected instead.
var ErrInvalidPosition = errors.New("position outside the grid")

// Engine is the consumer-facing surface of a single game. Mutating
// operations report whether they were accepted; an operation invoked in the
// wrong state is a no-op that returns false and emits no notification.
type Engine interface {
	// Player-facing operations
	Start() bool
	Restart()
	RollDice() bool
	MovePlayer(to Position) (bool, error)
	PassTurn() bool
	ActivateEcho() bool

	// Observation
	Snapshot() *GameState
	Subscribe(fn func(*GameState))
	HiddenRevealed() bool

	// Read-only accessors
	GridView() Grid
	PlayerPosition() Position
	EnemyPosition() Position
	ExitPosition() Position
	Turn() GameTurn
	Phase() TurnPhase
	Status() GameStatus
	DiceResult() int
	PossibleMoves() []Position
	EchoCharge() int
	EchoActive() bool
	Config() *GameConfig
}

// GameEngine implements the Engine interface. A single mutex guards every
// operation because scheduled callbacks (the warden's turn, timed echo
// expiry) arrive on timer goroutines. Observers are invoked synchronously
// while the lock is held, so they must not call back into the engine; they
// should hand the snapshot off (to a channel, a slice, a broadcast) and
// return.
type GameEngine struct {
	mu    sync.Mutex
	cfg   *GameConfig
	rng   *rand.Rand
	sched Scheduler

	// epoch invalidates callbacks scheduled before a restart.
	epoch int

	grid      Grid
	playerPos Position
	enemyPos  Position
	exitPos   Position

	turn   GameTurn
	phase  TurnPhase
	status GameStatus

	dice     int
	possible map[Position]bool

	echoCharge int
	echoActive bool

	message string
	result  string

	observers []func(*GameState)
}

// NewEngine creates a game engine with the provided configuration, a
// time-seeded random source, and real timers. The game starts in the lore
// state; call Start to begin playing.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	return NewCustomEngine(config, rand.New(rand.NewSource(time.Now().UnixNano())), TimerScheduler{}), nil
}

// NewCustomEngine creates an engine with an injected random source and
// scheduler. The config must already be valid. Tests use this with a seeded
// rng and a ManualScheduler to make every run deterministic.
func NewCustomEngine(config *GameConfig, rng *rand.Rand, sched Scheduler) *GameEngine {
	e := &GameEngine{
		cfg:   config,
		rng:   rng,
		sched: sched,
	}
	e.initBoard()
	e.status = StatusLore
	e.message = config.Messages.Welcome
	return e
}

// initBoard regenerates the maze and actor placement and zeroes all
// per-game counters. Callers hold the lock (or own the engine exclusively,
// as in the constructor).
func (e *GameEngine) initBoard() {
	e.grid = GenerateMaze(e.cfg.GridWidth, e.cfg.GridHeight, e.rng)
	AddLoops(e.grid, e.cfg.LoopPasses, e.cfg.LoopChance, e.rng)

	e.playerPos = Position{Row: 1, Col: 1}
	e.exitPos = e.pickDistantCell([]anchor{{pos: e.playerPos, minDist: e.cfg.MinExitDistance}})
	e.enemyPos = e.pickDistantCell([]anchor{
		{pos: e.playerPos, minDist: e.cfg.MinEnemyDistance},
		{pos: e.exitPos, minDist: e.cfg.MinEnemyDistance},
	})

	e.turn = TurnPlayer
	e.phase = PhaseRolling
	e.status = StatusPlaying
	e.dice = 0
	e.possible = nil
	e.echoCharge = 0
	e.echoActive = false
	e.result = ""
}

// anchor is a placement constraint: stay at least minDist away from pos.
type anchor struct {
	pos     Position
	minDist int
}

// pickDistantCell returns a random open cell satisfying every anchor's
// minimum Manhattan distance. When no cell qualifies it falls back to the
// open cell that maximizes the smallest anchor distance, so placement never
// fails on small boards.
func (e *GameEngine) pickDistantCell(anchors []anchor) Position {
	var candidates []Position
	var best Position
	bestScore := -1

	for r := 1; r < e.grid.Rows()-1; r++ {
		for c := 1; c < e.grid.Cols()-1; c++ {
			p := Position{Row: r, Col: c}
			if !e.grid.IsOpen(p) {
				continue
			}

			ok := true
			score := int(^uint(0) >> 1)
			for _, a := range anchors {
				d := p.ManhattanDistance(a.pos)
				if d == 0 {
					ok = false
					score = -1
					break
				}
				if d < a.minDist {
					ok = false
				}
				if d < score {
					score = d
				}
			}

			if ok {
				candidates = append(candidates, p)
			}
			if score > bestScore {
				bestScore = score
				best = p
			}
		}
	}

	if len(candidates) > 0 {
		return candidates[e.rng.Intn(len(candidates))]
	}
	return best
}

// Start moves the game from the lore screen into play.
func (e *GameEngine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusLore {
		return false
	}
	e.status = StatusPlaying
	e.message = e.cfg.Messages.Welcome
	e.notifyLocked()
	return true
}

// Restart fully re-initializes the game: a new maze, new placements, zeroed
// counters, status playing. Any callback scheduled before the restart
// becomes a stale no-op.
func (e *GameEngine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.epoch++
	e.initBoard()
	e.message = e.cfg.Messages.Welcome
	e.notifyLocked()
}

// RollDice draws the die and computes the set of tiles the player may move
// to this turn. Valid only on the player's turn in the rolling phase.
func (e *GameEngine) RollDice() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying || e.turn != TurnPlayer || e.phase != PhaseRolling {
		return false
	}

	e.dice = e.rng.Intn(e.cfg.DiceSides) + 1
	e.possible = Reachable(e.grid, e.playerPos, e.dice)
	e.phase = PhaseMoving
	e.notifyLocked()
	return true
}

// MovePlayer moves the player to a tile rolled reachable this turn. An
// out-of-grid coordinate returns ErrInvalidPosition; any state-guard failure
// (wrong turn, wrong phase, unreachable tile) is a silent rejection.
func (e *GameEngine) MovePlayer(to Position) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.grid.InBounds(to) {
		return false, ErrInvalidPosition
	}
	if e.status != StatusPlaying || e.turn != TurnPlayer || e.phase != PhaseMoving {
		return false, nil
	}
	if !e.possible[to] {
		return false, nil
	}

	e.playerPos = to

	// A move always cancels an active echo window, regardless of outcome.
	usedEcho := e.echoActive
	if usedEcho {
		e.echoActive = false
		e.echoCharge = 0
	}

	switch to {
	case e.exitPos:
		e.finishLocked(StatusWin, ResultEscaped, e.cfg.Messages.Win)
	case e.enemyPos:
		e.finishLocked(StatusLose, ResultCaught, e.cfg.Messages.LoseCaught)
	default:
		e.endPlayerTurnLocked(usedEcho)
	}

	e.notifyLocked()
	return true, nil
}

// PassTurn ends the player's turn without moving. Valid in either phase of
// the player's turn.
func (e *GameEngine) PassTurn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying || e.turn != TurnPlayer {
		return false
	}

	e.endPlayerTurnLocked(false)
	e.notifyLocked()
	return true
}

// ActivateEcho spends a full charge to reveal the warden and the exit.
// Under the on_move policy the reveal lasts until the player's next move (or
// the end of the activating turn); under the timed policy it expires on its
// own after the configured duration.
func (e *GameEngine) ActivateEcho() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPlaying || e.turn != TurnPlayer {
		return false
	}
	if e.echoActive || e.echoCharge < e.cfg.MaxEchoCharge {
		return false
	}

	e.echoActive = true
	e.echoCharge = 0

	if e.cfg.EchoExpiry == EchoExpiryTimed {
		epoch := e.epoch
		e.sched.Schedule(e.cfg.EchoDuration(), func() { e.expireEcho(epoch) })
	}

	e.notifyLocked()
	return true
}

// endPlayerTurnLocked commits the end-of-turn bookkeeping and stages the
// warden's turn after the configured delay. The turn flag flips to the
// warden immediately, so any player operation arriving during the delay
// window is rejected by the guards. usedEcho marks a turn whose move already
// consumed the echo window; such a turn earns no charge.
func (e *GameEngine) endPlayerTurnLocked(usedEcho bool) {
	if e.echoActive || usedEcho {
		if e.cfg.EchoExpiry == EchoExpiryOnMove {
			e.echoActive = false
		}
		e.echoCharge = 0
	} else if e.echoCharge < e.cfg.MaxEchoCharge {
		e.echoCharge++
	}

	e.dice = 0
	e.possible = nil
	e.phase = PhaseRolling
	e.turn = TurnEnemy

	epoch := e.epoch
	e.sched.Schedule(e.cfg.EnemyDelay(), func() { e.enemyTurn(epoch) })
}

// enemyTurn executes the warden's automated move: one greedy step along the
// shortest path toward the player. Contact loses the game outright, and so
// does closing to Manhattan distance 1, which models detection. Stale
// invocations (scheduled before a restart) do nothing.
func (e *GameEngine) enemyTurn(epoch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || e.status != StatusPlaying || e.turn != TurnEnemy {
		return
	}

	if path := ShortestPath(e.grid, e.enemyPos, e.playerPos); len(path) >= 2 {
		e.enemyPos = path[1]
	}

	switch {
	case e.enemyPos == e.playerPos:
		e.finishLocked(StatusLose, ResultCaught, e.cfg.Messages.LoseCaught)
	case e.enemyPos.ManhattanDistance(e.playerPos) == 1:
		e.finishLocked(StatusLose, ResultDetected, e.cfg.Messages.LoseDetected)
	default:
		e.turn = TurnPlayer
		e.phase = PhaseRolling
	}

	e.notifyLocked()
}

// expireEcho reverts a timed echo. Scheduled at activation; stale or already
// expired invocations do nothing.
func (e *GameEngine) expireEcho(epoch int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch || !e.echoActive {
		return
	}

	e.echoActive = false
	e.notifyLocked()
}

// finishLocked moves the game into a terminal state.
func (e *GameEngine) finishLocked(status GameStatus, result, message string) {
	e.status = status
	e.result = result
	e.message = message
	e.dice = 0
	e.possible = nil
}

// Subscribe registers a callback that receives a snapshot after every
// accepted mutating operation, including the warden's deferred turns.
func (e *GameEngine) Subscribe(fn func(*GameState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// notifyLocked delivers a fresh snapshot to every observer.
func (e *GameEngine) notifyLocked() {
	if len(e.observers) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, fn := range e.observers {
		fn(snap)
	}
}

// Snapshot returns the current game state with hidden positions redacted
// per the visibility contract.
func (e *GameEngine) Snapshot() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *GameEngine) snapshotLocked() *GameState {
	state := &GameState{
		Grid:          e.grid.Clone(),
		PlayerPos:     e.playerPos,
		Turn:          e.turn,
		Phase:         e.phase,
		Status:        e.status,
		DiceResult:    e.dice,
		PossibleMoves: sortedPositions(e.possible),
		EchoCharge:    e.echoCharge,
		EchoActive:    e.echoActive,
		Revealed:      e.hiddenRevealedLocked(),
		Message:       e.message,
		Result:        e.result,
		ConfigName:    e.cfg.Name,
	}
	if state.Revealed {
		enemy, exit := e.enemyPos, e.exitPos
		state.EnemyPos = &enemy
		state.ExitPos = &exit
	}
	return state
}

// HiddenRevealed reports whether the warden and exit positions are currently
// observable: during an active echo, on the warden's turn, or once the game
// has ended.
func (e *GameEngine) HiddenRevealed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hiddenRevealedLocked()
}

func (e *GameEngine) hiddenRevealedLocked() bool {
	return e.echoActive ||
		e.turn == TurnEnemy ||
		e.status == StatusWin ||
		e.status == StatusLose
}

// GridView returns a copy of the maze grid.
func (e *GameEngine) GridView() Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Clone()
}

// PlayerPosition returns the player's tile.
func (e *GameEngine) PlayerPosition() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playerPos
}

// EnemyPosition returns the warden's true tile. The engine always tracks it;
// presentation layers must gate display on HiddenRevealed.
func (e *GameEngine) EnemyPosition() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enemyPos
}

// ExitPosition returns the exit's true tile, subject to the same visibility
// contract as EnemyPosition.
func (e *GameEngine) ExitPosition() Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exitPos
}

// Turn returns whose move it is.
func (e *GameEngine) Turn() GameTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

// Phase returns the sub-state within the current turn.
func (e *GameEngine) Phase() TurnPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Status returns the overall session state.
func (e *GameEngine) Status() GameStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// DiceResult returns the current die result, or zero outside the moving
// phase.
func (e *GameEngine) DiceResult() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dice
}

// PossibleMoves returns the tiles the player may move to this turn, sorted
// by row then column.
func (e *GameEngine) PossibleMoves() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedPositions(e.possible)
}

// EchoCharge returns the current ability charge.
func (e *GameEngine) EchoCharge() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.echoCharge
}

// EchoActive reports whether the echo reveal window is open.
func (e *GameEngine) EchoActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.echoActive
}

// Config returns the engine's configuration.
func (e *GameEngine) Config() *GameConfig {
	return e.cfg
}

// sortedPositions flattens a position set into a deterministic slice.
func sortedPositions(set map[Position]bool) []Position {
	out := make([]Position, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
