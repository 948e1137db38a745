// Package engine implements the core game logic for Echo Maze: maze
// generation, bounded breadth-first reachability search, and the turn-based
// state machine that drives a single game of cat-and-mouse between the
// player and the warden.
//
// The engine is a pure state machine with no transport or rendering
// concerns. Consumers drive it through the Engine interface and observe it
// through snapshots delivered to subscribed callbacks after every accepted
// mutating operation.
package engine
