// Package api exposes the game over a REST interface.
//
// Routes live under /api. Session lifecycle is CRUD on /api/sessions, game
// commands are POSTs on /api/sessions/{id}/{start,restart,roll,move,pass,
// echo}, and configurations are served from /api/configs. Game commands
// always return an OperationResult: HTTP errors are reserved for transport
// problems (unknown session, malformed body, out-of-grid coordinates), while
// a command that is merely illegal in the current game state returns 200
// with accepted set to false.
//
// /ws upgrades to a WebSocket for push state updates; see the websocket
// package.
package api
