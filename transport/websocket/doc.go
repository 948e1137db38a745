// Package websocket pushes game state updates to connected clients.
//
// A central Hub owns the session-to-client map on its Run goroutine; clients
// and broadcasters communicate with it through channels, so no locking is
// needed. Each connection gets a read pump and a write pump goroutine.
//
// Clients connect to /ws?session=<id> and receive JSON Message frames with
// the event "state_update" whenever their session's game state changes,
// including deferred changes such as the warden's turn resolving or a timed
// echo expiring. The socket is one-way: game commands go through the REST
// API, and anything a client writes is ignored beyond keeping the
// connection alive.
package websocket
