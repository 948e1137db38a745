// Package service exposes game operations scoped to sessions. It sits
// between the transports (REST, WebSocket, MCP) and the engine: each session
// owns one engine, and the service routes player operations to it, returning
// OperationResult values that surface whether the engine accepted the call.
//
// When a Notifier is attached, the service subscribes to every session's
// engine and forwards state snapshots to it. That is how deferred updates
// (the warden's staged turn, timed echo expiry) reach connected clients
// without any transport polling.
package service
