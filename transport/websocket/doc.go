// Package websocket provides the spectator feed for running games.
//
// A central Hub owns every connection. Spectators attach to one game with
// /ws?game=<id> and receive a JSON message for each evaluated guess. A
// spectator subscribed to AllGames (plain /ws) also sees every game start:
//
//	{"type": "guess", "game_id": "...", "data": {...}, "timestamp": 1700000000000}
//
// Messages carry the same payloads the REST API returns, so the secret is
// never sent. Incoming frames are read only to keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToGame(gameID, websocket.EventGuess, result)
package websocket
