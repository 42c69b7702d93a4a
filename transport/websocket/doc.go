// Package websocket pushes live game updates to browsers watching a session.
//
// A central Hub owns every connection. Clients attach to one session through
// ServeWS and receive JSON messages:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "solution", "data": {...}}
//
// Incoming frames are ignored apart from keeping the connection alive; moves
// go through the REST API, which broadcasts the new state afterwards.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasts are queued and never block the caller. A client whose send
// buffer is full is dropped.
package websocket
