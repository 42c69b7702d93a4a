// Package session keeps the running games behind the game service.
//
// Manager stores sessions in memory under case-insensitive 4-character hex
// IDs drawn from crypto/rand. A SessionPersistence, such as FilePersistence,
// can back it: sessions are written on creation and whenever the service
// saves them, and Get falls back to storage for sessions not in memory.
//
// Each persisted session carries its own copy of the puzzle, so sessions on
// generated or uploaded puzzles are restored without a library entry.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", library)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "stromrallye0", puzzle)
//
// CleanupExpiredSessions drops idle sessions from memory; their files stay
// on disk until Delete.
package session
