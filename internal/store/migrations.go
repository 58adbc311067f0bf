package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the frame loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			roi TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Readings table - one row per analysed frame
		`CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			count INTEGER NOT NULL CHECK(count >= 0),
			contour_area REAL NOT NULL DEFAULT 0,
			hull_vertices INTEGER NOT NULL DEFAULT 0,
			defects INTEGER NOT NULL DEFAULT 0,
			valleys TEXT NOT NULL DEFAULT '[]',
			captured_at DATETIME NOT NULL,
			UNIQUE(session_id, seq)
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_readings_session_id ON readings(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
