package storage

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS work_items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		last_visited_at INTEGER,
		last_score INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items (status, seq)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		ts INTEGER NOT NULL,
		opening_line TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		media_refs TEXT NOT NULL DEFAULT '[]',
		outcome TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_actor_ts ON interactions (actor_id, ts)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_item_ts ON interactions (work_item_id, ts)`,
	`CREATE TABLE IF NOT EXISTS aggregates (
		actor_id TEXT PRIMARY KEY,
		total_pending INTEGER NOT NULL DEFAULT 0,
		total_completed INTEGER NOT NULL DEFAULT 0,
		total_attempted INTEGER NOT NULL DEFAULT 0,
		mean_score REAL NOT NULL DEFAULT 0,
		total_interactions INTEGER NOT NULL DEFAULT 0,
		last_activity_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_actions (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		work_item_id TEXT NOT NULL,
		work_item_name TEXT NOT NULL DEFAULT '',
		scheduled_at INTEGER NOT NULL,
		action TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at INTEGER NOT NULL,
		completed_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_actions_actor ON scheduled_actions (actor_id, status, scheduled_at)`,
	`CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		last_lat REAL,
		last_lng REAL,
		position_at INTEGER,
		digest_enabled BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS digests (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		day TEXT NOT NULL,
		content TEXT NOT NULL,
		fallback BOOLEAN NOT NULL DEFAULT FALSE,
		generated_at INTEGER NOT NULL,
		viewed_at INTEGER,
		dismissed BOOLEAN NOT NULL DEFAULT FALSE,
		dismissed_at INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS digest_feedback (
		id TEXT PRIMARY KEY,
		digest_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		items TEXT NOT NULL DEFAULT '[]',
		helpfulness TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suggestion_history (
		id TEXT PRIMARY KEY,
		feedback_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		item_type TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL DEFAULT '',
		user_action TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS narrative_cache (
		cache_key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		stored_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage_log (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_log_actor_at ON usage_log (actor_id, at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS work_items (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		last_visited_at BIGINT,
		last_score INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items (status, seq)`,
	`CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		ts BIGINT NOT NULL,
		opening_line TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		media_refs TEXT NOT NULL DEFAULT '[]',
		outcome TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_actor_ts ON interactions (actor_id, ts)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_item_ts ON interactions (work_item_id, ts)`,
	`CREATE TABLE IF NOT EXISTS aggregates (
		actor_id TEXT PRIMARY KEY,
		total_pending INTEGER NOT NULL DEFAULT 0,
		total_completed INTEGER NOT NULL DEFAULT 0,
		total_attempted INTEGER NOT NULL DEFAULT 0,
		mean_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_interactions INTEGER NOT NULL DEFAULT 0,
		last_activity_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_actions (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		work_item_id TEXT NOT NULL,
		work_item_name TEXT NOT NULL DEFAULT '',
		scheduled_at BIGINT NOT NULL,
		action TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at BIGINT NOT NULL,
		completed_at BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scheduled_actions_actor ON scheduled_actions (actor_id, status, scheduled_at)`,
	`CREATE TABLE IF NOT EXISTS actors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		last_lat DOUBLE PRECISION,
		last_lng DOUBLE PRECISION,
		position_at BIGINT,
		digest_enabled BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS digests (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		day TEXT NOT NULL,
		content TEXT NOT NULL,
		fallback BOOLEAN NOT NULL DEFAULT FALSE,
		generated_at BIGINT NOT NULL,
		viewed_at BIGINT,
		dismissed BOOLEAN NOT NULL DEFAULT FALSE,
		dismissed_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS digest_feedback (
		id TEXT PRIMARY KEY,
		digest_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		items TEXT NOT NULL DEFAULT '[]',
		helpfulness TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS suggestion_history (
		id TEXT PRIMARY KEY,
		feedback_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		item_type TEXT NOT NULL DEFAULT '',
		item_id TEXT NOT NULL DEFAULT '',
		user_action TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS narrative_cache (
		cache_key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		stored_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS usage_log (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_log_actor_at ON usage_log (actor_id, at)`,
}
