package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	account      TEXT PRIMARY KEY,
	last_refresh DATETIME,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
	account          TEXT NOT NULL,
	id               TEXT NOT NULL,
	message_id       TEXT NOT NULL DEFAULT '',
	thread_id        TEXT NOT NULL DEFAULT '',
	subject          TEXT NOT NULL DEFAULT '',
	sender           TEXT NOT NULL DEFAULT '',
	sender_email     TEXT NOT NULL DEFAULT '',
	sender_image_url TEXT NOT NULL DEFAULT '',
	recipients       TEXT NOT NULL DEFAULT '[]',
	content          TEXT NOT NULL DEFAULT '',
	attachments      TEXT NOT NULL DEFAULT '[]',
	labels           TEXT NOT NULL DEFAULT '[]',
	is_read          INTEGER NOT NULL DEFAULT 0,
	is_starred       INTEGER NOT NULL DEFAULT 0,
	is_trash         INTEGER NOT NULL DEFAULT 0,
	is_archived      INTEGER NOT NULL DEFAULT 0,
	priority         INTEGER NOT NULL DEFAULT 3,
	requires_action  INTEGER NOT NULL DEFAULT 0,
	suggested_action TEXT NOT NULL DEFAULT '',
	timestamp        DATETIME NOT NULL,
	version          INTEGER NOT NULL DEFAULT 1,
	last_modified    DATETIME NOT NULL,
	sync_status      TEXT NOT NULL DEFAULT 'synced',
	PRIMARY KEY (account, id)
);

CREATE INDEX IF NOT EXISTS idx_emails_account ON emails(account);
CREATE INDEX IF NOT EXISTS idx_emails_timestamp ON emails(timestamp);
CREATE INDEX IF NOT EXISTS idx_emails_message_id ON emails(message_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_emails_account_timestamp
	ON emails(account, timestamp);

CREATE INDEX IF NOT EXISTS idx_emails_sync_status
	ON emails(sync_status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
