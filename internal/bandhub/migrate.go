package bandhub

import (
	"context"
	"log"
)

// AutoMigrate creates the schema if it does not exist yet.
//
// replies has no foreign key to comments, so deleting a comment leaves its
// replies in place. messages cascade with their channel.
func AutoMigrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS bands (
          id          TEXT PRIMARY KEY,
          name        TEXT NOT NULL,
          created_by  TEXT NOT NULL,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          invite_code TEXT NOT NULL
      )
    `); err != nil {
		log.Printf("migrate bandhub bands: %v", err)
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_bands_invite_code ON bands(invite_code)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS band_members (
          band_id      TEXT NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          user_id      TEXT NOT NULL,
          role         TEXT NOT NULL DEFAULT 'member',
          display_name TEXT NOT NULL DEFAULT '',
          joined_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (band_id, user_id)
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_band_members_user ON band_members(user_id)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS media (
          id            TEXT PRIMARY KEY,
          band_id       TEXT NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          name          TEXT NOT NULL,
          type          TEXT NOT NULL,
          mime_type     TEXT NOT NULL,
          blob_path     TEXT NOT NULL,
          size          BIGINT NOT NULL DEFAULT 0,
          tags          TEXT[] NOT NULL DEFAULT '{}',
          project       TEXT,
          uploaded_by   TEXT NOT NULL,
          uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
          comment_count INT NOT NULL DEFAULT 0,
          duration      DOUBLE PRECISION,
          peaks         DOUBLE PRECISION[]
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_media_band_uploaded ON media(band_id, uploaded_at DESC)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS comments (
          id                  TEXT PRIMARY KEY,
          band_id             TEXT NOT NULL,
          media_id            TEXT NOT NULL,
          timestamp           DOUBLE PRECISION NOT NULL,
          text                TEXT NOT NULL,
          author_uid          TEXT NOT NULL,
          author_display_name TEXT NOT NULL,
          created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
          resolved            BOOLEAN NOT NULL DEFAULT FALSE,
          reply_count         INT NOT NULL DEFAULT 0
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_comments_media ON comments(band_id, media_id, timestamp)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS replies (
          id                  TEXT PRIMARY KEY,
          band_id             TEXT NOT NULL,
          media_id            TEXT NOT NULL,
          comment_id          TEXT NOT NULL,
          text                TEXT NOT NULL,
          author_uid          TEXT NOT NULL,
          author_display_name TEXT NOT NULL,
          created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_replies_comment ON replies(band_id, media_id, comment_id, created_at)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS channels (
          id         TEXT PRIMARY KEY,
          band_id    TEXT NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          name       TEXT NOT NULL,
          created_by TEXT NOT NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_channels_band ON channels(band_id, name)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS messages (
          id                  TEXT PRIMARY KEY,
          band_id             TEXT NOT NULL,
          channel_id          TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
          text                TEXT NOT NULL,
          author_uid          TEXT NOT NULL,
          author_display_name TEXT NOT NULL,
          created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(band_id, channel_id, created_at DESC)
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS events (
          id           TEXT PRIMARY KEY,
          band_id      TEXT NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
          title        TEXT NOT NULL,
          type         TEXT NOT NULL DEFAULT 'other',
          start_at     TEXT NOT NULL,
          end_at       TEXT NOT NULL,
          location     TEXT NOT NULL DEFAULT '',
          description  TEXT NOT NULL DEFAULT '',
          linked_media TEXT[] NOT NULL DEFAULT '{}',
          rsvp         JSONB NOT NULL DEFAULT '{}'::jsonb,
          created_by   TEXT NOT NULL,
          created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	return nil
}
