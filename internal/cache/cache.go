// Package cache persists the most recent digest run (fetched articles
// and the written digest path) so analyze can replay it without hitting
// the feeds again.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kai-kun-ai/security-news-digest/internal/feed"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			url         TEXT NOT NULL,
			title       TEXT NOT NULL,
			summary     TEXT NOT NULL DEFAULT '',
			published   DATETIME,
			source_feed TEXT NOT NULL,
			lang        TEXT NOT NULL DEFAULT 'en',
			source_name TEXT NOT NULL DEFAULT '',
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// SaveRun replaces the stored run with the given articles and digest
// path. Only the most recent run is kept.
func (c *Cache) SaveRun(articles []feed.Article, digestPath string) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return fmt.Errorf("clearing previous run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (url, title, summary, published, source_feed, lang, source_name, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range articles {
		var published interface{}
		if !a.Published.IsZero() {
			published = a.Published.UTC()
		}
		if _, err := stmt.Exec(a.URL, a.Title, a.Summary, published, a.SourceFeed, a.Lang, a.SourceName, now); err != nil {
			return fmt.Errorf("storing article %s: %w", a.URL, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_run', ?), ('last_digest', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, now.Format(time.RFC3339), digestPath); err != nil {
		return fmt.Errorf("storing run meta: %w", err)
	}

	return tx.Commit()
}

// LoadArticles returns the stored run's fetched articles.
func (c *Cache) LoadArticles() ([]feed.Article, error) {
	rows, err := c.readDB.Query(`
		SELECT url, title, summary, published, source_feed, lang, source_name
		FROM articles
	`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []feed.Article
	for rows.Next() {
		var a feed.Article
		var published sql.NullTime
		if err := rows.Scan(&a.URL, &a.Title, &a.Summary, &published, &a.SourceFeed, &a.Lang, &a.SourceName); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if published.Valid {
			a.Published = published.Time.UTC()
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// LastDigestPath returns the path of the last written digest, or "" when
// no run has been stored.
func (c *Cache) LastDigestPath() string {
	var value string
	if err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_digest'").Scan(&value); err != nil {
		return ""
	}
	return value
}

// LastRunAt returns when the stored run was saved, zero when unknown.
func (c *Cache) LastRunAt() time.Time {
	var value string
	if err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = 'last_run'").Scan(&value); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Prune deletes stored articles fetched before the retention period and
// returns how many were removed.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	res, err := c.writeDB.Exec("DELETE FROM articles WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports the stored article count and database file size.
func (c *Cache) Stats(dbPath string) (count int64, size int64, err error) {
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, info.Size(), nil
}
