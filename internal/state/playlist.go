package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/tazaudio/internal/db"
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

const (
	kindArticle = "article"
	kindIssue   = "issue"
	kindPodcast = "podcast"
)

// playlistRow is the stored form of a resolve.Request.
type playlistRow struct {
	Kind       string
	Issue      item.IssueKey
	ArticleKey string
	SectionKey string
}

func rowFor(req resolve.Request) (playlistRow, error) {
	switch r := req.(type) {
	case resolve.ArticleRequest:
		return playlistRow{Kind: kindArticle, ArticleKey: r.ArticleKey}, nil
	case resolve.IssueRequest:
		return playlistRow{Kind: kindIssue, Issue: r.Issue, ArticleKey: r.ArticleKey}, nil
	case resolve.PodcastRequest:
		return playlistRow{Kind: kindPodcast, Issue: r.Issue, SectionKey: r.SectionKey}, nil
	}
	return playlistRow{}, fmt.Errorf("unsupported request %T", req)
}

func (r playlistRow) request() (resolve.Request, error) {
	switch r.Kind {
	case kindArticle:
		return resolve.ArticleRequest{ArticleKey: r.ArticleKey}, nil
	case kindIssue:
		return resolve.IssueRequest{Issue: r.Issue, ArticleKey: r.ArticleKey}, nil
	case kindPodcast:
		return resolve.PodcastRequest{Issue: r.Issue, SectionKey: r.SectionKey}, nil
	}
	return nil, fmt.Errorf("unknown playlist item kind %q", r.Kind)
}

// SavePlaylist replaces the stored playlist.
func (m *Manager) SavePlaylist(ctx context.Context, reqs []resolve.Request, current int) error {
	rows := make([]playlistRow, 0, len(reqs))
	for _, req := range reqs {
		r, err := rowFor(req)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}
	return savePlaylist(ctx, m.db, rows, current)
}

// LoadPlaylist returns the stored playlist. Rows that cannot be
// decoded are skipped and current is adjusted accordingly.
func (m *Manager) LoadPlaylist(ctx context.Context) ([]resolve.Request, int, error) {
	rows, current, err := getPlaylist(ctx, m.db)
	if err != nil {
		return nil, -1, err
	}
	reqs := make([]resolve.Request, 0, len(rows))
	adjusted := -1
	for i, r := range rows {
		req, err := r.request()
		if err != nil {
			m.log.WithError(err).WithField("position", i).Warn("skipping stored playlist item")
			continue
		}
		if i <= current {
			adjusted = len(reqs)
		}
		reqs = append(reqs, req)
	}
	if current < 0 {
		adjusted = -1
	}
	return reqs, adjusted, nil
}

func savePlaylist(ctx context.Context, sqlDB *sql.DB, rows []playlistRow, current int) error {
	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		// Clear existing playlist
		if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_items`); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlist_state (id, current_index, updated_at)
			VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				updated_at = excluded.updated_at
		`, current, time.Now().Unix())
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO playlist_items (position, kind, feed, issue_date, issue_status, article_key, section_key)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range rows {
			_, err = stmt.ExecContext(ctx, i, r.Kind,
				dbutil.NullString(r.Issue.Feed),
				dbutil.NullString(r.Issue.Date),
				dbutil.NullString(r.Issue.Status),
				dbutil.NullString(r.ArticleKey),
				dbutil.NullString(r.SectionKey))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func getPlaylist(ctx context.Context, db *sql.DB) ([]playlistRow, int, error) {
	var current int
	row := db.QueryRowContext(ctx, `SELECT current_index FROM playlist_state WHERE id = 1`)
	err := row.Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, -1, nil
	}
	if err != nil {
		return nil, -1, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT kind, feed, issue_date, issue_status, article_key, section_key
		FROM playlist_items
		ORDER BY position
	`)
	if err != nil {
		return nil, -1, err
	}
	defer rows.Close()

	var out []playlistRow
	for rows.Next() {
		var r playlistRow
		var feed, date, status, article, section sql.NullString
		if err := rows.Scan(&r.Kind, &feed, &date, &status, &article, &section); err != nil {
			return nil, -1, err
		}
		r.Issue = item.IssueKey{
			Feed:   dbutil.NullStringValue(feed),
			Date:   dbutil.NullStringValue(date),
			Status: dbutil.NullStringValue(status),
		}
		r.ArticleKey = dbutil.NullStringValue(article)
		r.SectionKey = dbutil.NullStringValue(section)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, -1, err
	}
	if current >= len(out) {
		current = len(out) - 1
	}
	return out, current, nil
}
