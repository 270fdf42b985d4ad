package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/uptrace/bun"

	"go.klb.dev/clipstream/internal/content"
)

// Insert records content captured from the clipboard and returns its id.
//
// Content that already exists is not inserted again: the existing row's
// timestamp moves forward to now and its source app is replaced when
// sourceApp is non-nil. A non-nil image makes the entry an image entry whose
// content is the caller-supplied placeholder.
func (s *Store) Insert(ctx context.Context, text string, sourceApp *string, image []byte) (int64, error) {
	id, _, err := s.Record(ctx, text, sourceApp, image)
	return id, err
}

// Record is Insert that also reports whether a new row was created (true) or
// an existing one refreshed (false).
func (s *Store) Record(ctx context.Context, text string, sourceApp *string, image []byte) (int64, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false, ErrEmptyContent
	}

	var (
		id      int64
		created bool
	)
	err := s.write(ctx, "insert", func(ctx context.Context, tx bun.Tx) error {
		now := s.now().UnixNano()

		existing, err := idByContent(ctx, tx, text)
		if err != nil {
			return err
		}
		if existing == 0 {
			kind := content.Classify(text)
			if image != nil {
				kind = content.KindImage
			}
			row := &entryRow{
				Content:     text,
				SourceApp:   nullString(sourceApp),
				ContentType: string(kind),
				CreatedAt:   now,
				ImageData:   image,
			}
			_, err = tx.NewInsert().Model(row).Exec(ctx)
			if err == nil {
				id, created = row.ID, true
				return nil
			}
			if !isUniqueViolation(err) {
				return err
			}
			// Lost a race with another writer; fold into the refresh path.
			if existing, err = idByContent(ctx, tx, text); err != nil {
				return err
			}
			if existing == 0 {
				return ErrNotFound
			}
		}

		id, created = existing, false
		return refresh(ctx, tx, existing, now, sourceApp)
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

func idByContent(ctx context.Context, tx bun.Tx, text string) (int64, error) {
	var id int64
	err := tx.NewSelect().
		Model((*entryRow)(nil)).
		Column("id").
		Where("content = ?", text).
		Limit(1).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// refresh moves an entry's timestamp forward, never backwards.
func refresh(ctx context.Context, tx bun.Tx, id, now int64, sourceApp *string) error {
	_, err := tx.NewUpdate().
		Model((*entryRow)(nil)).
		Set("created_at = MAX(created_at, ?)", now).
		Set("source_app = COALESCE(?, source_app)", nullString(sourceApp)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Search returns up to limit entries, pinned entries first. A blank query
// lists the most recent entries; otherwise every query term is matched as a
// prefix against the full-text index and results are ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	var rows []entryRow
	q := s.db.NewSelect().
		Model(&rows).
		ExcludeColumn("image_data").
		Limit(limit)

	if match := matchExpr(query); match == "" {
		q = q.OrderExpr("h.is_pinned DESC, h.created_at DESC, h.id DESC")
	} else {
		q = q.Join("JOIN history_fts ON history_fts.rowid = h.id").
			Where("history_fts MATCH ?", match).
			OrderExpr("h.is_pinned DESC, bm25(history_fts) ASC")
	}

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("search", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].entry())
	}
	return entries, nil
}

// matchExpr turns free text into an FTS5 expression in which every term is a
// quoted prefix match. Quote characters are dropped so user input can never
// produce malformed query syntax, and terms without a letter or digit are
// skipped since the tokenizer would reduce them to nothing.
func matchExpr(query string) string {
	fields := strings.Fields(strings.ReplaceAll(query, `"`, ""))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.IndexFunc(f, isWordRune) < 0 {
			continue
		}
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

// Get returns the entry with the given id, including any image payload.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	var row entryRow
	err := s.db.NewSelect().Model(&row).Where("h.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	e := row.entry()
	return &e, nil
}

// TogglePin flips an entry's pinned flag and returns the new state.
func (s *Store) TogglePin(ctx context.Context, id int64) (bool, error) {
	var pinned bool
	err := s.write(ctx, "toggle pin", func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*entryRow)(nil)).
			Set("is_pinned = NOT is_pinned").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return tx.NewSelect().
			Model((*entryRow)(nil)).
			Column("is_pinned").
			Where("id = ?", id).
			Scan(ctx, &pinned)
	})
	return pinned, err
}

// Delete removes an entry and reports whether it existed. Deleting a missing
// entry is not an error.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := s.write(ctx, "delete", func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*entryRow)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		removed = n > 0
		return nil
	})
	return removed, err
}

// UpdateContent replaces an entry's content in place and re-classifies it.
// An edited image entry becomes a plain text entry.
func (s *Store) UpdateContent(ctx context.Context, id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyContent
	}
	return s.write(ctx, "update", func(ctx context.Context, tx bun.Tx) error {
		other, err := idByContent(ctx, tx, text)
		if err != nil {
			return err
		}
		if other != 0 && other != id {
			return ErrDuplicateContent
		}

		res, err := tx.NewUpdate().
			Model((*entryRow)(nil)).
			Set("content = ?", text).
			Set("content_type = ?", string(content.Classify(text))).
			Set("image_data = NULL").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateContent
			}
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*entryRow)(nil)).Count(ctx)
	return n, storageErr("count", err)
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
