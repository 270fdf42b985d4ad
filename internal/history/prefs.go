package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

type settingRow struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

type ignoredAppRow struct {
	bun.BaseModel `bun:"table:ignored_apps,alias:ia"`

	Name string `bun:"name,pk"`
}

// Setting returns the value stored under key and whether it was set.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var row settingRow
	err := s.db.NewSelect().Model(&row).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("get setting", err)
	}
	return row.Value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	return s.write(ctx, "set setting", func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&settingRow{Key: key, Value: value}).
			On("CONFLICT (key) DO UPDATE").
			Set("value = EXCLUDED.value").
			Exec(ctx)
		return err
	})
}

// IgnoredApps lists the ignored application names alphabetically.
func (s *Store) IgnoredApps(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*ignoredAppRow)(nil)).
		Column("name").
		OrderExpr("name COLLATE NOCASE ASC").
		Scan(ctx, &names)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr("list ignored apps", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// AddIgnoredApp adds name to the ignore list. Names compare
// case-insensitively and adding an existing name is a no-op.
func (s *Store) AddIgnoredApp(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyKey
	}
	return s.write(ctx, "add ignored app", func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&ignoredAppRow{Name: name}).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		return err
	})
}

// RemoveIgnoredApp removes name from the ignore list and reports whether it
// was present.
func (s *Store) RemoveIgnoredApp(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyKey
	}
	var removed bool
	err := s.write(ctx, "remove ignored app", func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*ignoredAppRow)(nil)).
			Where("name = ?", name).
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
