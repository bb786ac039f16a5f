// Package store persists dictionary entries in the words table.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epikoding/dictionary/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no entry matches the id/owner pair.
var ErrNotFound = errors.New("entry not found")

// Fields are the user-editable columns of an entry.
type Fields struct {
	Word     string
	Meaning  string
	Category *string
	Memo     *string
}

type EntryStore struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

type Option func(*EntryStore)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *EntryStore) {
		s.now = now
	}
}

// NewEntryStore stamps and returns timestamps in loc.
func NewEntryStore(db *gorm.DB, loc *time.Location, opts ...Option) *EntryStore {
	if loc == nil {
		loc = time.UTC
	}
	s := &EntryStore{db: db, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EntryStore) timestamp() time.Time {
	return s.now().In(s.loc).Truncate(time.Microsecond)
}

func (s *EntryStore) localize(e *model.Entry) {
	e.CreatedAt = e.CreatedAt.In(s.loc)
	e.UpdatedAt = e.UpdatedAt.In(s.loc)
}

// Insert assigns the id and both timestamps of e.
func (s *EntryStore) Insert(ctx context.Context, e *model.Entry) error {
	ts := s.timestamp()
	e.ID = 0
	e.CreatedAt = ts
	e.UpdatedAt = ts

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(e).Error
	})
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FindByOwner returns every entry of owner, most recently updated first.
func (s *EntryStore) FindByOwner(ctx context.Context, owner string) ([]model.Entry, error) {
	var entries []model.Entry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("updated_at DESC").
		Order("word_id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}
	for i := range entries {
		s.localize(&entries[i])
	}
	return entries, nil
}

func (s *EntryStore) FindOne(ctx context.Context, id int64, owner string) (*model.Entry, error) {
	var e model.Entry
	err := s.db.WithContext(ctx).
		Where("word_id = ? AND user_id = ?", id, owner).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find entry %d: %w", id, err)
	}
	s.localize(&e)
	return &e, nil
}

// ReplaceFields overwrites the editable columns and advances updated_at past
// its previous value. It reports false when no entry matches.
func (s *EntryStore) ReplaceFields(ctx context.Context, id int64, owner string, f Fields) (bool, error) {
	updated := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Entry
		err := tx.Where("word_id = ? AND user_id = ?", id, owner).First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ts := s.timestamp()
		if !ts.After(current.UpdatedAt) {
			ts = current.UpdatedAt.In(s.loc).Add(time.Microsecond)
		}

		result := tx.Model(&model.Entry{}).
			Where("word_id = ? AND user_id = ?", id, owner).
			Updates(map[string]interface{}{
				"word":       f.Word,
				"meaning":    f.Meaning,
				"category":   f.Category,
				"memo":       f.Memo,
				"updated_at": ts,
			})
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("update entry %d: %w", id, err)
	}
	return updated, nil
}

// Delete removes the entry permanently. It reports false when no entry matches.
func (s *EntryStore) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("word_id = ? AND user_id = ?", id, owner).Delete(&model.Entry{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}
	return deleted, nil
}
