// Package dictionary implements owner-scoped CRUD over dictionary entries.
// It is the only place entries are constructed or mutated.
package dictionary

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/epikoding/dictionary/internal/model"
	"github.com/epikoding/dictionary/internal/store"
)

// Repository is the persistence the service needs. *store.EntryStore
// satisfies it.
type Repository interface {
	Insert(ctx context.Context, e *model.Entry) error
	FindByOwner(ctx context.Context, owner string) ([]model.Entry, error)
	FindOne(ctx context.Context, id int64, owner string) (*model.Entry, error)
	ReplaceFields(ctx context.Context, id int64, owner string, f store.Fields) (bool, error)
	Delete(ctx context.Context, id int64, owner string) (bool, error)
}

// Input is the user-supplied part of an entry, before normalization.
type Input struct {
	Word     string
	Meaning  string
	Category string
	Memo     string
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalize(in Input) (store.Fields, error) {
	f := store.Fields{
		Word:     strings.TrimSpace(in.Word),
		Meaning:  strings.TrimSpace(in.Meaning),
		Category: optional(in.Category),
		Memo:     optional(in.Memo),
	}
	if f.Word == "" {
		return f, &ValidationError{Field: "word"}
	}
	if f.Meaning == "" {
		return f, &ValidationError{Field: "meaning"}
	}
	return f, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) Create(ctx context.Context, owner string, in Input) (*model.Entry, error) {
	f, err := normalize(in)
	if err != nil {
		return nil, err
	}

	e := &model.Entry{
		UserID:   owner,
		Word:     f.Word,
		Meaning:  f.Meaning,
		Category: f.Category,
		Memo:     f.Memo,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, &PersistenceError{Op: "create", Err: err}
	}
	return e, nil
}

// List returns the owner's entries, most recently updated first.
func (s *Service) List(ctx context.Context, owner string) ([]model.Entry, error) {
	entries, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id int64, owner string) (*model.Entry, error) {
	e, err := s.repo.FindOne(ctx, id, owner)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return e, nil
}

// Update reports false without error when the id/owner pair does not exist.
func (s *Service) Update(ctx context.Context, id int64, owner string, in Input) (bool, error) {
	f, err := normalize(in)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.ReplaceFields(ctx, id, owner, f)
	if err != nil {
		return false, &PersistenceError{Op: "update", Err: err}
	}
	return ok, nil
}

// Delete reports false without error when the id/owner pair does not exist.
func (s *Service) Delete(ctx context.Context, id int64, owner string) (bool, error) {
	ok, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return false, &PersistenceError{Op: "delete", Err: err}
	}
	return ok, nil
}

// Categories returns the distinct non-blank categories of entries, sorted.
func Categories(entries []model.Entry) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		c := strings.TrimSpace(e.CategoryName())
		if c != "" {
			seen[c] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
