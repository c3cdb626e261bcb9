package repos

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/apperr"
	"agora/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// byID orders by the queried table's key even when the query joins others.
var byID = clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}}

// hydrator preloads the relation collections an entity must carry when it
// leaves the repository.
type hydrator func(db *gorm.DB) *gorm.DB

// store is the shared CRUD core each repository builds on. Relations are
// never written implicitly; every repository manages its join rows itself.
type store[E any] struct {
	db      *gorm.DB
	log     *logger.Logger
	name    string
	hydrate hydrator
}

func newStore[E any](db *gorm.DB, baseLog *logger.Logger, name string, h hydrator) store[E] {
	return store[E]{
		db:      db,
		log:     baseLog.With("repo", name),
		name:    name,
		hydrate: h,
	}
}

func (s *store[E]) op(method string) string {
	return s.name + "." + method
}

// conn returns the caller's transaction, or the repository's pool when tx is nil.
func (s *store[E]) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	return transaction.WithContext(ctx)
}

// atomic runs fn in a transaction. Inside an outer transaction it nests as a savepoint.
func (s *store[E]) atomic(ctx context.Context, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	return s.conn(ctx, tx).Transaction(fn)
}

func (s *store[E]) loaded(db *gorm.DB) *gorm.DB {
	if s.hydrate == nil {
		return db
	}
	return s.hydrate(db)
}

func (s *store[E]) insert(db *gorm.DB, method string, e *E) error {
	if err := db.Omit(clause.Associations).Create(e).Error; err != nil {
		return translate(s.op(method), err)
	}
	return nil
}

// save writes every column of an existing row. A missing row is NotFound, not an upsert.
func (s *store[E]) save(db *gorm.DB, method string, id uint, e *E) error {
	if id == 0 {
		return apperr.Invalid(s.op(method), "entity has no identity; insert it first")
	}
	exists, err := s.exists(db, method, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.New(s.op(method), apperr.ErrNotFound, fmt.Errorf("id %d", id))
	}
	if err := db.Omit(clause.Associations).Save(e).Error; err != nil {
		return translate(s.op(method), err)
	}
	return nil
}

func (s *store[E]) exists(db *gorm.DB, method string, id uint) (bool, error) {
	var count int64
	if err := db.Model(new(E)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(s.op(method), err)
	}
	return count > 0, nil
}

func (s *store[E]) remove(db *gorm.DB, method string, id uint) error {
	if id == 0 {
		return apperr.Invalid(s.op(method), "entity has no identity")
	}
	res := db.Delete(new(E), id)
	if res.Error != nil {
		return translate(s.op(method), res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(s.op(method), apperr.ErrNotFound, fmt.Errorf("id %d", id))
	}
	return nil
}

// findByID returns nil, nil on a miss.
func (s *store[E]) findByID(db *gorm.DB, method string, id uint) (*E, error) {
	var e E
	if err := s.loaded(db).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate(s.op(method), err)
	}
	return &e, nil
}

// findOne returns the first hydrated match or nil, nil.
func (s *store[E]) findOne(db *gorm.DB, method string, query any, args ...any) (*E, error) {
	var e E
	if err := s.loaded(db).Where(query, args...).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate(s.op(method), err)
	}
	return &e, nil
}

// findMany returns hydrated matches in id order; an empty result is not an error.
func (s *store[E]) findMany(db *gorm.DB, method string, query any, args ...any) ([]*E, error) {
	results := []*E{}
	q := s.loaded(db)
	if query != nil {
		q = q.Where(query, args...)
	}
	if err := q.Order(byID).Find(&results).Error; err != nil {
		return nil, translate(s.op(method), err)
	}
	return results, nil
}

func (s *store[E]) count(db *gorm.DB, method string, query any, args ...any) (int64, error) {
	var n int64
	if err := db.Model(new(E)).Where(query, args...).Count(&n).Error; err != nil {
		return 0, translate(s.op(method), err)
	}
	return n, nil
}
