package repository

import "gorm.io/gorm"

// Transactor runs a function inside one database transaction. The tx handle
// it passes is meant for the repositories' tx-accepting methods.
type Transactor interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) Transaction(fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}
