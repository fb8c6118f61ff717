package database

import "context"

// Transactor runs fn inside one transaction of the configured store.
// Repositories called with the ctx handed to fn take part in it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
