package seeder

import "context"

// Seeder inserts reference data. Running a seeder twice leaves the store
// unchanged the second time.
type Seeder interface {
	Name() string
	Run(ctx context.Context) error
}
