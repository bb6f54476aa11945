package seeder

import (
	"context"
	"fmt"
	"time"

	"skilltrack/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logger.Logger
}

func (r Runner) Run(ctx context.Context) error {
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Logger.Info("seeder finished", "seeder", s.Name(), "took", time.Since(start).String())
	}
	return nil
}
