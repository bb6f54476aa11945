package seeder

import (
	"skilltrack/internal/domain/user"
	"skilltrack/internal/usecase"
)

type Options struct {
	AdminEmail   string
	AdminRole    string
	SkipTaxonomy bool
	OnAdmin      func(u user.User)
}

func Defaults(users user.Repository, skills usecase.SkillUsecase, opts Options) []Seeder {
	out := make([]Seeder, 0, 2)
	if opts.AdminEmail != "" {
		out = append(out, AdminSeeder{Users: users, Email: opts.AdminEmail, Role: opts.AdminRole, Created: opts.OnAdmin})
	}
	if !opts.SkipTaxonomy {
		out = append(out, SkillsSeeder{Skills: skills})
	}
	return out
}
