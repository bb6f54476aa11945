package seeder

import (
	"context"
	"fmt"

	"skilltrack/internal/domain/skill"
	"skilltrack/internal/usecase"

	"github.com/google/uuid"
)

type TaxonomyNode struct {
	Name     string
	Children []TaxonomyNode
}

// DefaultTaxonomy is the starter catalog loaded into an empty store.
var DefaultTaxonomy = []TaxonomyNode{
	{Name: "Programming", Children: []TaxonomyNode{
		{Name: "Backend", Children: []TaxonomyNode{
			{Name: "Go"},
			{Name: "PostgreSQL"},
			{Name: "Redis"},
		}},
		{Name: "Frontend", Children: []TaxonomyNode{
			{Name: "JavaScript"},
			{Name: "TypeScript"},
		}},
	}},
	{Name: "DevOps", Children: []TaxonomyNode{
		{Name: "Docker"},
		{Name: "Kubernetes"},
	}},
	{Name: "Cloud", Children: []TaxonomyNode{
		{Name: "AWS"},
		{Name: "GCP"},
	}},
	{Name: "Design", Children: []TaxonomyNode{
		{Name: "UX Research"},
	}},
}

// SkillsSeeder creates the taxonomy through the catalog usecase. Names that
// already exist are reused where they are, never moved.
type SkillsSeeder struct {
	Skills   usecase.SkillUsecase
	Taxonomy []TaxonomyNode
}

func (SkillsSeeder) Name() string { return "skills" }

func (s SkillsSeeder) Run(ctx context.Context) error {
	existing, err := s.Skills.ListAllSkills(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]skill.Node, len(existing))
	for _, n := range existing {
		byName[n.Name] = n
	}

	taxonomy := s.Taxonomy
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy
	}
	for _, root := range taxonomy {
		if err := s.ensure(ctx, byName, root, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s SkillsSeeder) ensure(ctx context.Context, byName map[string]skill.Node, node TaxonomyNode, parentID *uuid.UUID) error {
	n, ok := byName[node.Name]
	if !ok {
		created, err := s.Skills.CreateSkill(ctx, node.Name, parentID)
		if err != nil {
			return fmt.Errorf("create %q: %w", node.Name, err)
		}
		byName[created.Name] = created
		n = created
	}

	id := n.ID
	for _, child := range node.Children {
		if err := s.ensure(ctx, byName, child, &id); err != nil {
			return err
		}
	}
	return nil
}
