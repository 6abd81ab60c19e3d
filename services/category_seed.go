package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedCategory is one node of a default taxonomy.
type SeedCategory struct {
	Name     string
	Order    int
	Children []SeedCategory
}

func seed(name string, order int, children ...SeedCategory) SeedCategory {
	return SeedCategory{Name: name, Order: order, Children: children}
}

// DefaultTaxonomy is the storefront's starting category tree.
var DefaultTaxonomy = []SeedCategory{
	seed("Indoor", 1,
		seed("Bathroom", 1,
			seed("Cabinets & Components", 1),
		),
		seed("Kitchen", 2,
			seed("Cabinets & Components", 1),
			seed("Countertops", 2),
			seed("Sinks & Accessories", 3),
			seed("Faucets & Fixtures", 4),
			seed("Lighting", 5),
			seed("Ventilation", 6),
			seed("Flooring", 7),
			seed("Storage Solutions", 8),
		),
		seed("Doors", 3),
		seed("Curtains & Windows Blinds", 4,
			seed("Curtains", 1),
			seed("Windows Blinds", 2),
			seed("Curtain Accessories & Fittings", 3),
		),
		seed("Furniture", 5,
			seed("Bedroom", 1),
			seed("Dining Room", 2),
			seed("Sitting Room", 3),
			seed("Kitchen", 4),
			seed("Lounge", 5),
			seed("Office", 6),
			seed("Bar", 7),
		),
		seed("Tiles", 6),
		seed("Ceiling", 7),
		seed("Lighting", 8),
		seed("Handrails and Banisters", 9),
		seed("Wall Decor", 10),
	),
	seed("Outdoor", 2,
		seed("Gates", 1,
			seed("Electronic gate", 1),
			seed("PreFab gate", 2),
			seed("Stainless gate", 3),
			seed("Pre-Order gate", 4),
		),
		seed("Table and Chair", 2,
			seed("Classic chair", 1),
			seed("Table", 2),
		),
		seed("Doors", 3,
			seed("Security doors", 1),
			seed("Steel doors", 2),
			seed("Wooden and MDF doors", 3),
			seed("Pivot doors", 4),
			seed("Glass door", 5),
			seed("Smart doors", 6),
			seed("Door Fittings and Accessories", 7),
		),
		seed("Windows", 4),
		seed("Flooring", 5),
		seed("Roofing", 6),
		seed("Water Tanks & Reservoirs", 7),
		seed("Lighting", 8),
		seed("Bollard Barriers", 9),
		seed("Handrails and Banisters", 10),
		seed("Car park Tents and Pergolas", 11),
	),
	seed("Construction", 3,
		seed("Wood & Panel", 1,
			seed("Wood", 1),
			seed("Panel", 2),
		),
		seed("Metals", 2,
			seed("Steel", 1),
			seed("Iron bar", 2),
			seed("Wrought Iron", 3),
		),
		seed("Plumbing & Drainage", 3,
			seed("PVC Pipes", 1),
			seed("Plumbing Accessories", 2),
		),
		seed("Cement Sand and Granite", 4,
			seed("Cements", 1),
			seed("Sand", 2),
			seed("Granite and Stones", 3),
		),
	),
}

// PopulateCategories creates every node of taxonomy that does not exist yet,
// matching existing categories by name under the same parent. It returns how
// many were created, so a second run reports zero.
func (s *CategoryService) PopulateCategories(ctx context.Context, taxonomy []SeedCategory) (int, error) {
	created := 0
	var walk func(nodes []SeedCategory, parentID *primitive.ObjectID) error
	walk = func(nodes []SeedCategory, parentID *primitive.ObjectID) error {
		for _, node := range nodes {
			category, err := s.store.FindByNameAndParent(ctx, node.Name, parentID)
			switch {
			case err == nil:
			case errors.Is(err, repositories.ErrNotFound):
				category, err = s.create(ctx, node.Name, parentID, node.Order, "", true)
				if err != nil {
					return fmt.Errorf("create %q: %w", node.Name, err)
				}
				created++
			default:
				return fmt.Errorf("find %q: %w", node.Name, err)
			}

			id := category.ID
			if err := walk(node.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(taxonomy, nil); err != nil {
		return created, err
	}
	if created > 0 {
		s.cache.Invalidate(ctx)
	}
	return created, nil
}

// CleanupCategoryNames renames categories whose name still carries a legacy
// "Parent > Child" prefix to the text after the last '>' and recomputes the
// path of each renamed node. Parents are handled before their children.
func (s *CategoryService) CleanupCategoryNames(ctx context.Context) (int, error) {
	categories, err := s.store.List(ctx, models.CategoryFilter{})
	if err != nil {
		return 0, fmt.Errorf("load categories: %w", err)
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Level < categories[j].Level })

	renamed := 0
	for i := range categories {
		c := categories[i]
		if !strings.Contains(c.Name, ">") {
			continue
		}
		clean := strings.TrimSpace(c.Name[strings.LastIndex(c.Name, ">")+1:])
		if clean == "" {
			log.Printf("Skipping category %s: name %q has nothing after '>'", c.ID.Hex(), c.Name)
			continue
		}

		path := clean
		if c.Parent != nil {
			parent, err := s.store.FindByID(ctx, *c.Parent)
			if err != nil {
				log.Printf("Skipping category %s: parent lookup failed: %v", c.ID.Hex(), err)
				continue
			}
			path = parent.Path + "/" + clean
		}

		c.Name = clean
		c.Slug = slug.Make(clean)
		c.Path = path
		c.UpdatedAt = time.Now()
		if err := s.store.Update(ctx, &c); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				log.Printf("Skipping category %s: %q already exists under the same parent", c.ID.Hex(), clean)
				continue
			}
			return renamed, fmt.Errorf("rename category %s: %w", c.ID.Hex(), err)
		}
		log.Printf("Updated: %s to %q", c.ID.Hex(), clean)
		renamed++
	}

	if renamed > 0 {
		s.cache.Invalidate(ctx)
	}
	return renamed, nil
}
