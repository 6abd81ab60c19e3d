package services

import (
	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// computeLineage derives level, ancestors and path for a category named name
// placed under parent (nil for a root).
func computeLineage(name string, parent *models.Category) (int, []primitive.ObjectID, string, error) {
	if parent == nil {
		return 1, []primitive.ObjectID{}, name, nil
	}

	level := parent.Level + 1
	if err := utils.ValidateCategoryLevel(level, models.MaxCategoryLevel); err != nil {
		return 0, nil, "", utils.BadRequest(err.Error())
	}

	ancestors := make([]primitive.ObjectID, 0, len(parent.Ancestors)+1)
	ancestors = append(ancestors, parent.Ancestors...)
	ancestors = append(ancestors, parent.ID)

	return level, ancestors, parent.Path + "/" + name, nil
}

// BuildCategoryTree turns a flat list, already sorted by order, into a forest.
// Sibling order follows the input order. A category whose parent is not in the
// list is returned as a root.
func BuildCategoryTree(categories []models.Category) []*models.CategoryNode {
	nodes := make(map[primitive.ObjectID]*models.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &models.CategoryNode{Category: c, Subcategories: []*models.CategoryNode{}}
	}

	tree := []*models.CategoryNode{}
	for _, c := range categories {
		node := nodes[c.ID]
		if c.Parent != nil {
			if parent, ok := nodes[*c.Parent]; ok {
				parent.Subcategories = append(parent.Subcategories, node)
				continue
			}
		}
		tree = append(tree, node)
	}
	return tree
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
