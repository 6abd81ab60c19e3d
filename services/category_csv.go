package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/repositories"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var categoryCSVHeader = []string{"name", "path", "level", "order", "isActive"}

// ExportCategoriesCSV writes every category, parents before children.
func (s *CategoryService) ExportCategoriesCSV(ctx context.Context, w io.Writer) error {
	categories, err := s.store.List(ctx, models.CategoryFilter{})
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Level != categories[j].Level {
			return categories[i].Level < categories[j].Level
		}
		return categories[i].Path < categories[j].Path
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(categoryCSVHeader); err != nil {
		return err
	}
	for _, c := range categories {
		record := []string{
			c.Name,
			c.Path,
			strconv.Itoa(c.Level),
			strconv.Itoa(c.Order),
			strconv.FormatBool(c.IsActive),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCategoriesCSV creates the categories listed in r. Rows must list
// parents before children; each row's parent is resolved from its path.
// Rows that already exist are skipped and bad rows are reported, not fatal.
func (s *CategoryService) ImportCategoriesCSV(ctx context.Context, r io.Reader) (models.BatchResult, error) {
	result := models.BatchResult{Failed: []models.ItemError{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return result, utils.BadRequest("CSV file is empty or unreadable")
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return result, utils.BadRequest("CSV must have a name column")
	}
	if _, ok := cols["path"]; !ok {
		return result, utils.BadRequest("CSV must have a path column")
	}

	field := func(record []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Failed = append(result.Failed, models.ItemError{Row: row, Error: err.Error()})
			continue
		}

		created, err := s.importRow(ctx, field(record, "name"), field(record, "path"),
			field(record, "level"), field(record, "order"), field(record, "isActive"))
		switch {
		case err != nil:
			result.Failed = append(result.Failed, models.ItemError{Row: row, Error: err.Error()})
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	if result.Created > 0 {
		s.cache.Invalidate(ctx)
	}
	return result, nil
}

func (s *CategoryService) importRow(ctx context.Context, name, path, levelStr, orderStr, activeStr string) (bool, error) {
	if err := utils.ValidateCategoryName(name); err != nil {
		return false, err
	}
	if err := utils.ValidateCategoryPath(path); err != nil {
		return false, err
	}

	segments := strings.Split(path, "/")
	if err := utils.ValidateCategoryLevel(len(segments), models.MaxCategoryLevel); err != nil {
		return false, err
	}
	if levelStr != "" {
		level, err := strconv.Atoi(strings.TrimSpace(levelStr))
		if err != nil || level != len(segments) {
			return false, errors.New("Invalid category level")
		}
	}
	if segments[len(segments)-1] != name {
		return false, errors.New("Category name does not match its path")
	}

	order := 0
	if orderStr != "" {
		o, err := strconv.Atoi(strings.TrimSpace(orderStr))
		if err != nil {
			return false, errors.New("Invalid order value")
		}
		order = o
	}
	active := true
	if activeStr != "" {
		a, err := strconv.ParseBool(strings.TrimSpace(activeStr))
		if err != nil {
			return false, errors.New("Invalid isActive value")
		}
		active = a
	}

	var parentID *primitive.ObjectID
	for _, segment := range segments[:len(segments)-1] {
		parent, err := s.store.FindByNameAndParent(ctx, segment, parentID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return false, errors.New("Parent category not found")
			}
			return false, err
		}
		id := parent.ID
		parentID = &id
	}

	if _, err := s.store.FindByNameAndParent(ctx, name, parentID); err == nil {
		return false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	if _, err := s.create(ctx, name, parentID, order, "", active); err != nil {
		return false, err
	}
	return true, nil
}
