package cost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/shopspring/decimal"
)

const otherResourceType = "Other"

type SortField string

const (
	SortByName         SortField = "name"
	SortByType         SortField = "type"
	SortByCost         SortField = "cost"
	SortByAdjustedCost SortField = "adjustedCost"
)

func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case SortByName, SortByType, SortByCost, SortByAdjustedCost:
		return f, nil
	case "":
		return SortByCost, nil
	default:
		return "", fmt.Errorf("unsupported sort field: %s", s)
	}
}

// Query filters and orders line items for tabular display.
type Query struct {
	Search       string
	ResourceType string
	SortField    SortField
	Descending   bool
}

func (q Query) Apply(items []domain.LineItem) []domain.LineItem {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if q.ResourceType != "" && item.Resource.ResourceType != q.ResourceType {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Resource.Name), search) &&
			!strings.Contains(strings.ToLower(item.Resource.ResourceType), search) {
			continue
		}
		out = append(out, item)
	}

	field := q.SortField
	if field == "" {
		field = SortByCost
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if q.Descending {
			a, b = b, a
		}
		switch field {
		case SortByName:
			return a.Resource.Name < b.Resource.Name
		case SortByType:
			return a.Resource.ResourceType < b.Resource.ResourceType
		case SortByAdjustedCost:
			return a.AdjustedCost.LessThan(b.AdjustedCost)
		default:
			return a.Resource.MonthlyCost.LessThan(b.Resource.MonthlyCost)
		}
	})
	return out
}

// ResourceTypes lists the distinct resource types in first-seen order.
func ResourceTypes(resources []domain.Resource) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, r := range resources {
		if _, ok := seen[r.ResourceType]; ok {
			continue
		}
		seen[r.ResourceType] = struct{}{}
		types = append(types, r.ResourceType)
	}
	return types
}

// GroupByType totals adjusted cost per resource type, most expensive first.
func GroupByType(items []domain.LineItem) []domain.TypeGroup {
	index := make(map[string]int)
	var groups []domain.TypeGroup
	for _, item := range items {
		rt := item.Resource.ResourceType
		if rt == "" {
			rt = otherResourceType
		}
		i, ok := index[rt]
		if !ok {
			i = len(groups)
			index[rt] = i
			groups = append(groups, domain.TypeGroup{ResourceType: rt, Cost: decimal.Zero})
		}
		groups[i].Count++
		groups[i].Cost = groups[i].Cost.Add(item.AdjustedCost)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Cost.GreaterThan(groups[j].Cost)
	})
	return groups
}
