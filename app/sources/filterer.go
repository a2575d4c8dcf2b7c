package sources

import (
	"strings"

	"github.com/svirin/newswatch/app/admission"
)

// Filterer drops candidate items that match a source's exclude rules or miss
// all of its include rules. It runs before admission so filtered items never
// touch the duplicate cache.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []admission.Item, filters []ConfigFilter) []admission.Item {
	if len(filters) == 0 {
		return items
	}

	kept := make([]admission.Item, 0, len(items))
	for _, item := range items {
		if !f.excluded(item, filters) {
			kept = append(kept, item)
		}
	}

	return kept
}

func (f *Filterer) excluded(item admission.Item, filters []ConfigFilter) bool {
	for _, filter := range filters {
		value := f.fieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matches(value, exclude) {
				return true
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matches(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true
			}
		}
	}

	return false
}

func (f *Filterer) matches(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) fieldValue(item admission.Item, field string) string {
	switch field {
	case "title":
		return item.Title
	case "body":
		return item.Body
	default:
		return ""
	}
}
