package models

import (
	"sort"

	"github.com/mmdatafocus/drcm_backend/utils"
)

// FilterPending keeps, in store order, the records of department (exact match)
// whose status is "pendiente" in any case.
func FilterPending(records []Record, department string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if r.Department == nil || *r.Department != department {
			continue
		}
		if !r.IsPending() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Departments returns the distinct non-empty departments, sorted.
func Departments(records []Record) []string {
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r.Department != nil && *r.Department != "" {
			names = append(names, *r.Department)
		}
	}
	names = utils.UniqueSlice(names)
	sort.Strings(names)
	if names == nil {
		return []string{}
	}
	return names
}
