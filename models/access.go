package models

import "strings"

// Gate checks department secrets. A secret is the upper-cased department
// name followed by Year; it grants edit rights on that department only.
type Gate struct {
	Year string
}

func NewGate(year string) Gate {
	return Gate{Year: year}
}

// Secret is the expected secret of department.
func (g Gate) Secret(department string) string {
	return strings.ToUpper(department) + g.Year
}

func (g Gate) Authorize(department, secret string) bool {
	if department == "" {
		return false
	}
	return secret == g.Secret(department)
}
