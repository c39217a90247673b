package service

import (
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"strings"
)

// FilterMode decides how the role and search predicates combine.
type FilterMode string

const (
	// FilterModeLastApplied shows the result of whichever predicate ran last.
	FilterModeLastApplied FilterMode = "last_applied"
	// FilterModeComposed intersects the role and search predicates.
	FilterModeComposed FilterMode = "composed"
)

func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(s) {
	case FilterModeLastApplied, FilterModeComposed:
		return FilterMode(s), nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
}

type predicate int

const (
	predicateNone predicate = iota
	predicateRole
	predicateSearch
)

// FilterByRole keeps users whose type equals role, preserving order.
// An unknown role matches nobody, so users with an unknown code never match.
func FilterByRole(users []domain.User, role domain.Role) []domain.User {
	out := make([]domain.User, 0, len(users))
	if !role.Known() {
		return out
	}
	for _, u := range users {
		if u.Type == role {
			out = append(out, u)
		}
	}
	return out
}

// FilterByName keeps users whose name contains query, ignoring case.
func FilterByName(users []domain.User, query string) []domain.User {
	needle := strings.ToLower(query)
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			out = append(out, u)
		}
	}
	return out
}

// Label is "Admin Users" when users holds at least one admin, otherwise
// "Manager Users", including for an empty list.
func Label(users []domain.User) string {
	for _, u := range users {
		if u.Type == domain.RoleAdmin {
			return "Admin Users"
		}
	}
	return "Manager Users"
}
