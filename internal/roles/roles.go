// Package roles implements the static role hierarchy. A role owns an
// explicit permission set and may extend parent roles, whose permissions it
// inherits transitively.
package roles

import (
	"fmt"
	"strings"
)

// Role keys
const (
	User      = "user"
	Moderator = "moderator"
	Admin     = "admin"
)

// Permissions a role grants directly, plus the parent roles it extends.
type Permissions struct {
	Can     []string
	Extends []string
}

// Table is the static role-permission mapping. Permission strings have the
// form "domain:action[:target]"; "*" grants everything.
var Table = map[string]Permissions{
	Admin: {
		Can: []string{"*"},
	},
	Moderator: {
		Can: []string{
			"user:ban:user",
			"user:delete:user",
			"user:update:user",
			"post:delete:user",
		},
		Extends: []string{User},
	},
	User: {},
}

// Validate rejects tables with unknown parents or circular "extends"
// chains. Called once at startup; a cyclic table would otherwise resolve
// incompletely.
func Validate(table map[string]Permissions) error {
	for role := range table {
		if err := walk(table, role, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func walk(table map[string]Permissions, role string, trail map[string]bool) error {
	if trail[role] {
		return fmt.Errorf("role %q: circular extends chain", role)
	}
	perms, ok := table[role]
	if !ok {
		return fmt.Errorf("role %q: unknown role", role)
	}
	trail[role] = true
	for _, parent := range perms.Extends {
		if err := walk(table, parent, trail); err != nil {
			return err
		}
	}
	delete(trail, role)
	return nil
}

// Resolve returns the union of a role's own permissions with those of all
// ancestor roles. Unknown roles resolve to an empty set. A visited set keeps
// resolution terminating even on a table that failed validation.
func Resolve(role string) []string {
	return resolve(Table, role, map[string]bool{})
}

func resolve(table map[string]Permissions, role string, visited map[string]bool) []string {
	if visited[role] {
		return nil
	}
	visited[role] = true

	perms, ok := table[role]
	if !ok {
		return nil
	}
	out := append([]string{}, perms.Can...)
	for _, parent := range perms.Extends {
		out = append(out, resolve(table, parent, visited)...)
	}
	return out
}

// HasPermission reports whether the role grants "domain:action[:target]".
// The wildcard "*" and the coarse "domain:action" form both satisfy a
// targeted check.
func HasPermission(role, permission string) bool {
	parts := strings.SplitN(permission, ":", 3)
	domain := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	resolved := Resolve(role)
	coarse := domain + ":" + action
	for _, p := range resolved {
		if p == "*" || p == coarse || p == permission {
			return true
		}
	}
	return false
}
