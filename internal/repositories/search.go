package repositories

import "strings"

// likeEscaper escapes LIKE wildcards with '!', which reads the same on
// postgres, mysql and sqlite. Queries must add ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern returns a lower-cased LIKE pattern that matches s literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
