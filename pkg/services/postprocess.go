package services

import (
	"regexp"
	"strings"

	"github.com/ai-dope/schema-engine/pkg/sql"
)

var sqlFenceRegex = regexp.MustCompile("```sql\n([\\s\\S]*?)```")

// RewriteSQLBlocks runs every fenced sql block in an assistant answer
// through dependency ordering, replacing the block contents in place.
// Returns the rewritten text and the rewritten block contents in order of
// appearance. DML blocks come back unchanged through the resolver's
// pass-through, so example queries keep their exact shape.
func RewriteSQLBlocks(text string) (string, []string) {
	var blocks []string

	rewritten := sqlFenceRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := sqlFenceRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		content := strings.TrimSpace(sub[1])
		if content == "" {
			return match
		}

		resolved := sql.Resolve(content)
		blocks = append(blocks, resolved)
		return "```sql\n" + resolved + "\n```"
	})

	return rewritten, blocks
}
