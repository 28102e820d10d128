package content

import "strings"

// SearchQuery is what the visitor asked for.
type SearchQuery struct {
	Terms    []string
	Exact    bool // match terms as whole column values instead of substrings
	LoggedIn bool
}

// SearchClause is a WHERE fragment appended to the published-posts query.
// A non-empty SQL starts with " AND ".  Args bind its placeholders in order.
type SearchClause struct {
	SQL  string
	Args []any
}

// Empty reports whether the clause adds no restriction.
func (c SearchClause) Empty() bool { return strings.TrimSpace(c.SQL) == "" }

// DefaultSearchClause matches every term against title, excerpt, and body.
// It is the value handed to the posts_search filter.
func DefaultSearchClause(q SearchQuery) SearchClause {
	var (
		parts []string
		args  []any
	)
	for _, term := range q.Terms {
		if term == "" {
			continue
		}
		like := LikePattern(term, q.Exact)
		parts = append(parts, "(p.post_title LIKE ? OR p.post_excerpt LIKE ? OR p.post_content LIKE ?)")
		args = append(args, like, like, like)
	}
	if len(parts) == 0 {
		return SearchClause{}
	}
	return SearchClause{SQL: " AND " + strings.Join(parts, " AND "), Args: args}
}

// LikePattern escapes LIKE wildcards in term and, unless exact, wraps it
// in % for substring matching.
func LikePattern(term string, exact bool) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	if exact {
		return escaped
	}
	return "%" + escaped + "%"
}
