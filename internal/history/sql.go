package history

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DefaultTablePrefix = "co_"

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// ValidateTablePrefix guards the prefix before it is interpolated into SQL.
func ValidateTablePrefix(prefix string) error {
	if !tablePrefixPattern.MatchString(prefix) {
		return fmt.Errorf("invalid table prefix %q: only letters, digits and underscores are allowed", prefix)
	}
	return nil
}

// Placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type Placeholder func(n int) string

func QuestionPlaceholder(int) string { return "?" }

func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

type sqlBuilder struct {
	placeholder Placeholder
	args        []any
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return b.placeholder(len(b.args))
}

// BuildSQL renders q against the block logger schema. Result columns are
// user, world, x, y, z, logged_at, newest first.
func BuildSQL(prefix string, q Query, now time.Time, placeholder Placeholder) (string, []any, error) {
	if err := ValidateTablePrefix(prefix); err != nil {
		return "", nil, err
	}
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	sources, err := Sources(q.Filter)
	if err != nil {
		return "", nil, err
	}

	b := &sqlBuilder{placeholder: placeholder}
	since := q.Since(now)

	selects := make([]string, 0, len(sources))
	for _, src := range sources {
		table := prefix + "block"
		if src.Log == LogContainer {
			table = prefix + "container"
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, `SELECT u."user" AS user_name, w.world AS world, r.x AS x, r.y AS y, r.z AS z, r.time AS logged_at
FROM %s r
JOIN %suser u ON u.rowid = r."user"
JOIN %sworld w ON w.id = r.wid
WHERE r.rolled_back = 0
  AND r.time >= %s`, table, prefix, prefix, b.bind(since))

		if src.Action != RowAnyAction {
			fmt.Fprintf(&sb, "\n  AND r.action = %s", b.bind(src.Action))
		}

		users := make([]string, 0, len(q.Users))
		for _, user := range q.Users {
			users = append(users, b.bind(user))
		}
		fmt.Fprintf(&sb, "\n  AND u.\"user\" IN (%s)", strings.Join(users, ", "))

		if q.Location != nil {
			fmt.Fprintf(&sb, "\n  AND w.world = %s AND r.x = %s AND r.y = %s AND r.z = %s",
				b.bind(q.Location.World),
				b.bind(q.Location.X),
				b.bind(q.Location.Y),
				b.bind(q.Location.Z),
			)
		}
		selects = append(selects, sb.String())
	}

	query := strings.Join(selects, "\nUNION ALL\n") + "\nORDER BY logged_at DESC"
	return query, b.args, nil
}

// BuildKnownUsersSQL selects which of users appear in the user table.
func BuildKnownUsersSQL(prefix string, users []string, placeholder Placeholder) (string, []any, error) {
	if err := ValidateTablePrefix(prefix); err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return "", nil, ErrNoUsers
	}
	b := &sqlBuilder{placeholder: placeholder}
	marks := make([]string, len(users))
	for i, u := range users {
		marks[i] = b.bind(u)
	}
	query := fmt.Sprintf(`SELECT DISTINCT u."user" FROM %suser u WHERE u."user" IN (%s) ORDER BY u."user"`,
		prefix, strings.Join(marks, ", "))
	return query, b.args, nil
}
