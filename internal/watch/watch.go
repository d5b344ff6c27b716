// Package watch holds the set of users whose stocked containers are tracked.
package watch

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmpty = errors.New("watch list is empty")

// List is an ordered, deduplicated set of user ids. It is immutable once built.
type List struct {
	users []string
	set   map[string]struct{}
}

func New(users []string) (List, error) {
	l := List{set: make(map[string]struct{}, len(users))}
	for i, user := range users {
		name := strings.TrimSpace(user)
		if name == "" {
			return List{}, fmt.Errorf("watch list entry %d is blank", i)
		}
		if _, dup := l.set[name]; dup {
			continue
		}
		l.set[name] = struct{}{}
		l.users = append(l.users, name)
	}
	if len(l.users) == 0 {
		return List{}, ErrEmpty
	}
	return l, nil
}

func (l List) Users() []string {
	out := make([]string, len(l.users))
	copy(out, l.users)
	return out
}

func (l List) Contains(user string) bool {
	_, ok := l.set[user]
	return ok
}

func (l List) Len() int {
	return len(l.users)
}
