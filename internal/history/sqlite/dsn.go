package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const memoryPath = ":memory:"

// parseDSN turns sqlite://<path>[?query] into a driver DSN. Relative paths
// resolve against the working directory.
func parseDSN(dsn string) (string, error) {
	rest, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	path, query, _ := strings.Cut(rest, "?")
	if path == "" {
		return "", fmt.Errorf("sqlite DSN has no database path")
	}
	if path == memoryPath {
		return withQuery(memoryPath, query), nil
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	path = unescaped
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	return withQuery(path, query), nil
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

// withPragmas adds _pragma parameters, which the driver applies to every new
// connection in the pool.
func withPragmas(driverDSN string, pragmas ...string) string {
	sep := "?"
	if strings.Contains(driverDSN, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(driverDSN)
	for _, p := range pragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func isMemory(driverDSN string) bool {
	return strings.HasPrefix(driverDSN, memoryPath)
}
