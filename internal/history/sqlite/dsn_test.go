package sqlite

import "testing"

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "memory", input: "sqlite://:memory:", want: ":memory:"},
		{name: "absolute path", input: "sqlite:///srv/mc/plugins/CoreProtect/database.db", want: "/srv/mc/plugins/CoreProtect/database.db"},
		{name: "relative path", input: "sqlite://database.db", want: "./database.db"},
		{name: "dot relative path", input: "sqlite://./data/database.db", want: "./data/database.db"},
		{name: "escaped path", input: "sqlite://my%20server/database.db", want: "./my server/database.db"},
		{name: "query is kept", input: "sqlite://database.db?_pragma=busy_timeout(5000)", want: "./database.db?_pragma=busy_timeout(5000)"},
		{name: "wrong scheme", input: "postgres://localhost/db", wantErr: true},
		{name: "empty path", input: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseDSN(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDSN(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseDSN(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithPragmas(t *testing.T) {
	if got := withPragmas(":memory:", "busy_timeout(30000)", "query_only(1)"); got != ":memory:?_pragma=busy_timeout(30000)&_pragma=query_only(1)" {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := withPragmas("./co.db?mode=ro", "busy_timeout(30000)"); got != "./co.db?mode=ro&_pragma=busy_timeout(30000)" {
		t.Errorf("unexpected DSN %q", got)
	}
}
