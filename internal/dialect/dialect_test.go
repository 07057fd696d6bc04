package dialect

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		tag     string
		dialect Dialect
		mode    Mode
	}{
		{"js", JavaScript, Native},
		{"javascript", JavaScript, Native},
		{"", JavaScript, Native},
		{"ts", TypeScript, Transpile},
		{" TypeScript ", TypeScript, Transpile},
		{"mts", TypeScript, Transpile},
		{"cobol", JavaScript, Native},
		{"native", JavaScript, Native},
	}

	for _, tt := range tests {
		got := Resolve(tt.tag)
		if got.Dialect != tt.dialect {
			t.Errorf("Resolve(%q).Dialect = %q, want %q", tt.tag, got.Dialect, tt.dialect)
		}
		if got.Mode != tt.mode {
			t.Errorf("Resolve(%q).Mode = %v, want %v", tt.tag, got.Mode, tt.mode)
		}
		if got.Target != JavaScript {
			t.Errorf("Resolve(%q).Target = %q, want js", tt.tag, got.Target)
		}
		if got.Requested != tt.tag {
			t.Errorf("Resolve(%q).Requested = %q", tt.tag, got.Requested)
		}
	}
}

func TestFromFilename(t *testing.T) {
	tests := map[string]Dialect{
		"basics.js":    JavaScript,
		"types.ts":     TypeScript,
		"MAIN.TS":      TypeScript,
		"dir/x.mts":    TypeScript,
		"notes.txt":    JavaScript,
		"no-extension": JavaScript,
	}
	for name, want := range tests {
		if got := FromFilename(name); got != want {
			t.Errorf("FromFilename(%q) = %q, want %q", name, got, want)
		}
	}
}
