package sanitize

import (
	"html"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text unchanged",
			input:    "plain article title",
			expected: "plain article title",
		},
		{
			name:     "leading and trailing whitespace trimmed",
			input:    "  padded title \t ",
			expected: "padded title",
		},
		{
			name:     "whitespace runs collapsed",
			input:    "too   many\t\tspaces\n\nhere",
			expected: "too many spaces here",
		},
		{
			name:     "control characters replaced",
			input:    "first\x00second\x1fthird",
			expected: "first second third",
		},
		{
			name:     "c1 controls replaced",
			input:    "first\u0085second",
			expected: "first second",
		},
		{
			name:     "zero width and nbsp replaced",
			input:    "zero\u200bwidth\u00a0space\ufeff",
			expected: "zero width space",
		},
		{
			name:     "line separator replaced",
			input:    "one\u2028two\u2029three",
			expected: "one two three",
		},
		{
			name:     "xml specials escaped",
			input:    `<b>Tom & "Jerry"</b>`,
			expected: "&lt;b&gt;Tom &amp; &#34;Jerry&#34;&lt;/b&gt;",
		},
		{
			name:     "existing entities not double encoded",
			input:    "Tom &amp; Jerry &lt;live&gt;",
			expected: "Tom &amp; Jerry &lt;live&gt;",
		},
		{
			name:     "numeric entity for control stripped",
			input:    "line&#10;break",
			expected: "line break",
		},
		{
			name:     "unicode text preserved",
			input:    "正しい記事のタイトル",
			expected: "正しい記事のタイトル",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanDeeplyEscaped(t *testing.T) {
	s := "<"
	for i := 0; i < 10; i++ {
		s = html.EscapeString(s)
	}

	if got := Clean(s); got != "&lt;" {
		t.Errorf("Clean(%q) = %q, want %q", s, got, "&lt;")
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"  padded \t text  ",
		`<script>alert("&")</script>`,
		"Tom &amp; Jerry",
		"&amp;lt;double escaped&amp;gt;",
		"zero\u200bwidth\x00control\u00a0space",
		"https://example.com/?a=1&b=2",
		"line&#10;break&#13;",
	}

	// Escaping depth is unbounded in the wild; nesting must not outrun the
	// decoder.
	deep := "<"
	for i := 0; i < 10; i++ {
		deep = html.EscapeString(deep)
	}
	inputs = append(inputs, deep)

	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
