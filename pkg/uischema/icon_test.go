package uischema

import (
	"strings"
	"testing"
)

func TestSanitizeIcon(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		keep   []string
		reject []string
	}{
		{
			name:   "svg without script",
			input:  `  <svg viewBox="0 0 24 24"><script>alert('x')</script><path d="M0 0h24v24H0z" /></svg>`,
			keep:   []string{"<svg", "<path"},
			reject: []string{"script"},
		},
		{
			name:   "font tag",
			input:  `<i class="fa fa-user" onclick="steal()"></i>`,
			keep:   []string{`<i class="fa fa-user">`},
			reject: []string{"onclick"},
		},
		{
			name:   "link dropped",
			input:  `<a href="javascript:alert(1)">x</a>`,
			reject: []string{"<a", "javascript"},
		},
		{
			name:   "class list",
			input:  ` fas  fa-users "onmouseover=x `,
			keep:   []string{"fas fa-users"},
			reject: []string{"onmouseover", `"`},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := sanitizeIcon(tc.input)
			for _, want := range tc.keep {
				if !strings.Contains(got, want) {
					t.Fatalf("expected %q in %q", want, got)
				}
			}
			for _, bad := range tc.reject {
				if strings.Contains(got, bad) {
					t.Fatalf("unexpected %q in %q", bad, got)
				}
			}
		})
	}
	if got := sanitizeIcon("   "); got != "" {
		t.Fatalf("blank icon sanitized to %q", got)
	}
}
