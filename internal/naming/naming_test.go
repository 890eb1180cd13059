package naming

import (
	"errors"
	"strings"
	"testing"
)

func TestDomainFolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "dots become underscores", url: "https://docs.example.com/guide", want: "docs_example_com"},
		{name: "port and case are ignored", url: "https://Docs.Example.COM:8080/", want: "docs_example_com"},
		{name: "hyphenated host", url: "https://my-site.dev", want: "my_site_dev"},
		{name: "internationalized host uses ascii form", url: "https://bücher.example/", want: "xn_bcher_kva_example"},
		{name: "relative input has no host", url: "not a url", want: UnknownDomain},
		{name: "unparsable input", url: "://bad", want: UnknownDomain},
		{name: "empty input", url: "", want: UnknownDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DomainFolder(tt.url); got != tt.want {
				t.Errorf("DomainFolder(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestRelativeFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		title string
		want  string
	}{
		{name: "nested path", url: "https://x.com/docs/getting-started", want: "docs/getting-started.md"},
		{name: "root path", url: "https://x.com/", want: IndexFile},
		{name: "no path", url: "https://x.com", want: IndexFile},
		{name: "trailing slash", url: "https://x.com/docs/api/", want: "docs/api.md"},
		{name: "title appended as last segment", url: "https://x.com/docs/", title: "Intro Guide", want: "docs/intro-guide.md"},
		{name: "title only", url: "https://x.com/", title: "Welcome", want: "welcome.md"},
		{name: "title without slug characters", url: "https://x.com/", title: "!!!", want: IndexFile},
		{name: "empty and dot segments dropped", url: "https://x.com/a//b/../c/./", want: "a/b/c.md"},
		{name: "unsafe characters replaced", url: "https://x.com/a:b", want: "a-b.md"},
		{name: "query ignored", url: "https://x.com/search?q=1", want: "search.md"},
		{name: "unparsable url", url: "https://x.com/%zz", want: IndexFile},
		{name: "free text is not a url", url: "not a url", want: IndexFile},
		{name: "relative path", url: "docs/guide", want: IndexFile},
		{name: "relative path ignores title", url: "/docs/guide", title: "Guide", want: IndexFile},
		{name: "scheme without host", url: "mailto:someone@example.com", want: IndexFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RelativeFilePath(tt.url, tt.title); got != tt.want {
				t.Errorf("RelativeFilePath(%q, %q) = %q, want %q", tt.url, tt.title, got, tt.want)
			}
		})
	}
}

// TestRelativeFilePathShape checks the structural guarantees that callers
// rely on when joining the result under a domain folder.
func TestRelativeFilePathShape(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://x.com/",
		"https://x.com//",
		"https://x.com/../../etc/passwd",
		"https://x.com/a/b/c",
		"https://x.com/ /",
		"https://x.com/a%2Fb",
		"mailto:someone@example.com",
		"",
	}

	for _, in := range inputs {
		got := RelativeFilePath(in, "")
		if !strings.HasSuffix(got, MarkdownExt) {
			t.Errorf("RelativeFilePath(%q) = %q, missing %s suffix", in, got, MarkdownExt)
		}
		if strings.HasPrefix(got, "/") {
			t.Errorf("RelativeFilePath(%q) = %q, starts with a separator", in, got)
		}
		if strings.Contains(got, "//") {
			t.Errorf("RelativeFilePath(%q) = %q, contains repeated separators", in, got)
		}
		for _, seg := range strings.Split(got, "/") {
			if seg == ".." || seg == "." {
				t.Errorf("RelativeFilePath(%q) = %q, contains %q segment", in, got, seg)
			}
		}
	}
}

func TestTitleSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{title: "Café Guide", want: "cafe-guide"},
		{title: "  Hello,   World! ", want: "hello-world"},
		{title: "API v2 - Reference", want: "api-v2---reference"},
		{title: "!!!", want: ""},
		{title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			if got := TitleSlug(tt.title); got != tt.want {
				t.Errorf("TitleSlug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestScopePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "empty means unrestricted", url: "", want: ""},
		{name: "host only", url: "https://x.com", want: RootPattern},
		{name: "root path", url: "https://x.com/", want: RootPattern},
		{name: "single segment", url: "https://x.com/docs", want: "/docs/*"},
		{name: "deeper path keeps first segment", url: "https://x.com/docs/api/v2", want: "/docs/*"},
		{name: "unparsable", url: "https://x.com/%zz", want: ""},
		{name: "free text", url: "not a url", want: ""},
		{name: "relative path", url: "/docs/api", want: ""},
		{name: "encoded segment stays encoded", url: "https://x.com/docs%20x/api", want: "/docs%20x/*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ScopePattern(tt.url); got != tt.want {
				t.Errorf("ScopePattern(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	valid := []string{"https://x.com", "http://localhost:3000/docs", "  https://x.com/a  "}
	for _, in := range valid {
		if err := ValidateURL(in); err != nil {
			t.Errorf("ValidateURL(%q) returned error: %v", in, err)
		}
	}

	invalid := []string{"", "not a url", "/relative/path", "x.com/docs", "https://"}
	for _, in := range invalid {
		if err := ValidateURL(in); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrInvalidURL", in, err)
		}
	}
}

func TestValidateScope(t *testing.T) {
	t.Parallel()

	t.Run("empty scope is valid", func(t *testing.T) {
		t.Parallel()
		if err := ValidateScope("https://x.com/docs", ""); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("start under scope is valid", func(t *testing.T) {
		t.Parallel()
		if err := ValidateScope("https://x.com/docs/intro", "https://x.com/docs"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("start outside scope is rejected", func(t *testing.T) {
		t.Parallel()
		err := ValidateScope("https://x.com/blog", "https://x.com/docs")
		if !errors.Is(err, ErrScopeMismatch) {
			t.Errorf("expected ErrScopeMismatch, got %v", err)
		}
	})

	t.Run("invalid scope is rejected", func(t *testing.T) {
		t.Parallel()
		err := ValidateScope("https://x.com/docs", "docs")
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})
}
