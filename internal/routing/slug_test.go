package routing

import (
	"strings"
	"testing"
	"time"
)

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"  Hello, World!  ": "hello-world",
		"???":               "item",
		"Tag: <go>":         "tag-go",
		"Café au lait":      "caf-au-lait",
		"a--b__c":           "a-b-c",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
	long := MakeSlug(strings.Repeat("ab ", 60))
	if len(long) > 100 || strings.HasSuffix(long, "-") {
		t.Fatalf("long slug = %q", long)
	}
}

func TestBuildPath(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, "/"},
		{[]string{"", "/"}, "/"},
		{[]string{"/category/", "/news/"}, "/category/news"},
		{[]string{"2024/05", "hello"}, "/2024/05/hello"},
		{[]string{"", "about"}, "/about"},
	}
	for _, tc := range cases {
		if got := BuildPath(tc.in...); got != tc.want {
			t.Errorf("BuildPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPermalinks(t *testing.T) {
	d := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	if got := PostPath(d, "hello"); got != "/2024/05/hello/" {
		t.Fatalf("PostPath = %s", got)
	}
	if got := PagePath("about"); got != "/about/" {
		t.Fatalf("PagePath = %s", got)
	}
}
