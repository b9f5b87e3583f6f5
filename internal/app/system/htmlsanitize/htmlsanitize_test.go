package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/instructorsearch/internal/app/system/htmlsanitize"
)

func TestStripTags_Empty(t *testing.T) {
	if got := htmlsanitize.StripTags(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestStripTags_PlainText(t *testing.T) {
	input := "Amy Lee"
	if got := htmlsanitize.StripTags(input); got != input {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestStripTags_RemovesMarkup(t *testing.T) {
	if got := htmlsanitize.StripTags("<b>Amy</b> <i>Lee</i>"); got != "Amy Lee" {
		t.Errorf("expected tags removed, got %q", got)
	}
}

func TestStripTags_RemovesScript(t *testing.T) {
	if got := htmlsanitize.StripTags("<script>alert('xss')</script>Bob"); got != "Bob" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestStripTags_KeepsSpecialCharacters(t *testing.T) {
	tests := []string{
		"Tom & Jerry",
		"O'Brien",
		`Ann "Annie" Smith`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if got := htmlsanitize.StripTags(input); got != input {
				t.Errorf("StripTags(%q) = %q, want unchanged", input, got)
			}
		})
	}
}

func TestIsHTMLSanitized(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"Co-owner", false},
		{"Tom & Jerry", false},
		{"Tom &amp; Jerry", true},
		{"&lt;b&gt;", true},
		{"Co&#x2f;owner", true},
		{"O&#39;Brien", true},
		{"&quot;quoted&quot;", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := htmlsanitize.IsHTMLSanitized(tt.input); got != tt.want {
				t.Errorf("IsHTMLSanitized(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDesanitizeIfHTMLSanitized(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value unchanged", "Co-owner", "Co-owner"},
		{"empty", "", ""},
		{"slash", "Co&#x2f;owner", "Co/owner"},
		{"apostrophe", "Tutor&#39;s aide", "Tutor's aide"},
		{"angle brackets", "&lt;Custom&gt;", "<Custom>"},
		{"quotes", "&quot;Manager&quot;", `"Manager"`},
		{"ampersand", "Tom &amp; Jerry", "Tom & Jerry"},
		{"escaped entity text stays literal", "&amp;lt;", "&lt;"},
		{"unknown entity untouched", "caf&eacute;", "caf&eacute;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.DesanitizeIfHTMLSanitized(tt.input); got != tt.want {
				t.Errorf("DesanitizeIfHTMLSanitized(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
