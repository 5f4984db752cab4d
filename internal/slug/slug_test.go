package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerate exercises the slug generator with a broad range of inputs
// covering typical titles, special characters, unicode, edge cases, and
// boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "title with year",
			input: "Hello World 2026",
			want:  "hello-world-2026",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "single word",
			input: "GoLang",
			want:  "golang",
		},
		{
			name:  "mixed case sentence",
			input: "The Quick Brown Fox Jumps Over the Lazy Dog",
			want:  "the-quick-brown-fox-jumps-over-the-lazy-dog",
		},

		// --- Special characters ---
		{
			name:  "punctuation marks",
			input: "Hello, World! How's it going?",
			want:  "hello-world-hows-it-going",
		},
		{
			name:  "ampersand and at sign",
			input: "Rock & Roll @ the Arena",
			want:  "rock-roll-the-arena",
		},
		{
			name:  "parentheses and brackets",
			input: "Version (2.0) [Beta]",
			want:  "version-20-beta",
		},
		{
			name:  "slashes and pipes",
			input: "Frontend/Backend | Full Stack",
			want:  "frontendbackend-full-stack",
		},
		{
			name:  "hash and dollar",
			input: "Issue #42 costs $100",
			want:  "issue-42-costs-100",
		},
		{
			name:  "plus and equals",
			input: "1 + 1 = 2",
			want:  "1-1-2",
		},

		// --- Unicode and accented characters ---
		{
			name:  "accented latin characters",
			input: "Cafe Resume Noel",
			want:  "cafe-resume-noel",
		},
		{
			name:  "french accents stripped",
			input: "Les Miserables a la carte",
			want:  "les-miserables-a-la-carte",
		},
		{
			name:  "german umlauts stripped",
			input: "Uber die Brucke",
			want:  "uber-die-brucke",
		},
		{
			name:  "emoji stripped",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "chinese characters stripped",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "only unicode chars",
			input: "Cliches",
			want:  "cliches",
		},

		// --- Whitespace handling ---
		{
			name:  "leading spaces",
			input: "   hello world",
			want:  "hello-world",
		},
		{
			name:  "trailing spaces",
			input: "hello world   ",
			want:  "hello-world",
		},
		{
			name:  "leading and trailing spaces",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "multiple consecutive spaces collapsed",
			input: "hello    world",
			want:  "hello-world",
		},
		{
			name:  "tab becomes hyphen",
			input: "hello\tworld",
			want:  "hello-world",
		},
		{
			name:  "newline becomes hyphen",
			input: "hello\nworld",
			want:  "hello-world",
		},

		// --- Hyphen handling ---
		{
			name:  "leading hyphens",
			input: "---hello world",
			want:  "hello-world",
		},
		{
			name:  "trailing hyphens",
			input: "hello world---",
			want:  "hello-world",
		},
		{
			name:  "multiple hyphens between words",
			input: "hello---world",
			want:  "hello-world",
		},
		{
			name:  "single hyphen preserved",
			input: "well-known fact",
			want:  "well-known-fact",
		},
		{
			name:  "hyphens and spaces mixed",
			input: "  --hello -- world--  ",
			want:  "hello-world",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "",
		},
		{
			name:  "only hyphens",
			input: "-----",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "single character",
			input: "A",
			want:  "a",
		},
		{
			name:  "single number",
			input: "5",
			want:  "5",
		},
		{
			name:  "single hyphen",
			input: "-",
			want:  "",
		},
		{
			name:  "single space",
			input: " ",
			want:  "",
		},

		// --- Numbers ---
		{
			name:  "all numbers",
			input: "123456",
			want:  "123456",
		},
		{
			name:  "numbers with spaces",
			input: "12 34 56",
			want:  "12-34-56",
		},
		{
			name:  "version number",
			input: "Version 2.0.1",
			want:  "version-201",
		},
		{
			name:  "date-like string",
			input: "2026-02-25",
			want:  "2026-02-25",
		},
		{
			name:  "mixed words and numbers",
			input: "Chapter 3 Section 14",
			want:  "chapter-3-section-14",
		},

		// --- Long strings ---
		{
			name:  "very long title",
			input: "This is a very long title that goes on and on and on and on and might be used as a blog post title by someone who really likes long titles and does not care about brevity at all",
			want:  "this-is-a-very-long-title-that-goes-on-and-on-and-on-and-on-and-might-be-used-as-a-blog-post-title-by-someone-who-really-likes-long-titles-and-does-not-care-about-brevity-at-all",
		},

		// --- Realistic catalog titles ---
		{
			name:  "service title",
			input: "Virus & Malware Removal",
			want:  "virus-malware-removal",
		},
		{
			name:  "hyphenated brand",
			input: "Wi-Fi Setup",
			want:  "wi-fi-setup",
		},
		{
			name:  "ampersand without spaces",
			input: "A&B Repairs",
			want:  "ab-repairs",
		},
		{
			name:  "mixed whitespace runs",
			input: " Printer \t\n Setup ",
			want:  "printer-setup",
		},
		{
			name:  "city with period",
			input: "St. Louis",
			want:  "st-louis",
		},
		{
			name:  "accented city name",
			input: "Montr\u00e9al",
			want:  "montral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input), "Generate(%q)", tt.input)
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"laptop-screen-repair-2026",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			assert.Equal(t, s, Generate(s))
		})
	}
}

// TestGenerate_ConsistentCase verifies that slugs are always lowercase
// regardless of input casing.
func TestGenerate_ConsistentCase(t *testing.T) {
	inputs := []string{
		"HELLO WORLD",
		"Hello World",
		"hElLo WoRlD",
		"hello world",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, "hello-world", Generate(input))
		})
	}
}

// TestGenerate_IdempotentOnArbitraryInput verifies Generate(Generate(s)) ==
// Generate(s) for inputs that are not slugs yet.
func TestGenerate_IdempotentOnArbitraryInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"A & B",
		"--Leading and trailing--",
		"Caf\u00e9 <Repair> \"Deluxe\"",
		"100% Uptime!!!",
		"\u00a0non-breaking\u00a0space\u2003em",
		"x--y__z",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := Generate(input)
			assert.Equal(t, once, Generate(once), "Generate not idempotent for %q", input)
		})
	}
}

func TestRegistryClaim(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		input       string
		want        string
		wantChanged bool
	}{
		{input: "WiFi Setup", want: "wifi-setup", wantChanged: false},
		{input: "WiFi Setup!", want: "wifi-setup-2", wantChanged: true},
		{input: "wifi  setup", want: "wifi-setup-3", wantChanged: true},
		{input: "Wi-Fi Setup", want: "wi-fi-setup", wantChanged: false},
		{input: "", want: "untitled", wantChanged: true},
		{input: "!!!", want: "untitled-2", wantChanged: true},
		{input: "Untitled", want: "untitled-3", wantChanged: true},
	}

	for _, tt := range tests {
		got, changed := r.Claim(tt.input)
		assert.Equal(t, tt.want, got, "Claim(%q)", tt.input)
		assert.Equal(t, tt.wantChanged, changed, "Claim(%q) changed", tt.input)
	}
}

// TestRegistryClaim_SkipsNaturalSuffix verifies that a suffix already taken
// by a natural slug is not handed out twice.
func TestRegistryClaim_SkipsNaturalSuffix(t *testing.T) {
	r := NewRegistry()

	r.Claim("Data Recovery 2")
	r.Claim("Data Recovery")

	got, _ := r.Claim("data recovery")
	assert.Equal(t, "data-recovery-3", got)

	// The suffixed slug is now taken like any natural one.
	got, changed := r.Claim("Data Recovery 3")
	assert.Equal(t, "data-recovery-3-2", got)
	assert.True(t, changed)
}

func TestRegistry_IndependentCollections(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	got, _ := a.Claim("Springfield")
	assert.Equal(t, "springfield", got, "first registry")
	got, _ = b.Claim("Springfield")
	assert.Equal(t, "springfield", got, "second registry should not see first registry's slugs")
}
