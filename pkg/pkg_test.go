package pkg

import (
	"os"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "simpleproc"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	if Description == "" {
		t.Error("Expected Description to be non-empty")
	}
}

func TestVersion(t *testing.T) {
	// Tests run in the package directory, next to the embedded file.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain %q, %q", "ardnew", "andrew@ardnew.com")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}
