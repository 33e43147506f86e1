package docs

import (
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	topics := Topics()
	if len(topics) < 3 {
		t.Fatalf("expected embedded topics, got %v", topics)
	}
	for i, tp := range topics {
		if tp.Title == "" {
			t.Fatalf("topic %q has no title", tp.Name)
		}
		if i > 0 && topics[i-1].Name >= tp.Name {
			t.Fatalf("topics not sorted: %v", topics)
		}
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Links ")
	if !ok || !strings.Contains(body, "`content`") {
		t.Fatalf("expected links topic, got ok=%v", ok)
	}
	for _, bad := range []string{"", "nope", "../docs", `content\links`} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should miss", bad)
		}
	}
}
