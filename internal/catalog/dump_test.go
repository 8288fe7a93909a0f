package catalog

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/spigell/job-portal/internal/portal"
)

func TestDumpToTmpFile(t *testing.T) {
	jobs := []Job{
		{JobPosting: portal.JobPosting{ID: "1", Title: "Backend Engineer"}, Match: &portal.MatchResult{Score: 82}},
		{JobPosting: portal.JobPosting{ID: "2", Title: "Designer"}},
	}

	name, err := DumpToTmpFile(jobs)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(decoded))
	}
	if decoded[0]["jobTitle"] != "Backend Engineer" {
		t.Fatalf("expected embedded posting fields, got %v", decoded[0])
	}
	match, ok := decoded[0]["matchResult"].(map[string]any)
	if !ok || match["match_score"] != float64(82) {
		t.Fatalf("expected match in dump, got %v", decoded[0]["matchResult"])
	}
	if decoded[1]["matchResult"] != nil {
		t.Fatalf("expected null match for unmatched job")
	}
}
