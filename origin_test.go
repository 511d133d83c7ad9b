package dispatch

import "testing"

func TestPriorityScore(t *testing.T) {
	request := Origin{Group: "toolbox", Path: "toolbox/v1/queries"}

	tests := []struct {
		name      string
		candidate Origin
		want      int
	}{
		{"same group and namespace", Origin{Group: "toolbox", Path: "toolbox/v1/queries"}, 7},
		{"same group parent namespace", Origin{Group: "toolbox", Path: "toolbox/v1"}, 7},
		{"same group nested namespace", Origin{Group: "toolbox", Path: "toolbox/v1/queries/internal"}, 4},
		{"same group inner segment", Origin{Group: "toolbox", Path: "v1/queries"}, 5},
		{"other group parent namespace", Origin{Group: "shared", Path: "toolbox"}, 3},
		{"other group inner segment", Origin{Group: "shared", Path: "queries"}, 1},
		{"unrelated", Origin{Group: "shared", Path: "audit"}, 0},
		{"empty path", Origin{Group: "shared"}, 3},
		{"no origin", Origin{}, 3},
		{"same group empty path ties best match", Origin{Group: "toolbox"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriorityScore(request, tt.candidate); got != tt.want {
				t.Errorf("Expected score %d, got %d", tt.want, got)
			}
		})
	}
}

func TestPriorityScoreGroupMatchMinimum(t *testing.T) {
	request := Origin{Group: "toolbox", Path: "toolbox/v1"}

	if got := PriorityScore(request, Origin{Group: "toolbox", Path: "billing"}); got != 4 {
		t.Errorf("Expected score 4, got %d", got)
	}
	if got := PriorityScore(request, Origin{Group: "toolbox", Path: "toolbox"}); got != 7 {
		t.Errorf("Expected score 7, got %d", got)
	}
}

func TestSortByPriorityIsStable(t *testing.T) {
	request := Origin{Group: "toolbox", Path: "toolbox/v1"}
	entries := []Entry{
		{Instance: "a", Origin: Origin{Group: "other", Path: "audit"}},
		{Instance: "b", Origin: Origin{Group: "toolbox", Path: "toolbox"}},
		{Instance: "c", Origin: Origin{Group: "other", Path: "audit"}},
		{Instance: "d", Origin: Origin{Group: "toolbox", Path: "toolbox/v1"}},
		{Instance: "e", Origin: Origin{Group: "toolbox", Path: "reports"}},
	}

	sorted := sortByPriority(request, entries, PriorityScore)

	want := []string{"b", "d", "e", "a", "c"}
	if len(sorted) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(sorted))
	}
	for i, w := range want {
		if sorted[i].Instance != w {
			t.Errorf("Expected entry %d to be %q, got %v", i, w, sorted[i].Instance)
		}
	}
	if entries[0].Instance != "a" || entries[1].Instance != "b" {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestSortByPriorityCustomScorer(t *testing.T) {
	entries := []Entry{
		{Instance: "low", Origin: Origin{Path: "1"}},
		{Instance: "high", Origin: Origin{Path: "9"}},
	}
	byPath := func(_, candidate Origin) int {
		return int(candidate.Path[0] - '0')
	}

	sorted := sortByPriority(Origin{}, entries, byPath)

	if sorted[0].Instance != "high" {
		t.Errorf("Expected custom scorer to put %q first, got %v", "high", sorted[0].Instance)
	}
}
