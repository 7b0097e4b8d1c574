package stat

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/revelaction/phascan/category"
	"github.com/revelaction/phascan/pipeline"
)

func TestAggregate(t *testing.T) {
	h := NewHandler()

	h.Aggregate(pipeline.Report{
		Category:     "auto_click",
		Descriptions: []string{"a", "b"},
		Phrases:      []string{"click button", "tap screen", "open app"},
		Failures:     []pipeline.Failure{{Index: 1, Kind: pipeline.KindTranslation}},
	})
	h.Aggregate(pipeline.Report{Category: category.NoEvidence})
	h.Aggregate(pipeline.Report{
		Category:     "auto_click",
		Descriptions: []string{"c"},
		Phrases:      []string{"click"},
	})

	s := h.Get()

	if s.NumApps != 3 {
		t.Errorf("expected 3 apps, got %d", s.NumApps)
	}

	if s.NumDescriptions != 3 {
		t.Errorf("expected 3 descriptions, got %d", s.NumDescriptions)
	}

	want := map[string]int{"auto_click": 2, category.NoEvidence: 1}
	if diff := cmp.Diff(want, s.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if s.NumFailures != 1 || s.FailuresByKind[pipeline.KindTranslation] != 1 {
		t.Errorf("unexpected failures %d %v", s.NumFailures, s.FailuresByKind)
	}

	if s.PhrasesPerAppMean < 1.33 || s.PhrasesPerAppMean > 1.34 {
		t.Errorf("expected 1.33 phrases per app, got %f", s.PhrasesPerAppMean)
	}
}

func TestEmpty(t *testing.T) {
	s := NewHandler().Get()
	if s.NumApps != 0 || s.PhrasesPerAppMean != 0 {
		t.Fatalf("expected empty stats, got %+v", s)
	}
}
