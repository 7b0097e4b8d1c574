package stat

import (
	"github.com/revelaction/phascan/pipeline"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumApps         int
	NumDescriptions int
	NumPhrases      int
	NumFailures     int

	PhrasesPerAppMean float64

	// Categories counts applications per category, including
	// uncategorized and no evidence.
	Categories map[string]int

	FailuresByKind map[pipeline.Kind]int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{
		Categories:     map[string]int{},
		FailuresByKind: map[pipeline.Kind]int{},
	}
	return &Handler{
		stats: stats,
	}
}

func (h *Handler) Aggregate(r pipeline.Report) {
	h.stats.NumApps++
	h.stats.NumDescriptions += len(r.Descriptions)
	h.stats.NumPhrases += len(r.Phrases)
	h.stats.Categories[r.Category]++

	for _, f := range r.Failures {
		h.stats.NumFailures++
		h.stats.FailuresByKind[f.Kind]++
	}

	h.stats.PhrasesPerAppMean = float64(h.stats.NumPhrases) / float64(h.stats.NumApps)
}
