package handlers

import (
	"fmt"
	"sort"

	"leadscout/models"
)

// Lead orderings accepted by the leads listing.
const (
	SortUrgencyDesc = "urgency-desc"
	SortUrgencyAsc  = "urgency-asc"
	SortRatingAsc   = "rating-asc"
	SortRatingDesc  = "rating-desc"
)

const filterAll = "all"

// LeadFilter narrows and orders the businesses of a search.
type LeadFilter struct {
	Urgency models.UrgencyBand // empty keeps every lead
	Problem string             // exact problem type, empty keeps every lead
	Sort    string
}

// ParseLeadFilter validates query values. Empty and "all" disable a filter;
// the default ordering is most urgent first.
func ParseLeadFilter(urgency, problem, order string) (LeadFilter, error) {
	f := LeadFilter{Sort: SortUrgencyDesc}

	switch band := models.UrgencyBand(urgency); band {
	case "", filterAll:
	case models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow:
		f.Urgency = band
	default:
		return LeadFilter{}, fmt.Errorf("invalid urgency filter %q", urgency)
	}

	if problem != filterAll {
		f.Problem = problem
	}

	switch order {
	case "":
	case SortUrgencyDesc, SortUrgencyAsc, SortRatingAsc, SortRatingDesc:
		f.Sort = order
	default:
		return LeadFilter{}, fmt.Errorf("invalid sort %q", order)
	}
	return f, nil
}

// Apply returns the matching businesses in the requested order. Missing
// scores and ratings sort as zero; ties keep insertion order.
func (f LeadFilter) Apply(businesses []models.Business) []models.Business {
	out := make([]models.Business, 0, len(businesses))
	for _, b := range businesses {
		if f.Urgency != "" && b.Analysis.Band() != f.Urgency {
			continue
		}
		if f.Problem != "" && (b.Analysis == nil || b.Analysis.ProblemType == nil || *b.Analysis.ProblemType != f.Problem) {
			continue
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case SortUrgencyAsc:
			return urgencyOf(out[i]) < urgencyOf(out[j])
		case SortRatingAsc:
			return ratingOf(out[i]) < ratingOf(out[j])
		case SortRatingDesc:
			return ratingOf(out[i]) > ratingOf(out[j])
		default:
			return urgencyOf(out[i]) > urgencyOf(out[j])
		}
	})
	return out
}

func urgencyOf(b models.Business) int {
	if b.Analysis == nil || b.Analysis.UrgencyScore == nil {
		return 0
	}
	return *b.Analysis.UrgencyScore
}

func ratingOf(b models.Business) float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}
