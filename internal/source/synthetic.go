package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"leadscout/internal/textutil"
	"leadscout/models"
)

const (
	// DefaultSyntheticCount is the batch size when no limit is given.
	DefaultSyntheticCount = 10

	issueProbability     = 0.6
	complaintProbability = 0.5
)

// Synthetic generates plausible candidates for environments without a live
// provider. All randomness comes from the injected source.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a generator. A nil rng is replaced by a time-seeded one.
func NewSynthetic(rng *rand.Rand) *Synthetic {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synthetic{rng: rng}
}

// Fetch implements Adapter. It never fails.
func (s *Synthetic) Fetch(_ context.Context, businessType, location string, limit int) (Batch, error) {
	return Batch{
		Source:     models.DataSourceSynthetic,
		Candidates: s.Generate(businessType, location, limit),
	}, nil
}

// Generate returns count candidates sorted by ascending rating.
func (s *Synthetic) Generate(businessType, location string, count int) []models.BusinessCandidate {
	if count <= 0 {
		count = DefaultSyntheticCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.BusinessCandidate, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.candidate(businessType, location))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Rating < *out[j].Rating
	})
	return out
}

func (s *Synthetic) candidate(businessType, location string) models.BusinessCandidate {
	reviewCount := s.intBetween(5, 50)
	hasIssues := s.rng.Float64() < issueProbability
	shown := min(reviewCount, s.intBetween(3, 8))

	reviews := make([]models.ReviewSnippet, 0, shown)
	total := 0
	for j := 0; j < shown; j++ {
		complaint := hasIssues && s.rng.Float64() < complaintProbability
		var text string
		var rating int
		if complaint {
			text = s.pick(complaintReviews)
			rating = s.intBetween(1, 3)
		} else {
			text = s.pick(praiseReviews)
			rating = s.intBetween(4, 5)
		}
		author := fmt.Sprintf("%s %s.", s.pick(firstNames), s.pick(lastNames)[:1])
		total += rating
		reviews = append(reviews, models.ReviewSnippet{Text: text, Rating: &rating, AuthorName: &author})
	}

	avg := float64(total) / float64(len(reviews))
	rating := math.Round(avg*10) / 10

	name := s.businessName(businessType)
	address := fmt.Sprintf("%d %s, %s", s.intBetween(100, 9999), s.pick(streetNames), location)
	phone := fmt.Sprintf("(%d) %d-%d", s.intBetween(200, 999), s.intBetween(200, 999), s.intBetween(1000, 9999))
	website := "https://www." + textutil.Slug(name) + ".com"

	return models.BusinessCandidate{
		Name:        name,
		Address:     &address,
		Phone:       &phone,
		Website:     &website,
		Rating:      &rating,
		ReviewCount: reviewCount,
		Reviews:     reviews,
	}
}

func (s *Synthetic) businessName(businessType string) string {
	t := textutil.Capitalize(businessType)
	switch s.rng.Intn(5) {
	case 0:
		return fmt.Sprintf("%s's %s Services", s.pick(lastNames), t)
	case 1:
		return fmt.Sprintf("%s %s %s", s.pick(firstNames), s.pick(lastNames), t)
	case 2:
		return fmt.Sprintf("%s Pro %s", t, s.pick(proSuffixes))
	case 3:
		return fmt.Sprintf("%s %s", s.pick(qualityPrefixes), t)
	default:
		return fmt.Sprintf("%s %s Service", s.pick(gradePrefixes), t)
	}
}

func (s *Synthetic) pick(items []string) string {
	return items[s.rng.Intn(len(items))]
}

// intBetween returns a value in [lo, hi].
func (s *Synthetic) intBetween(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}
