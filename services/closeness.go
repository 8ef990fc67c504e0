package services

import (
	"math"
	"time"

	"github.com/luvfam/familing/store"
)

// closenessWindow is the trailing participation window.
const closenessWindow = 30 * 24 * time.Hour

// Closeness is one member's participation standing within their family.
type Closeness struct {
	Percentage     int `json:"percentage"`
	MyCount        int `json:"my_count"`
	FamilyMaxCount int `json:"family_max_count"`
	Rank           int `json:"rank"`
}

// Ranker computes participation rankings from answer aggregates.
type Ranker struct {
	answers store.AnswerStore
}

// NewRanker creates a Ranker over the given answer store.
func NewRanker(answers store.AnswerStore) *Ranker {
	return &Ranker{answers: answers}
}

// Closeness ranks the user against their family over the trailing 30 days.
// Ties use dense ranking: members with equal counts share a rank and the next
// distinct count takes rank+1, so counts {5, 5, 2} rank {1, 1, 2}.
func (r *Ranker) Closeness(userID, familyID uint, now time.Time) (*Closeness, error) {
	from := now.Add(-closenessWindow)

	counts, err := r.answers.CountSinceGroupedByFamily(familyID, from)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, ErrNoFamilyActivity
	}

	myCount := 0
	for _, mc := range counts {
		if mc.UserID == userID {
			myCount = mc.Count
			break
		}
	}
	if myCount == 0 {
		return nil, ErrNoParticipation
	}

	// counts arrive ordered descending; walk until the first equal value.
	maxCount := counts[0].Count
	rank := 0
	prev := -1
	for _, mc := range counts {
		if mc.Count != prev {
			rank++
			prev = mc.Count
		}
		if mc.Count == myCount {
			break
		}
	}

	return &Closeness{
		Percentage:     int(math.Round(float64(myCount) / float64(maxCount) * 100)),
		MyCount:        myCount,
		FamilyMaxCount: maxCount,
		Rank:           rank,
	}, nil
}
