package services

import (
	"sort"
	"time"

	"github.com/luvfam/familing/models"
	"github.com/luvfam/familing/store"
)

// fakeTopicStore is an in-memory TopicStore mirroring the conditional-update
// semantics of the gorm implementation.
type fakeTopicStore struct {
	topics map[uint]*models.Topic
	nextID uint
}

func newFakeTopicStore() *fakeTopicStore {
	return &fakeTopicStore{topics: map[uint]*models.Topic{}, nextID: 1}
}

func (s *fakeTopicStore) Save(topic *models.Topic) error {
	if topic.ID == 0 {
		topic.ID = s.nextID
		s.nextID++
		topic.CreatedAt = time.Now()
	}
	cp := *topic
	s.topics[topic.ID] = &cp
	return nil
}

func (s *fakeTopicStore) FindByID(id uint) (*models.Topic, error) {
	t, ok := s.topics[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTopicStore) FindOldestDraft() (*models.Topic, error) {
	var oldest *models.Topic
	for _, t := range s.topics {
		if t.Status != models.TopicStatusDraft {
			continue
		}
		if oldest == nil || t.ID < oldest.ID {
			oldest = t
		}
	}
	if oldest == nil {
		return nil, store.ErrNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (s *fakeTopicStore) FindCurrentActive(now time.Time) (*models.Topic, error) {
	var matches []*models.Topic
	for _, t := range s.topics {
		if t.ActiveAt(now) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return nil, store.ErrNotFound
	case 1:
		cp := *matches[0]
		return &cp, nil
	default:
		return nil, store.ErrMultipleActive
	}
}

func (s *fakeTopicStore) Activate(id uint, from, until time.Time) (bool, error) {
	for _, t := range s.topics {
		if t.Status == models.TopicStatusActive && t.ActiveUntil != nil && t.ActiveUntil.After(from) {
			return false, nil
		}
	}
	t, ok := s.topics[id]
	if !ok || t.Status != models.TopicStatusDraft {
		return false, nil
	}
	t.Status = models.TopicStatusActive
	f, u := from, until
	t.ActiveFrom = &f
	t.ActiveUntil = &u
	return true, nil
}

func (s *fakeTopicStore) BulkExpire(now time.Time) (int64, error) {
	var count int64
	for _, t := range s.topics {
		if t.Status == models.TopicStatusActive && t.ActiveUntil != nil && !t.ActiveUntil.After(now) {
			t.Status = models.TopicStatusExpired
			count++
		}
	}
	return count, nil
}

func (s *fakeTopicStore) FindRecent(n int) ([]models.Topic, error) {
	ids := make([]uint, 0, len(s.topics))
	for id := range s.topics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > n {
		ids = ids[:n]
	}
	result := make([]models.Topic, 0, len(ids))
	for _, id := range ids {
		result = append(result, *s.topics[id])
	}
	return result, nil
}

func (s *fakeTopicStore) byStatus(status string) []models.Topic {
	var result []models.Topic
	for _, t := range s.topics {
		if t.Status == status {
			result = append(result, *t)
		}
	}
	return result
}

func (s *fakeTopicStore) activeCount() int {
	count := 0
	for _, t := range s.topics {
		if t.Status == models.TopicStatusActive {
			count++
		}
	}
	return count
}

type answerKey struct {
	topicID uint
	userID  uint
}

// fakeAnswerStore is an in-memory AnswerStore enforcing the (topic, user)
// uniqueness constraint the way the database does.
type fakeAnswerStore struct {
	answers map[answerKey]*models.Answer
	nextID  uint
	// when set, the next Create fails with ErrDuplicate to simulate losing
	// the insert race, and the racing row is materialized first
	raceOnce bool
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: map[answerKey]*models.Answer{}, nextID: 1}
}

func (s *fakeAnswerStore) FindByTopicAndUser(topicID, userID uint) (*models.Answer, error) {
	a, ok := s.answers[answerKey{topicID, userID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAnswerStore) Create(answer *models.Answer) error {
	key := answerKey{answer.TopicID, answer.UserID}
	if s.raceOnce {
		s.raceOnce = false
		racing := &models.Answer{
			ID:        s.nextID,
			TopicID:   answer.TopicID,
			UserID:    answer.UserID,
			FamilyID:  answer.FamilyID,
			Content:   "racing content",
			CreatedAt: time.Now(),
		}
		s.nextID++
		s.answers[key] = racing
		return store.ErrDuplicate
	}
	if _, exists := s.answers[key]; exists {
		return store.ErrDuplicate
	}
	answer.ID = s.nextID
	s.nextID++
	cp := *answer
	s.answers[key] = &cp
	return nil
}

func (s *fakeAnswerStore) UpdateContent(id uint, content string, now time.Time) error {
	for _, a := range s.answers {
		if a.ID == id {
			a.Content = content
			t := now
			a.UpdatedAt = &t
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeAnswerStore) CountSince(userID uint, from time.Time) (int, error) {
	count := 0
	for _, a := range s.answers {
		if a.UserID == userID && !a.CreatedAt.Before(from) {
			count++
		}
	}
	return count, nil
}

func (s *fakeAnswerStore) CountSinceGroupedByFamily(familyID uint, from time.Time) ([]store.MemberCount, error) {
	byUser := map[uint]int{}
	for _, a := range s.answers {
		if a.FamilyID == familyID && !a.CreatedAt.Before(from) {
			byUser[a.UserID]++
		}
	}
	counts := make([]store.MemberCount, 0, len(byUser))
	for userID, count := range byUser {
		counts = append(counts, store.MemberCount{UserID: userID, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts, nil
}

func (s *fakeAnswerStore) FindByTopicAndFamily(topicID, familyID uint) ([]models.Answer, error) {
	var result []models.Answer
	for _, a := range s.answers {
		if a.TopicID == topicID && a.FamilyID == familyID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *fakeAnswerStore) FindAllByFamily(familyID uint, limit int) ([]models.Answer, error) {
	var result []models.Answer
	for _, a := range s.answers {
		if a.FamilyID == familyID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TopicID > result[j].TopicID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
