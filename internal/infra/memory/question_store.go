package memory

import (
	"context"
	"strings"

	"quiz-arena-service/internal/domain"
)

// QuestionStore serves static question content from memory (useful for
// tests and demos, mirroring the postgres store's read contract).
type QuestionStore struct {
	categories map[string]domain.Category
	questions  []domain.Question
}

func NewQuestionStore(categories []domain.Category, questions []domain.Question) *QuestionStore {
	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return &QuestionStore{categories: byID, questions: questions}
}

func (s *QuestionStore) FindActive(_ context.Context, id string) (domain.Category, error) {
	category, ok := s.categories[id]
	if !ok || !category.Active {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (s *QuestionStore) ListActive(_ context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if f.ActiveOnly && !q.Active {
			continue
		}
		if f.CategoryID != "" && q.CategoryID != f.CategoryID {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, q)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (s *QuestionStore) FindByIDs(_ context.Context, ids []string) ([]domain.Question, error) {
	byID := make(map[string]domain.Question, len(s.questions))
	for _, q := range s.questions {
		byID[q.ID] = q
	}
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *QuestionStore) CategoriesWithQuestions(_ context.Context, minQuestions int) ([]domain.Category, error) {
	counts := make(map[string]int)
	for _, q := range s.questions {
		if q.Active {
			counts[q.CategoryID]++
		}
	}
	out := make([]domain.Category, 0)
	for id, n := range counts {
		category, ok := s.categories[id]
		if ok && category.Active && n >= minQuestions {
			out = append(out, category)
		}
	}
	return out, nil
}
