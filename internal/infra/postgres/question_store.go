package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-arena-service/internal/domain"
)

// QuestionStore is the read-only question/category collaborator backed by
// pgx. Every filter value travels as a bind parameter; nothing caller
// controlled is interpolated into query text.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

const questionColumns = `id, category_id, text, options, correct_answer, explanation, points, time_limit_seconds, difficulty, active`

func (s *QuestionStore) FindActive(ctx context.Context, id string) (domain.Category, error) {
	var category domain.Category
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, active FROM categories WHERE id = $1 AND active`,
		id,
	).Scan(&category.ID, &category.Name, &category.Active)
	if err == pgx.ErrNoRows {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (s *QuestionStore) ListActive(ctx context.Context, f domain.QuestionFilter) ([]domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE 1=1`
	args := make([]interface{}, 0, 5)

	if f.ActiveOnly {
		query += ` AND active`
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if f.Difficulty != "" {
		args = append(args, string(f.Difficulty))
		query += fmt.Sprintf(` AND difficulty = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND text ILIKE $%d`, len(args))
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (s *QuestionStore) FindByIDs(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select questions by id: %w", err)
	}
	defer rows.Close()

	fetched, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Question, len(fetched))
	for _, q := range fetched {
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

func (s *QuestionStore) CategoriesWithQuestions(ctx context.Context, minQuestions int) ([]domain.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.active
		FROM categories c
		JOIN questions q ON q.category_id = c.id AND q.active
		WHERE c.active
		GROUP BY c.id, c.name, c.active
		HAVING COUNT(*) >= $1
		ORDER BY c.id`,
		minQuestions,
	)
	if err != nil {
		return nil, fmt.Errorf("list eligible categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var rawOptions []byte
		err := rows.Scan(
			&q.ID, &q.CategoryID, &q.Text, &rawOptions,
			&q.CorrectAnswer, &q.Explanation, &q.Points,
			&q.TimeLimitSeconds, &q.Difficulty, &q.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(rawOptions) > 0 {
			if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
				return nil, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
