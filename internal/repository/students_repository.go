package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/embedtext"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/pipeline"
)

// StudentsRepository handles data access for the students table.
type StudentsRepository struct {
	db *pgxpool.Pool
}

// NewStudentsRepository creates a new students repository.
func NewStudentsRepository(db *pgxpool.Pool) *StudentsRepository {
	return &StudentsRepository{db: db}
}

// Kind identifies this repository's entity table.
func (r *StudentsRepository) Kind() models.EntityKind {
	return models.KindStudents
}

const studentColumns = `id, name, branch_field, course_name, university,
	skills, experience, projects, certificates, trainings, embedding`

// scanStudent reads one student row. experience is a jsonb column.
func scanStudent(row pgx.Row) (*models.Student, error) {
	var (
		s             models.Student
		experienceRaw []byte
		emb           nullableEmbedding
	)

	err := row.Scan(&s.ID, &s.Name, &s.BranchField, &s.CourseName, &s.University,
		&s.Skills, &experienceRaw, &s.Projects, &s.Certificates, &s.Trainings, &emb)
	if err != nil {
		return nil, err
	}

	if len(experienceRaw) > 0 {
		if err := json.Unmarshal(experienceRaw, &s.Experience); err != nil {
			return nil, fmt.Errorf("decode student experience: %w", err)
		}
	}

	s.Embedding = emb

	return &s, nil
}

// GetByID retrieves a single student by ID.
func (r *StudentsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1 AND status = 'active' AND deleted_at IS NULL`, id)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("student", "")
		}

		return nil, fmt.Errorf("get student: %w", err)
	}

	return student, nil
}

// ListMissingEmbedding returns active, non-deleted students without an
// embedding, with their normalized profile text already built.
func (r *StudentsRepository) ListMissingEmbedding(ctx context.Context) ([]pipeline.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE status = 'active' AND deleted_at IS NULL AND embedding IS NULL
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list students missing embedding: %w", err)
	}
	defer rows.Close()

	var candidates []pipeline.Candidate

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}

		candidates = append(candidates, pipeline.Candidate{
			ID:   student.ID,
			Text: embedtext.BuildStudentText(student),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}

	return candidates, nil
}

// UpdateEmbedding persists the vector for one student.
func (r *StudentsRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE students SET embedding = $2, updated_at = now() WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("update student embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("student", "")
	}

	return nil
}

// Coverage counts eligible students and how many already have an embedding.
func (r *StudentsRepository) Coverage(ctx context.Context) (models.Coverage, error) {
	var cov models.Coverage

	err := r.db.QueryRow(ctx, `
		SELECT count(*), count(embedding)
		FROM students
		WHERE status = 'active' AND deleted_at IS NULL`,
	).Scan(&cov.Total, &cov.Embedded)
	if err != nil {
		return models.Coverage{}, fmt.Errorf("student coverage: %w", err)
	}

	cov.NotEmbedded = cov.Total - cov.Embedded

	return cov, nil
}
