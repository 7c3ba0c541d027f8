package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rareminds/skillhub/internal/apperrors"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/recommend"
)

type mockStudentStore struct {
	student   *models.Student
	getErr    error
	updates   int
	updateErr error
}

func (m *mockStudentStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Student, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	return m.student, nil
}

func (m *mockStudentStore) UpdateEmbedding(_ context.Context, _ uuid.UUID, _ []float32) error {
	m.updates++

	return m.updateErr
}

type mockLister struct {
	candidates []recommend.Candidate
	err        error
	calls      int
}

func (m *mockLister) ListEmbedded(_ context.Context) ([]recommend.Candidate, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	return m.candidates, nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	return m.vec, nil
}

const testDimensions = 3

func newTestService(t *testing.T, students *mockStudentStore, courses *mockLister, embedder *mockEmbedder) *RecommendationService {
	t.Helper()

	cache, err := lru.New[string, []float32](16)
	require.NoError(t, err)

	return NewRecommendationService(RecommendationServiceParams{
		Students:     students,
		Courses:      courses,
		Embedder:     embedder,
		Engine:       recommend.NewEngine(testDimensions, nil),
		Dimensions:   testDimensions,
		ProfileCache: cache,
	})
}

func profileStudent(embedding []float32) *models.Student {
	return &models.Student{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      "Asha",
		Skills:    []string{"Go"},
		Embedding: embedding,
	}
}

func coursePool() []recommend.Candidate {
	return []recommend.Candidate{
		{ID: uuid.Must(uuid.NewV7()), Title: "Go Fundamentals", Embedding: []float32{1, 0, 0}},
	}
}

func TestRecommendationService_RecommendForStudent_storedEmbedding(t *testing.T) {
	students := &mockStudentStore{student: profileStudent([]float32{1, 0, 0})}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Go Fundamentals", recs[0].Title)

	// The stored vector is used as-is.
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, students.updates)
}

func TestRecommendationService_RecommendForStudent_embedsOnDemandAndPersists(t *testing.T) {
	students := &mockStudentStore{student: profileStudent(nil)}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{vec: []float32{1, 0, 0}}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, students.updates)
}

func TestRecommendationService_RecommendForStudent_cachesProfileEmbedding(t *testing.T) {
	students := &mockStudentStore{student: profileStudent(nil)}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{vec: []float32{1, 0, 0}}

	svc := newTestService(t, students, courses, embedder)

	_, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)
	require.NoError(t, err)

	_, err = svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)
	require.NoError(t, err)

	// Same profile text hits the cache on the second call.
	assert.Equal(t, 1, embedder.calls)
}

func TestRecommendationService_RecommendForStudent_normalizesProviderVector(t *testing.T) {
	students := &mockStudentStore{student: profileStudent(nil)}
	courses := &mockLister{candidates: coursePool()}

	// Provider emits a longer vector than the configured dimension.
	embedder := &mockEmbedder{vec: []float32{1, 0, 0, 0.9, 0.8}}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendationService_RecommendForStudent_emptyProfileYieldsNoResults(t *testing.T) {
	students := &mockStudentStore{student: &models.Student{ID: uuid.Must(uuid.NewV7())}}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{vec: []float32{1, 0, 0}}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, courses.calls)
}

func TestRecommendationService_RecommendForStudent_providerFailureDegrades(t *testing.T) {
	students := &mockStudentStore{student: profileStudent(nil)}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{err: errors.New("provider down")}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendationService_RecommendForStudent_persistFailureStillRecommends(t *testing.T) {
	students := &mockStudentStore{
		student:   profileStudent(nil),
		updateErr: errors.New("connection reset"),
	}
	courses := &mockLister{candidates: coursePool()}
	embedder := &mockEmbedder{vec: []float32{1, 0, 0}}

	svc := newTestService(t, students, courses, embedder)

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecommendationService_RecommendForStudent_poolFailureDegrades(t *testing.T) {
	students := &mockStudentStore{student: profileStudent([]float32{1, 0, 0})}
	courses := &mockLister{err: errors.New("timeout")}

	svc := newTestService(t, students, courses, &mockEmbedder{})

	recs, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindCourses, nil, 10)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommendationService_RecommendForStudent_studentNotFound(t *testing.T) {
	students := &mockStudentStore{getErr: apperrors.NewNotFoundError("student", "")}
	courses := &mockLister{}

	svc := newTestService(t, students, courses, &mockEmbedder{})

	_, err := svc.RecommendForStudent(context.Background(),
		uuid.Must(uuid.NewV7()), models.KindCourses, nil, 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecommendationService_RecommendForStudent_unknownKind(t *testing.T) {
	students := &mockStudentStore{student: profileStudent([]float32{1, 0, 0})}

	svc := newTestService(t, students, &mockLister{}, &mockEmbedder{})

	_, err := svc.RecommendForStudent(context.Background(),
		students.student.ID, models.KindStudents, nil, 10)

	require.Error(t, err)
	assert.ErrorContains(t, err, "no recommendation pool")
}
