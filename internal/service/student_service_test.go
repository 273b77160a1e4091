package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[int64]models.Student
	exists     bool
	createErr  error
	lastFilter models.StudentFilter
	lastAudit  *models.AuditLog
	listTotal  int
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	list := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		list = append(list, s)
	}
	return list, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByNumberOrEmail(ctx context.Context, number, email string) (bool, error) {
	return m.exists, nil
}

func (m *mockStudentRepo) CreateWithAudit(ctx context.Context, student *models.Student, entry *models.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.students == nil {
		m.students = make(map[int64]models.Student)
	}
	student.ID = int64(len(m.students) + 1)
	m.students[student.ID] = *student
	m.lastAudit = entry
	return nil
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, &mockEnrolmentRepo{}, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		StudentNumber: " S000003 ",
		FirstName:     "Priya",
		LastName:      "Shah",
		Email:         "priya.shah@example.test",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)
	assert.Equal(t, "S000003", student.StudentNumber)

	require.NotNil(t, repo.lastAudit)
	assert.Equal(t, models.AuditActionCreate, repo.lastAudit.Action)
	assert.Equal(t, models.AuditEntityStudent, repo.lastAudit.EntityType)
	assert.Equal(t, "S000003", repo.lastAudit.EntityID)
	assert.Equal(t, "Priya Shah registered", repo.lastAudit.Details)
	assert.Equal(t, models.DefaultActor, repo.lastAudit.Actor)
}

func TestStudentServiceCreateDuplicate(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{exists: true}, &mockEnrolmentRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{StudentNumber: "S1", FirstName: "A", LastName: "B", Email: "a@b.test"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceCreateDuplicateRace(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{createErr: repository.ErrDuplicateKey}, &mockEnrolmentRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{StudentNumber: "S1", FirstName: "A", LastName: "B", Email: "a@b.test"}, "")
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, &mockEnrolmentRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{StudentNumber: "S1", FirstName: "A", LastName: "B", Email: "not-an-email"}, "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "must be a valid email address", appErr.Details["email"])
}

func TestStudentServiceList(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1}}, listTotal: 41}
	svc := NewStudentService(repo, &mockEnrolmentRepo{}, nil, zap.NewNop())

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Search: "khan", Page: 3})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, "khan", repo.lastFilter.Search)
	assert.Equal(t, &models.Pagination{Page: 3, PageSize: 20, TotalCount: 41}, pagination)
}

func TestStudentServiceGet(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]models.Student{1: {ID: 1, StudentNumber: "S000001"}}}
	enrolments := &mockEnrolmentRepo{listing: []models.EnrolmentDetail{{CourseCode: "ITFND"}}}
	svc := NewStudentService(repo, enrolments, nil, zap.NewNop())

	detail, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "S000001", detail.StudentNumber)
	require.Len(t, detail.Enrolments, 1)
	assert.Equal(t, "ITFND", detail.Enrolments[0].CourseCode)

	_, err = svc.Get(context.Background(), 2)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
