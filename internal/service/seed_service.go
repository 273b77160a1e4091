package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/noah-isme/college-enrolment-api/internal/models"
	"github.com/noah-isme/college-enrolment-api/internal/repository"
)

// SeedAcademicYear is the year of the seeded offerings.
const SeedAcademicYear = "2025/26"

// HistoricAcademicYears are the years of generated result history, oldest first.
var HistoricAcademicYears = []string{"2021/22", "2022/23", "2023/24", "2024/25"}

var (
	historicFirstNames = []string{"Amira", "Ben", "Chloe", "Daniel", "Ella", "Farhan", "Grace", "Harry", "Isla", "Jamal", "Keira", "Liam"}
	historicLastNames  = []string{"Ahmed", "Baker", "Clarke", "Davies", "Evans", "Fraser", "Green", "Hussain", "Iqbal", "Jones", "Khan", "Lewis"}
)

type courseCounter interface {
	Count(ctx context.Context) (int, error)
}

type seedWriter interface {
	Apply(ctx context.Context, data *repository.SeedDataset) error
}

// SeedService loads demo data into an empty database.
type SeedService struct {
	courses courseCounter
	writer  seedWriter
	cache   *CacheService
	logger  *zap.Logger
}

// NewSeedService constructs SeedService.
func NewSeedService(courses courseCounter, writer seedWriter, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{courses: courses, writer: writer, logger: logger}
}

// UseCache makes Seed purge analytics and capacity report entries computed before the data existed.
func (s *SeedService) UseCache(cache *CacheService) {
	s.cache = cache
}

// Seed writes the demo dataset unless courses already exist. It reports whether anything was written.
func (s *SeedService) Seed(ctx context.Context, rng *rand.Rand) (bool, error) {
	count, err := s.courses.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count courses: %w", err)
	}
	if count > 0 {
		s.logger.Info("database already seeded", zap.Int("courses", count))
		return false, nil
	}

	data := BuildSeedDataset(rng)
	if err := s.writer.Apply(ctx, data); err != nil {
		return false, err
	}
	for _, pattern := range []string{"analytics:*", capacityReportKey("*")} {
		_ = s.cache.InvalidatePattern(ctx, pattern)
	}
	s.logger.Info("database seeded",
		zap.Int("courses", len(data.Courses)),
		zap.Int("students", len(data.Students)),
		zap.Int("historic_results", len(data.Results)),
	)
	return true, nil
}

// BuildSeedDataset assembles the demo catalogue and draws result history from rng.
// The same generator state always yields the same dataset.
func BuildSeedDataset(rng *rand.Rand) *repository.SeedDataset {
	data := &repository.SeedDataset{
		Courses: []repository.SeedCourse{
			seedCourse("ITFND", "IT Fundamentals", "Level 2", 1, "09:00", "11:00", "Lab 1"),
			seedCourse("NET01", ".NET Web Development", "Level 3", 3, "13:00", "15:00", "Room 12"),
			seedCourse("CS101", "Intro to Programming", "Level 2", 5, "10:00", "12:00", "Lab 2"),
		},
		Students: []models.Student{
			{StudentNumber: "S000001", FirstName: "Aisha", LastName: "Khan", Email: "aisha.khan@example.test"},
			{StudentNumber: "S000002", FirstName: "Tom", LastName: "Brown", Email: "tom.brown@example.test"},
		},
		Enrolments: []repository.SeedEnrolment{
			{StudentIndex: 0, CourseIndex: 0},
			{StudentIndex: 0, CourseIndex: 1},
		},
		Audit: models.AuditLog{
			Actor:      "seed",
			Action:     models.AuditActionSeed,
			EntityType: models.AuditEntityDatabase,
			EntityID:   "CollegeEnrolmentDb",
			Details:    "Seeded initial demo data",
		},
	}

	for yearIndex, year := range HistoricAcademicYears {
		for courseIndex := range data.Courses {
			cohort := 12 + yearIndex*2 + rng.Intn(9)
			for i := 0; i < cohort; i++ {
				n := len(data.HistoricStudents) + 1
				data.HistoricStudents = append(data.HistoricStudents, models.Student{
					StudentNumber: fmt.Sprintf("H%06d", n),
					FirstName:     historicFirstNames[rng.Intn(len(historicFirstNames))],
					LastName:      historicLastNames[rng.Intn(len(historicLastNames))],
					Email:         fmt.Sprintf("historic.%06d@example.test", n),
				})

				attendance := math.Round((62+rng.Float64()*38)*10) / 10
				data.Results = append(data.Results, repository.SeedResult{
					StudentIndex:      n - 1,
					CourseIndex:       courseIndex,
					AcademicYear:      year,
					FinalGrade:        gradeForScore(attendance*0.6 + rng.Float64()*40),
					AttendancePercent: attendance,
				})
			}
		}
	}
	return data
}

func seedCourse(code, title, level string, day int, start, end, room string) repository.SeedCourse {
	return repository.SeedCourse{
		Course:   models.Course{Code: code, Title: title, Level: level},
		Offering: models.CourseOffering{AcademicYear: SeedAcademicYear, Capacity: 20},
		Slot:     models.TimetableSlot{DayOfWeek: day, StartTime: start, EndTime: end, Room: room},
	}
}

// gradeForScore maps a 0-100 synthetic attainment score onto the grade scale.
func gradeForScore(score float64) string {
	switch {
	case score >= 90:
		return models.GradeAStar
	case score >= 80:
		return models.GradeA
	case score >= 72:
		return models.GradeB
	case score >= 64:
		return models.GradeC
	case score >= 56:
		return models.GradeD
	case score >= 48:
		return models.GradeE
	default:
		return models.GradeU
	}
}
