package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/noah-isme/college-enrolment-api/internal/models"
)

const (
	forecastYears       = 4
	forecastWeightLast  = 0.55
	forecastWeightPrev  = 0.30
	forecastWeightPrev2 = 0.15
	maxUplift           = 0.10
	minRecommended      = 12.0
	capacityBuffer      = 1.20

	minSignalRows       = 10
	highAttendance      = 85.0
	consistencyScore    = 55.0
	interventionScore   = 45.0
	anomalyThreshold    = 12.0
	maxAnomalies        = 8
	maxExcellence       = 6
	excellencePassShare = 0.65
	excellencePtsShare  = 0.35

	// NextYearFallback labels a forecast whose latest year cannot be parsed.
	NextYearFallback = "Next year"
	// InsufficientDataSignal is the single signal returned when history is too thin.
	InsufficientDataSignal = "More data needed"

	flagAnomaly = "Anomaly"
	flagNormal  = "Normal"
)

// Success signal labels.
const (
	SignalAttendanceCorrelation = "Attendance ↔ grade correlation"
	SignalAttendancePassGap     = "High vs low attendance pass-gap"
	SignalConsistency           = "Consistent outcomes year-on-year"
	SignalInterventions         = "Targeted support impact (interventions)"
)

// roundTo rounds half to even at the given number of decimals.
func roundTo(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(value*scale) / scale
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

type courseLabels map[int64]string

func newCourseLabels(courses []models.Course) courseLabels {
	labels := make(courseLabels, len(courses))
	for _, c := range courses {
		labels[c.ID] = c.DisplayName()
	}
	return labels
}

func (l courseLabels) name(id int64) string {
	if name, ok := l[id]; ok {
		return name
	}
	return fmt.Sprintf("Course %d", id)
}

type statKey struct {
	courseID int64
	year     string
}

type statIndex map[statKey]models.CourseYearStat

func newStatIndex(stats []models.CourseYearStat) statIndex {
	idx := make(statIndex, len(stats))
	for _, s := range stats {
		idx[statKey{s.CourseID, s.AcademicYear}] = s
	}
	return idx
}

// demand is the cohort size, 0 for a missing year.
func (idx statIndex) demand(courseID int64, year string) float64 {
	if year == "" {
		return 0
	}
	return float64(idx[statKey{courseID, year}].Total)
}

// passRate is 0 for a missing year.
func (idx statIndex) passRate(courseID int64, year string) float64 {
	if year == "" {
		return 0
	}
	return idx[statKey{courseID, year}].PassRate()
}

// distinctYears returns the academic years present, ascending.
func distinctYears(stats []models.CourseYearStat) []string {
	seen := make(map[string]struct{})
	var years []string
	for _, s := range stats {
		if _, ok := seen[s.AcademicYear]; ok {
			continue
		}
		seen[s.AcademicYear] = struct{}{}
		years = append(years, s.AcademicYear)
	}
	sort.Strings(years)
	return years
}

// ComputePassRates builds the pass rate chart sorted by year then course label.
func ComputePassRates(stats []models.CourseYearStat, courses []models.Course) []models.PassRateRow {
	labels := newCourseLabels(courses)
	rows := make([]models.PassRateRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, models.PassRateRow{
			AcademicYear:  s.AcademicYear,
			Course:        labels.name(s.CourseID),
			PassRate:      roundTo(s.PassRate(), 2),
			AvgAttendance: roundTo(s.AvgAttendance, 2),
			CohortSize:    s.Total,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AcademicYear != rows[j].AcademicYear {
			return rows[i].AcademicYear < rows[j].AcademicYear
		}
		return rows[i].Course < rows[j].Course
	})
	return rows
}

// ComputeAverageGrades builds the grade points chart sorted by year then course label.
func ComputeAverageGrades(stats []models.CourseYearStat, courses []models.Course) []models.AverageGradeRow {
	labels := newCourseLabels(courses)
	rows := make([]models.AverageGradeRow, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, models.AverageGradeRow{
			AcademicYear: s.AcademicYear,
			Course:       labels.name(s.CourseID),
			AvgPoints:    roundTo(s.AvgPoints, 2),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AcademicYear != rows[j].AcademicYear {
			return rows[i].AcademicYear < rows[j].AcademicYear
		}
		return rows[i].Course < rows[j].Course
	})
	return rows
}

// ComputeDemandForecast projects next year's demand for every catalogue course from up to four years of history.
func ComputeDemandForecast(stats []models.CourseYearStat, courses []models.Course) models.DemandForecast {
	years := distinctYears(stats)
	if len(years) == 0 {
		return models.DemandForecast{YearsUsed: []string{}, NextYear: NextYearFallback, Data: []models.CourseDemandForecast{}}
	}
	if len(years) > forecastYears {
		years = years[len(years)-forecastYears:]
	}
	last := years[len(years)-1]
	var prev, prev2 string
	if len(years) >= 2 {
		prev = years[len(years)-2]
	}
	if len(years) >= 3 {
		prev2 = years[len(years)-3]
	}

	idx := newStatIndex(stats)
	data := make([]models.CourseDemandForecast, 0, len(courses))
	for _, c := range courses {
		base := forecastWeightLast*idx.demand(c.ID, last) +
			forecastWeightPrev*idx.demand(c.ID, prev) +
			forecastWeightPrev2*idx.demand(c.ID, prev2)

		uplift := 0.0
		prLast, prPrev := idx.passRate(c.ID, last), idx.passRate(c.ID, prev)
		if prPrev > 0 {
			uplift = clamp((prLast-prPrev)/100.0, -maxUplift, maxUplift)
		}
		forecast := base * (1.0 + uplift)

		data = append(data, models.CourseDemandForecast{
			Course:              c.DisplayName(),
			ForecastDemand:      int(math.RoundToEven(forecast)),
			RecommendedCapacity: int(math.Ceil(math.Max(minRecommended, forecast*capacityBuffer))),
			Trend:               roundTo(uplift*100, 1),
		})
	}
	sort.SliceStable(data, func(i, j int) bool {
		return data[i].ForecastDemand > data[j].ForecastDemand
	})

	return models.DemandForecast{
		YearsUsed: append([]string(nil), years...),
		NextYear:  NextAcademicYear(last),
		Data:      data,
	}
}

// NextAcademicYear turns "2024/25" into "2025/26", wrapping the suffix at 100.
// Anything it cannot parse yields NextYearFallback.
func NextAcademicYear(last string) string {
	if len(last) < 7 {
		return NextYearFallback
	}
	start, err := strconv.Atoi(last[0:4])
	if err != nil {
		return NextYearFallback
	}
	end, err := strconv.Atoi(last[5:7])
	if err != nil {
		return NextYearFallback
	}
	return fmt.Sprintf("%d/%02d", start+1, (end+1)%100)
}

// PearsonCorrelation returns the population correlation of x and y over their common length.
// Fewer than three points or a zero variance yields 0.
func PearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 3 {
		return 0
	}
	var xMean, yMean float64
	for i := 0; i < n; i++ {
		xMean += x[i]
		yMean += y[i]
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var num, denX, denY float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-xMean, y[i]-yMean
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	den := math.Sqrt(denX * denY)
	if den == 0 {
		return 0
	}
	return num / den
}

// ComputeSuccessSignals scores explainable success drivers. The second value counts grades outside the scale,
// which score 0 points and count as passes.
func ComputeSuccessSignals(samples []models.OutcomeSample) (models.SuccessSignals, int) {
	if len(samples) < minSignalRows {
		return models.SuccessSignals{
			CorrelationAttendance: 0,
			Signals:               []models.Signal{{Signal: InsufficientDataSignal, Score: 0}},
		}, 0
	}

	unknown := 0
	attendance := make([]float64, len(samples))
	points := make([]float64, len(samples))
	var lowTotal, lowPass, highTotal, highPass int
	for i, sample := range samples {
		p, ok := models.GradePoints(sample.Grade)
		if !ok {
			unknown++
		}
		attendance[i] = sample.Attendance
		points[i] = float64(p)

		passed := models.IsPass(sample.Grade)
		if sample.Attendance < highAttendance {
			lowTotal++
			if passed {
				lowPass++
			}
		} else {
			highTotal++
			if passed {
				highPass++
			}
		}
	}

	corr := PearsonCorrelation(attendance, points)
	gap := clamp(bucketPassRate(highPass, highTotal)-bucketPassRate(lowPass, lowTotal), 0, 100)

	return models.SuccessSignals{
		CorrelationAttendance: roundTo(corr, 3),
		Signals: []models.Signal{
			{Signal: SignalAttendanceCorrelation, Score: roundTo(math.Abs(corr)*100, 1)},
			{Signal: SignalAttendancePassGap, Score: roundTo(gap, 1)},
			{Signal: SignalConsistency, Score: consistencyScore},
			{Signal: SignalInterventions, Score: interventionScore},
		},
	}, unknown
}

func bucketPassRate(passes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passes) * 100.0 / float64(total)
}

// ComputeAnomalies compares each catalogue course's pass rate in the two latest years and keeps the largest swings.
func ComputeAnomalies(stats []models.CourseYearStat, courses []models.Course) []models.AnomalyRow {
	years := distinctYears(stats)
	if len(years) < 2 {
		return []models.AnomalyRow{}
	}
	last, prev := years[len(years)-1], years[len(years)-2]
	idx := newStatIndex(stats)

	rows := make([]models.AnomalyRow, 0, len(courses))
	for _, c := range courses {
		prLast, prPrev := idx.passRate(c.ID, last), idx.passRate(c.ID, prev)
		delta := prLast - prPrev
		flag := flagNormal
		if math.Abs(delta) >= anomalyThreshold {
			flag = flagAnomaly
		}
		rows = append(rows, models.AnomalyRow{
			Course:           c.DisplayName(),
			PreviousYear:     prev,
			LastYear:         last,
			PreviousPassRate: roundTo(prPrev, 1),
			LastPassRate:     roundTo(prLast, 1),
			Change:           roundTo(delta, 1),
			Flag:             flag,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].Change) > math.Abs(rows[j].Change)
	})
	if len(rows) > maxAnomalies {
		rows = rows[:maxAnomalies]
	}
	return rows
}

// ComputeExcellence ranks courses of the latest academic year by a blend of pass rate and attainment.
func ComputeExcellence(stats []models.CourseYearStat, courses []models.Course) []models.ExcellenceRow {
	years := distinctYears(stats)
	if len(years) == 0 {
		return []models.ExcellenceRow{}
	}
	latest := years[len(years)-1]
	labels := newCourseLabels(courses)

	var rows []models.ExcellenceRow
	for _, s := range stats {
		if s.AcademicYear != latest || s.Total == 0 {
			continue
		}
		passRate := s.PassRate()
		score := excellencePassShare*passRate + excellencePtsShare*(s.AvgPoints/models.MaxGradePoints*100.0)
		rows = append(rows, models.ExcellenceRow{
			AcademicYear:    latest,
			Course:          labels.name(s.CourseID),
			PassRate:        roundTo(passRate, 1),
			AvgPoints:       roundTo(s.AvgPoints, 1),
			ExcellenceScore: roundTo(score, 1),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ExcellenceScore > rows[j].ExcellenceScore
	})
	if len(rows) > maxExcellence {
		rows = rows[:maxExcellence]
	}
	if rows == nil {
		rows = []models.ExcellenceRow{}
	}
	return rows
}
