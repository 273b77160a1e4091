package models

// PassRateRow is one (course, year) point on the pass rate chart.
type PassRateRow struct {
	AcademicYear  string  `json:"academicYear"`
	Course        string  `json:"course"`
	PassRate      float64 `json:"passRate"`
	AvgAttendance float64 `json:"avgAttendance"`
	CohortSize    int     `json:"cohortSize"`
}

// AverageGradeRow is one (course, year) point on the attainment chart.
type AverageGradeRow struct {
	AcademicYear string  `json:"academicYear"`
	Course       string  `json:"course"`
	AvgPoints    float64 `json:"avgPoints"`
}

// DemandForecast predicts next year's demand per course.
type DemandForecast struct {
	YearsUsed []string               `json:"yearsUsed"`
	NextYear  string                 `json:"nextYear"`
	Data      []CourseDemandForecast `json:"data"`
}

// CourseDemandForecast is the forecast for a single course.
type CourseDemandForecast struct {
	Course              string  `json:"course"`
	ForecastDemand      int     `json:"forecastDemand"`
	RecommendedCapacity int     `json:"recommendedCapacity"`
	Trend               float64 `json:"trend"`
}

// SuccessSignals summarises explainable drivers of student success.
type SuccessSignals struct {
	CorrelationAttendance float64  `json:"correlationAttendance"`
	Signals               []Signal `json:"signals"`
}

// Signal is a named score between 0 and 100.
type Signal struct {
	Signal string  `json:"signal"`
	Score  float64 `json:"score"`
}

// AnomalyRow compares a course's pass rate across the two latest years.
type AnomalyRow struct {
	Course           string  `json:"course"`
	PreviousYear     string  `json:"previousYear"`
	LastYear         string  `json:"lastYear"`
	PreviousPassRate float64 `json:"previousPassRate"`
	LastPassRate     float64 `json:"lastPassRate"`
	Change           float64 `json:"change"`
	Flag             string  `json:"flag"`
}

// ExcellenceRow ranks a course in the latest academic year.
type ExcellenceRow struct {
	AcademicYear    string  `json:"academicYear"`
	Course          string  `json:"course"`
	PassRate        float64 `json:"passRate"`
	AvgPoints       float64 `json:"avgPoints"`
	ExcellenceScore float64 `json:"excellenceScore"`
}
