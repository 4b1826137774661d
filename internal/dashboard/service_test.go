package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/educore-erp/educore-erp/testing"
)

type stubEducation struct {
	students, programs, courses int
	studentsErr                 error
	year                        map[string]any
	yearErr                     error
}

func (s *stubEducation) CountStudents(ctx context.Context) (int, error) {
	return s.students, s.studentsErr
}

func (s *stubEducation) CountPrograms(ctx context.Context) (int, error) { return s.programs, nil }
func (s *stubEducation) CountCourses(ctx context.Context) (int, error)  { return s.courses, nil }

func (s *stubEducation) CurrentAcademicYear(ctx context.Context) (map[string]any, error) {
	return s.year, s.yearErr
}

type stubPartners struct {
	customers, suppliers int
	suppliersErr         error
}

func (s *stubPartners) CountCustomers(ctx context.Context) (int, error) { return s.customers, nil }

func (s *stubPartners) CountSuppliers(ctx context.Context) (int, error) {
	return s.suppliers, s.suppliersErr
}

func TestStatsAllSourcesHealthy(t *testing.T) {
	svc := NewService(nil,
		&stubEducation{students: 120, programs: 4, courses: 18, year: map[string]any{"academic_year_name": "2025-2026"}},
		&stubPartners{customers: 9, suppliers: 5})

	stats := svc.Stats(context.Background())
	assert.Equal(t, Stats{
		TotalStudents:       120,
		TotalPrograms:       4,
		TotalCourses:        18,
		TotalCustomers:      9,
		TotalSuppliers:      5,
		CurrentAcademicYear: "2025-2026",
	}, stats)
}

func TestStatsOneFailureYieldsZeroForThatMetricOnly(t *testing.T) {
	svc := NewService(nil,
		&stubEducation{students: 120, studentsErr: errors.New("backend down"), programs: 4, courses: 18, year: map[string]any{"academic_year_name": "2025-2026"}},
		&stubPartners{customers: 9, suppliers: 5, suppliersErr: errors.New("backend down")})

	stats := svc.Stats(context.Background())
	assert.Equal(t, 0, stats.TotalStudents)
	assert.Equal(t, 0, stats.TotalSuppliers)
	assert.Equal(t, 4, stats.TotalPrograms)
	assert.Equal(t, 18, stats.TotalCourses)
	assert.Equal(t, 9, stats.TotalCustomers)
	assert.Equal(t, "2025-2026", stats.CurrentAcademicYear)
}

func TestStatsAcademicYearFallbacks(t *testing.T) {
	withErr := NewService(nil,
		&stubEducation{yearErr: errors.New("backend down")},
		&stubPartners{})
	assert.Equal(t, "Unavailable", withErr.Stats(context.Background()).CurrentAcademicYear)

	withoutYear := NewService(nil,
		&stubEducation{year: map[string]any{}},
		&stubPartners{})
	assert.Equal(t, "Not set", withoutYear.Stats(context.Background()).CurrentAcademicYear)
}
