// Package dashboard aggregates cross-doctype metrics for the landing
// view.
package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// EducationCounts is the education slice the dashboard reads.
type EducationCounts interface {
	CountStudents(ctx context.Context) (int, error)
	CountPrograms(ctx context.Context) (int, error)
	CountCourses(ctx context.Context) (int, error)
	CurrentAcademicYear(ctx context.Context) (map[string]any, error)
}

// PartnerCounts is the partners slice the dashboard reads.
type PartnerCounts interface {
	CountCustomers(ctx context.Context) (int, error)
	CountSuppliers(ctx context.Context) (int, error)
}

// Stats is the aggregate shown on the dashboard. Failed fetches
// contribute their zero value instead of failing the whole load.
type Stats struct {
	TotalStudents       int    `json:"total_students"`
	TotalPrograms       int    `json:"total_programs"`
	TotalCourses        int    `json:"total_courses"`
	TotalCustomers      int    `json:"total_customers"`
	TotalSuppliers      int    `json:"total_suppliers"`
	CurrentAcademicYear string `json:"current_academic_year"`
}

// Service fans the stat fetches out concurrently.
type Service struct {
	logger    *slog.Logger
	education EducationCounts
	partners  PartnerCounts
}

// NewService constructs the dashboard service.
func NewService(logger *slog.Logger, education EducationCounts, partners PartnerCounts) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, education: education, partners: partners}
}

// Stats loads every metric concurrently. Each fetch captures its own
// failure and substitutes zero, so one broken backend call never
// blocks or fails the others; the join itself never errors.
func (s *Service) Stats(ctx context.Context) Stats {
	stats := Stats{CurrentAcademicYear: "Not set"}

	var g errgroup.Group
	g.Go(s.count(ctx, "students", s.education.CountStudents, &stats.TotalStudents))
	g.Go(s.count(ctx, "programs", s.education.CountPrograms, &stats.TotalPrograms))
	g.Go(s.count(ctx, "courses", s.education.CountCourses, &stats.TotalCourses))
	g.Go(s.count(ctx, "customers", s.partners.CountCustomers, &stats.TotalCustomers))
	g.Go(s.count(ctx, "suppliers", s.partners.CountSuppliers, &stats.TotalSuppliers))
	g.Go(func() error {
		year, err := s.education.CurrentAcademicYear(ctx)
		if err != nil {
			s.logger.Warn("dashboard fetch failed", slog.String("metric", "academic_year"), slog.Any("error", err))
			stats.CurrentAcademicYear = "Unavailable"
			return nil
		}
		if name, ok := year["academic_year_name"].(string); ok && name != "" {
			stats.CurrentAcademicYear = name
		}
		return nil
	})
	_ = g.Wait()

	return stats
}

func (s *Service) count(ctx context.Context, metric string, fetch func(context.Context) (int, error), slot *int) func() error {
	return func() error {
		n, err := fetch(ctx)
		if err != nil {
			s.logger.Warn("dashboard fetch failed", slog.String("metric", metric), slog.Any("error", err))
			return nil
		}
		*slot = n
		return nil
	}
}
