// Package education exposes typed services over the academic doctypes.
// Records are opaque backend documents; only the declared field
// subsets are projected.
package education

import (
	"context"

	"github.com/educore-erp/educore-erp/internal/erpnext"
)

// Doctypes managed by this package.
const (
	DoctypeStudent      = "Student"
	DoctypeProgram      = "Program"
	DoctypeCourse       = "Course"
	DoctypeAcademicYear = "Academic Year"
)

// DocClient is the slice of the ERPNext client the services need.
type DocClient interface {
	GetList(ctx context.Context, doctype string, params erpnext.ListParams) ([]map[string]any, error)
	GetDoc(ctx context.Context, doctype, name string, fields []string) (map[string]any, error)
	Create(ctx context.Context, doctype string, data map[string]any) (map[string]any, error)
	Update(ctx context.Context, doctype, name string, data map[string]any) (map[string]any, error)
	Delete(ctx context.Context, doctype, name string) error
	GetCount(ctx context.Context, doctype string, filters map[string]any) (int, error)
	Search(ctx context.Context, doctype, query string, filters map[string]any) ([]map[string]any, error)
}

// Service delegates all CRUD to the backend; nothing is cached.
type Service struct {
	client DocClient
}

// NewService constructs the education service.
func NewService(client DocClient) *Service {
	return &Service{client: client}
}

// Detail projections beyond the common list fields, matching what the
// record forms display.
var (
	studentDetailFields = []string{
		"blood_group", "nationality", "guardian_relation", "address_line_2",
		"state", "pincode", "country", "emergency_contact_relation",
		"admission_date", "title", "middle_name", "last_name", "gender",
	}
	programDetailFields = []string{"duration_type", "application_fee", "eligibility", "introduction"}
	courseDetailFields  = []string{"course_intro"}
)

// ListStudents returns a page of active students.
func (s *Service) ListStudents(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeStudent, erpnext.ListParams{
		Filters:         erpnext.FilterActiveStudents,
		Fields:          erpnext.FieldsFor(DoctypeStudent),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "student_name asc",
	})
}

// GetStudent fetches one student with the full detail projection.
func (s *Service) GetStudent(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeStudent, name, erpnext.FieldsFor(DoctypeStudent, studentDetailFields...))
}

// CreateStudent inserts a student document as supplied.
func (s *Service) CreateStudent(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeStudent, data)
}

// UpdateStudent updates a student document.
func (s *Service) UpdateStudent(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeStudent, name, data)
	return err
}

// DeleteStudent removes a student document.
func (s *Service) DeleteStudent(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeStudent, name)
}

// CountStudents counts active students.
func (s *Service) CountStudents(ctx context.Context) (int, error) {
	return s.client.GetCount(ctx, DoctypeStudent, erpnext.FilterActiveStudents)
}

// SearchStudents runs the backend link search over active students.
func (s *Service) SearchStudents(ctx context.Context, query string) ([]map[string]any, error) {
	return s.client.Search(ctx, DoctypeStudent, query, erpnext.FilterActiveStudents)
}

// ListPrograms returns a page of published programs.
func (s *Service) ListPrograms(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeProgram, erpnext.ListParams{
		Filters:         erpnext.FilterPublishedPrograms,
		Fields:          erpnext.FieldsFor(DoctypeProgram),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "program_name asc",
	})
}

// GetProgram fetches one program with the detail projection.
func (s *Service) GetProgram(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeProgram, name, erpnext.FieldsFor(DoctypeProgram, programDetailFields...))
}

// CreateProgram inserts a program document.
func (s *Service) CreateProgram(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeProgram, data)
}

// UpdateProgram updates a program document.
func (s *Service) UpdateProgram(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeProgram, name, data)
	return err
}

// DeleteProgram removes a program document.
func (s *Service) DeleteProgram(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeProgram, name)
}

// CountPrograms counts published programs.
func (s *Service) CountPrograms(ctx context.Context) (int, error) {
	return s.client.GetCount(ctx, DoctypeProgram, erpnext.FilterPublishedPrograms)
}

// ListCourses returns a page of published courses.
func (s *Service) ListCourses(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeCourse, erpnext.ListParams{
		Filters:         erpnext.FilterPublishedCourses,
		Fields:          erpnext.FieldsFor(DoctypeCourse),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "course_name asc",
	})
}

// GetCourse fetches one course with the detail projection.
func (s *Service) GetCourse(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeCourse, name, erpnext.FieldsFor(DoctypeCourse, courseDetailFields...))
}

// CreateCourse inserts a course document.
func (s *Service) CreateCourse(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeCourse, data)
}

// UpdateCourse updates a course document.
func (s *Service) UpdateCourse(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeCourse, name, data)
	return err
}

// DeleteCourse removes a course document.
func (s *Service) DeleteCourse(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeCourse, name)
}

// CountCourses counts published courses.
func (s *Service) CountCourses(ctx context.Context) (int, error) {
	return s.client.GetCount(ctx, DoctypeCourse, erpnext.FilterPublishedCourses)
}

// ListAcademicYears returns enabled academic years, newest first.
func (s *Service) ListAcademicYears(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.client.GetList(ctx, DoctypeAcademicYear, erpnext.ListParams{
		Filters:         erpnext.FilterEnabledRecords,
		Fields:          erpnext.FieldsFor(DoctypeAcademicYear),
		LimitStart:      offset,
		LimitPageLength: limit,
		OrderBy:         "year_start_date desc",
	})
}

// CurrentAcademicYear returns the default academic year, nil when the
// backend has none.
func (s *Service) CurrentAcademicYear(ctx context.Context) (map[string]any, error) {
	years, err := s.client.GetList(ctx, DoctypeAcademicYear, erpnext.ListParams{
		Filters:         erpnext.FilterCurrentAcademicYear,
		Fields:          erpnext.FieldsFor(DoctypeAcademicYear),
		LimitPageLength: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, nil
	}
	return years[0], nil
}

// GetAcademicYear fetches one academic year document.
func (s *Service) GetAcademicYear(ctx context.Context, name string) (map[string]any, error) {
	return s.client.GetDoc(ctx, DoctypeAcademicYear, name, nil)
}

// CreateAcademicYear inserts an academic year document.
func (s *Service) CreateAcademicYear(ctx context.Context, data map[string]any) (map[string]any, error) {
	return s.client.Create(ctx, DoctypeAcademicYear, data)
}

// UpdateAcademicYear updates an academic year document.
func (s *Service) UpdateAcademicYear(ctx context.Context, name string, data map[string]any) error {
	_, err := s.client.Update(ctx, DoctypeAcademicYear, name, data)
	return err
}

// DeleteAcademicYear removes an academic year document.
func (s *Service) DeleteAcademicYear(ctx context.Context, name string) error {
	return s.client.Delete(ctx, DoctypeAcademicYear, name)
}
