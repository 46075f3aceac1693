package kvdb

import (
	"context"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/catalog"
)

type CatalogRepository struct {
	courses     collection[catalog.Course]
	enrollments collection[catalog.Enrollment]
}

var _ catalog.Repository = (*CatalogRepository)(nil)

func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{
		courses:     newCollection[catalog.Course](db, CollCourses),
		enrollments: newCollection[catalog.Enrollment](db, CollEnrollments),
	}
}

func (repo *CatalogRepository) CreateCourse(ctx context.Context, crs catalog.Course) (catalog.Course, error) {
	courses, err := repo.courses.load(ctx)
	if err != nil {
		return catalog.Course{}, err
	}
	courses = append(courses, crs)
	if err = repo.courses.save(ctx, courses); err != nil {
		return catalog.Course{}, err
	}
	return crs, nil
}

func (repo *CatalogRepository) GetCourse(ctx context.Context, id string) (catalog.Course, error) {
	courses, err := repo.courses.load(ctx)
	if err != nil {
		return catalog.Course{}, err
	}
	for _, crs := range courses {
		if crs.ID == id {
			return crs, nil
		}
	}
	return catalog.Course{}, core.ErrNotFound
}

func (repo *CatalogRepository) QueryCourses(ctx context.Context) ([]catalog.Course, error) {
	return repo.courses.load(ctx)
}

func (repo *CatalogRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]catalog.Course, error) {
	courses, err := repo.courses.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]catalog.Course, 0, len(courses))
	for _, crs := range courses {
		if crs.TeacherID == teacherID {
			matches = append(matches, crs)
		}
	}
	return matches, nil
}

func (repo *CatalogRepository) UpdateCourse(ctx context.Context, crs catalog.Course) (catalog.Course, error) {
	courses, err := repo.courses.load(ctx)
	if err != nil {
		return catalog.Course{}, err
	}
	for i, existing := range courses {
		if existing.ID == crs.ID {
			courses[i] = crs
			if err = repo.courses.save(ctx, courses); err != nil {
				return catalog.Course{}, err
			}
			return crs, nil
		}
	}
	return catalog.Course{}, core.ErrNotFound
}

func (repo *CatalogRepository) DeleteCourse(ctx context.Context, id string) error {
	courses, err := repo.courses.load(ctx)
	if err != nil {
		return err
	}
	kept := courses[:0]
	for _, crs := range courses {
		if crs.ID != id {
			kept = append(kept, crs)
		}
	}
	return repo.courses.save(ctx, kept)
}

// CourseExists reports whether a course row exists, for subsystems that
// only need to anchor rows to the catalog.
func (repo *CatalogRepository) CourseExists(ctx context.Context, id string) (bool, error) {
	if _, err := repo.GetCourse(ctx, id); err != nil {
		if err == core.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (repo *CatalogRepository) CourseName(ctx context.Context, id string) (string, error) {
	crs, err := repo.GetCourse(ctx, id)
	if err != nil {
		return "", err
	}
	return crs.Name, nil
}

func (repo *CatalogRepository) GetEnrollment(ctx context.Context, courseID, studentID string) (catalog.Enrollment, error) {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return catalog.Enrollment{}, err
	}
	for _, enr := range enrollments {
		if enr.CourseID == courseID && enr.StudentID == studentID {
			return enr, nil
		}
	}
	return catalog.Enrollment{}, core.ErrNotFound
}

func (repo *CatalogRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]catalog.Enrollment, error) {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]catalog.Enrollment, 0, len(enrollments))
	for _, enr := range enrollments {
		if enr.CourseID == courseID {
			matches = append(matches, enr)
		}
	}
	return matches, nil
}

func (repo *CatalogRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]catalog.Enrollment, error) {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]catalog.Enrollment, 0, len(enrollments))
	for _, enr := range enrollments {
		if enr.StudentID == studentID {
			matches = append(matches, enr)
		}
	}
	return matches, nil
}

func (repo *CatalogRepository) CreateEnrollment(ctx context.Context, enr catalog.Enrollment) (catalog.Enrollment, error) {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return catalog.Enrollment{}, err
	}
	enrollments = append(enrollments, enr)
	if err = repo.enrollments.save(ctx, enrollments); err != nil {
		return catalog.Enrollment{}, err
	}
	return enr, nil
}

func (repo *CatalogRepository) DeleteEnrollment(ctx context.Context, courseID, studentID string) error {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return err
	}
	kept := enrollments[:0]
	for _, enr := range enrollments {
		if !(enr.CourseID == courseID && enr.StudentID == studentID) {
			kept = append(kept, enr)
		}
	}
	return repo.enrollments.save(ctx, kept)
}

func (repo *CatalogRepository) DeleteEnrollmentsByCourse(ctx context.Context, courseID string) error {
	enrollments, err := repo.enrollments.load(ctx)
	if err != nil {
		return err
	}
	kept := enrollments[:0]
	for _, enr := range enrollments {
		if enr.CourseID != courseID {
			kept = append(kept, enr)
		}
	}
	return repo.enrollments.save(ctx, kept)
}
