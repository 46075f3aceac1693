package catalog

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
)

var (
	// errors
	ErrAlreadyEnrolled  = errors.New("student is already enrolled in this course")
	ErrNotEnrolled      = errors.New("student is not enrolled in this course")
	ErrCounterUnderflow = errors.New("student count would drop below zero")

	// placeholder for a course whose teacher profile row is missing
	unknownTeacher = "unknown"

	studentNoDigits = regexp.MustCompile(`\d+`)
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, courseID, studentID string) error
		DeleteEnrollmentsByCourse(ctx context.Context, courseID string) error
	}

	// AssignmentStore is the slice of the assignment subsystem needed for
	// course cascade deletion.
	AssignmentStore interface {
		DeleteHomeworksByCourse(ctx context.Context, courseID string) error
	}

	// ResourceStore is the slice of the resource subsystem needed for
	// course cascade deletion.
	ResourceStore interface {
		DeleteFilesByCourse(ctx context.Context, courseID string) error
		DeleteFoldersByCourse(ctx context.Context, courseID string) error
	}

	Service struct {
		repo        Repository
		accounts    account.Repository
		assignments AssignmentStore
		resources   ResourceStore
		lock        *core.LockManager
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository, accounts account.Repository, assignments AssignmentStore, resources ResourceStore, lock *core.LockManager) *Service {
	return &Service{
		repo:        repo,
		accounts:    accounts,
		assignments: assignments,
		resources:   resources,
		lock:        lock,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse, teacherID string) (Course, error) {
	crs := Course{
		ID:           uuid.NewString(),
		Name:         nc.Name,
		Description:  nc.Description,
		TeacherID:    teacherID,
		StudentCount: 0,
		CreatedAt:    nowFunc().UTC(),
	}
	err := svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.accounts.GetAccountByID(ctx, teacherID); err != nil {
			return err
		}
		var err error
		crs, err = svc.repo.CreateCourse(ctx, crs)
		return err
	})
	if err != nil {
		return Course{}, err
	}
	return crs, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	var crs Course
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		crs, err = svc.repo.GetCourse(ctx, id)
		return err
	})
	return crs, err
}

func (svc *Service) List(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		courses, err = svc.repo.QueryCourses(ctx)
		return err
	})
	return courses, err
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	var crs Course
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		crs, err = svc.repo.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		if uc.Name != nil {
			crs.Name = *uc.Name
		}
		if uc.Description != nil {
			crs.Description = *uc.Description
		}
		crs, err = svc.repo.UpdateCourse(ctx, crs)
		return err
	})
	if err != nil {
		return Course{}, err
	}
	return crs, nil
}

// Delete removes the course and cascades to its enrollments, homeworks,
// folders and files as one logical operation. Submissions of the removed
// homeworks are left in place: only homework deletion cascades to them.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.repo.GetCourse(ctx, id); err != nil {
			return err
		}

		if err := svc.assignments.DeleteHomeworksByCourse(ctx, id); err != nil {
			return err
		}
		// first write done; failures from here on leave the catalog needing
		// reconciliation and must be surfaced as such
		if err := svc.resources.DeleteFilesByCourse(ctx, id); err != nil {
			return core.NewPartialFailure("catalog.Delete", "course_files cascade", err)
		}
		if err := svc.resources.DeleteFoldersByCourse(ctx, id); err != nil {
			return core.NewPartialFailure("catalog.Delete", "course_folders cascade", err)
		}
		if err := svc.repo.DeleteEnrollmentsByCourse(ctx, id); err != nil {
			return core.NewPartialFailure("catalog.Delete", "course_enrollments cascade", err)
		}
		if err := svc.repo.DeleteCourse(ctx, id); err != nil {
			return core.NewPartialFailure("catalog.Delete", "courses row", err)
		}
		return nil
	})
}

// Enroll inserts the join row and increments the course's student count as
// one logical operation. A confirmed join-row write followed by a failed
// counter write surfaces a PartialFailure instead of leaving the drift
// unreported.
func (svc *Service) Enroll(ctx context.Context, courseID, studentID string) (Enrollment, error) {
	var enr Enrollment
	err := svc.lock.Execute(core.WriteOp, func() error {
		crs, err := svc.repo.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if _, err = svc.accounts.GetAccountByID(ctx, studentID); err != nil {
			return err
		}
		if _, err = svc.repo.GetEnrollment(ctx, courseID, studentID); err == nil {
			return ErrAlreadyEnrolled
		} else if err != core.ErrNotFound {
			return err
		}

		enr = Enrollment{
			CourseID:   courseID,
			StudentID:  studentID,
			EnrolledAt: nowFunc().UTC(),
		}
		if enr, err = svc.repo.CreateEnrollment(ctx, enr); err != nil {
			return err
		}

		crs.StudentCount++
		if _, err = svc.repo.UpdateCourse(ctx, crs); err != nil {
			return core.NewPartialFailure("catalog.Enroll", "course student_count", err)
		}
		return nil
	})
	if err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

// Unenroll removes the join row and decrements the counter symmetrically.
// A decrement below zero means the counter already drifted; it is surfaced
// as ErrCounterUnderflow, never clamped.
func (svc *Service) Unenroll(ctx context.Context, courseID, studentID string) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		crs, err := svc.repo.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if _, err = svc.repo.GetEnrollment(ctx, courseID, studentID); err != nil {
			if err == core.ErrNotFound {
				return ErrNotEnrolled
			}
			return err
		}
		if crs.StudentCount < 1 {
			return ErrCounterUnderflow
		}

		if err = svc.repo.DeleteEnrollment(ctx, courseID, studentID); err != nil {
			return err
		}

		crs.StudentCount--
		if _, err = svc.repo.UpdateCourse(ctx, crs); err != nil {
			return core.NewPartialFailure("catalog.Unenroll", "course student_count", err)
		}
		return nil
	})
}

// EnrolledStudents lists the course's student profiles sorted by the numeric
// part of their student number. Enrollments whose profile row is missing are
// skipped rather than failing the listing.
func (svc *Service) EnrolledStudents(ctx context.Context, courseID string) ([]EnrolledStudent, error) {
	var students []EnrolledStudent
	err := svc.lock.Execute(core.ReadOp, func() error {
		if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
			return err
		}
		enrollments, err := svc.repo.QueryEnrollmentsByCourse(ctx, courseID)
		if err != nil {
			return err
		}

		students = make([]EnrolledStudent, 0, len(enrollments))
		for _, enr := range enrollments {
			acct, err := svc.accounts.GetAccountByID(ctx, enr.StudentID)
			if err != nil {
				if err == core.ErrNotFound {
					continue
				}
				return err
			}
			sp, err := svc.accounts.GetStudentProfileByHandle(ctx, acct.Handle)
			if err != nil {
				if err == core.ErrNotFound {
					continue
				}
				return err
			}
			students = append(students, EnrolledStudent{StudentProfile: sp, EnrolledAt: enr.EnrolledAt})
		}

		sort.SliceStable(students, func(i, j int) bool {
			return studentNoValue(students[i].StudentNo) < studentNoValue(students[j].StudentNo)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// CoursesForStudent joins the student's enrollments with course and teacher
// rows. A missing teacher profile yields the "unknown" placeholder instead
// of failing the whole listing.
func (svc *Service) CoursesForStudent(ctx context.Context, studentID string) ([]CourseWithTeacher, error) {
	var courses []CourseWithTeacher
	err := svc.lock.Execute(core.ReadOp, func() error {
		enrollments, err := svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		courses = make([]CourseWithTeacher, 0, len(enrollments))
		for _, enr := range enrollments {
			crs, err := svc.repo.GetCourse(ctx, enr.CourseID)
			if err != nil {
				if err == core.ErrNotFound {
					continue // dangling join row
				}
				return err
			}

			cwt := CourseWithTeacher{
				Course:        crs,
				TeacherName:   unknownTeacher,
				TeacherHandle: unknownTeacher,
				EnrolledAt:    enr.EnrolledAt,
			}
			if acct, err := svc.accounts.GetAccountByID(ctx, crs.TeacherID); err == nil {
				cwt.TeacherHandle = acct.Handle
				if tp, err := svc.accounts.GetTeacherProfileByHandle(ctx, acct.Handle); err == nil {
					cwt.TeacherName = tp.Name
				} else if err != core.ErrNotFound {
					return err
				}
			} else if err != core.ErrNotFound {
				return err
			}
			courses = append(courses, cwt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (svc *Service) CoursesForTeacher(ctx context.Context, teacherID string) ([]Course, error) {
	var courses []Course
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		courses, err = svc.repo.QueryCoursesByTeacher(ctx, teacherID)
		return err
	})
	return courses, err
}

// studentNoValue extracts the numeric part of a student number for ordering;
// non-numeric student numbers sort first.
func studentNoValue(no string) int {
	if m := studentNoDigits.FindString(no); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return 0
}
