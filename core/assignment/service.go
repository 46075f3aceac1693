package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
)

var (
	// errors
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidScore       = errors.New("score must be between 0 and 100")
)

type (
	Repository interface {
		CreateHomework(ctx context.Context, hw Homework) (Homework, error)
		GetHomework(ctx context.Context, id string) (Homework, error)
		QueryHomeworksByCourse(ctx context.Context, courseID string) ([]Homework, error)
		UpdateHomework(ctx context.Context, hw Homework) (Homework, error)
		DeleteHomework(ctx context.Context, id string) error

		GetSubmission(ctx context.Context, id string) (Submission, error)
		GetSubmissionByPair(ctx context.Context, homeworkID, studentID string) (Submission, error)
		QuerySubmissionsByHomework(ctx context.Context, homeworkID string) ([]Submission, error)
		QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		DeleteSubmissionsByHomework(ctx context.Context, homeworkID string) error
	}

	// CourseDirectory is the slice of the catalog needed to anchor homeworks
	// and label student-facing submission listings.
	CourseDirectory interface {
		CourseExists(ctx context.Context, id string) (bool, error)
		CourseName(ctx context.Context, id string) (string, error)
	}

	Service struct {
		repo     Repository
		courses  CourseDirectory
		accounts account.Repository
		lock     *core.LockManager
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository, courses CourseDirectory, accounts account.Repository, lock *core.LockManager) *Service {
	return &Service{repo: repo, courses: courses, accounts: accounts, lock: lock}
}

func (svc *Service) Assign(ctx context.Context, courseID string, nh NewHomework) (Homework, error) {
	hw := Homework{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		Title:           nh.Title,
		Description:     nh.Description,
		Deadline:        nh.Deadline,
		Attachment:      nh.Attachment,
		GradingCriteria: nh.GradingCriteria,
		CreatedAt:       nowFunc().UTC(),
	}
	err := svc.lock.Execute(core.WriteOp, func() error {
		ok, err := svc.courses.CourseExists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}
		hw, err = svc.repo.CreateHomework(ctx, hw)
		return err
	})
	if err != nil {
		return Homework{}, err
	}
	return hw, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Homework, error) {
	var hw Homework
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		hw, err = svc.repo.GetHomework(ctx, id)
		return err
	})
	return hw, err
}

func (svc *Service) Update(ctx context.Context, id string, uh UpdateHomework) (Homework, error) {
	var hw Homework
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		hw, err = svc.repo.GetHomework(ctx, id)
		if err != nil {
			return err
		}
		if uh.Title != nil {
			hw.Title = *uh.Title
		}
		if uh.Description != nil {
			hw.Description = *uh.Description
		}
		if uh.Deadline != nil {
			hw.Deadline = *uh.Deadline
		}
		if uh.Attachment != nil {
			hw.Attachment = uh.Attachment
		}
		if uh.GradingCriteria != nil {
			hw.GradingCriteria = uh.GradingCriteria
		}
		hw, err = svc.repo.UpdateHomework(ctx, hw)
		return err
	})
	if err != nil {
		return Homework{}, err
	}
	return hw, nil
}

// Delete removes the homework and every submission referencing it. Unlike
// course deletion, this cascade is complete.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.repo.GetHomework(ctx, id); err != nil {
			return err
		}
		if err := svc.repo.DeleteSubmissionsByHomework(ctx, id); err != nil {
			return err
		}
		if err := svc.repo.DeleteHomework(ctx, id); err != nil {
			return core.NewPartialFailure("assignment.Delete", "homeworks row", err)
		}
		return nil
	})
}

func (svc *Service) ListForCourse(ctx context.Context, courseID string) ([]Homework, error) {
	var homeworks []Homework
	err := svc.lock.Execute(core.ReadOp, func() error {
		ok, err := svc.courses.CourseExists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}
		homeworks, err = svc.repo.QueryHomeworksByCourse(ctx, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return homeworks, nil
}

// ListForCourseWithStatus annotates each homework with the derived status
// for the given student.
func (svc *Service) ListForCourseWithStatus(ctx context.Context, courseID, studentID string) ([]HomeworkWithStatus, error) {
	var annotated []HomeworkWithStatus
	err := svc.lock.Execute(core.ReadOp, func() error {
		ok, err := svc.courses.CourseExists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}
		homeworks, err := svc.repo.QueryHomeworksByCourse(ctx, courseID)
		if err != nil {
			return err
		}

		annotated = make([]HomeworkWithStatus, 0, len(homeworks))
		for _, hw := range homeworks {
			var subPtr *Submission
			sub, err := svc.repo.GetSubmissionByPair(ctx, hw.ID, studentID)
			if err == nil {
				subPtr = &sub
			} else if err != core.ErrNotFound {
				return err
			}
			annotated = append(annotated, HomeworkWithStatus{Homework: hw, Status: Status(subPtr)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return annotated, nil
}

// Submit upserts the (homework, student) pair's live submission. A
// resubmission replaces content and attachments, refreshes submitted_at and
// clears score, feedback and graded_at: a new submission must always pass
// through grading again.
func (svc *Service) Submit(ctx context.Context, homeworkID, studentID string, si SubmissionInput) (Submission, error) {
	var sub Submission
	err := svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.repo.GetHomework(ctx, homeworkID); err != nil {
			return err
		}
		if _, err := svc.accounts.GetAccountByID(ctx, studentID); err != nil {
			return err
		}

		existing, err := svc.repo.GetSubmissionByPair(ctx, homeworkID, studentID)
		switch err {
		case nil:
			existing.Content = si.Content
			existing.Attachments = si.Attachments
			existing.SubmittedAt = nowFunc().UTC()
			existing.Score = null.Int{}
			existing.Feedback = null.String{}
			existing.GradedAt = null.Time{}
			sub, err = svc.repo.UpdateSubmission(ctx, existing)
		case core.ErrNotFound:
			sub = Submission{
				ID:          uuid.NewString(),
				HomeworkID:  homeworkID,
				StudentID:   studentID,
				Content:     si.Content,
				Attachments: si.Attachments,
				SubmittedAt: nowFunc().UTC(),
			}
			sub, err = svc.repo.CreateSubmission(ctx, sub)
		}
		return err
	})
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// Grade sets the score and optional feedback on a submission. Re-grading an
// already graded submission simply overwrites.
func (svc *Service) Grade(ctx context.Context, submissionID string, gi GradeInput) (Submission, error) {
	if gi.Score < 0 || gi.Score > 100 {
		return Submission{}, ErrInvalidScore
	}

	var sub Submission
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		sub, err = svc.repo.GetSubmission(ctx, submissionID)
		if err != nil {
			if err == core.ErrNotFound {
				return ErrSubmissionNotFound
			}
			return err
		}
		sub.Score = null.IntFrom(gi.Score)
		sub.Feedback = null.NewString(gi.Feedback, gi.Feedback != "")
		sub.GradedAt = null.TimeFrom(nowFunc().UTC())
		sub, err = svc.repo.UpdateSubmission(ctx, sub)
		return err
	})
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (svc *Service) SubmissionByPair(ctx context.Context, homeworkID, studentID string) (Submission, error) {
	var sub Submission
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		sub, err = svc.repo.GetSubmissionByPair(ctx, homeworkID, studentID)
		return err
	})
	return sub, err
}

// SubmissionsForHomework lists a homework's submissions joined with the
// students' directory entries. Submissions whose student profile is missing
// are skipped, matching the directory's weak join guarantees.
func (svc *Service) SubmissionsForHomework(ctx context.Context, homeworkID string) ([]SubmissionWithStudent, error) {
	var joined []SubmissionWithStudent
	err := svc.lock.Execute(core.ReadOp, func() error {
		if _, err := svc.repo.GetHomework(ctx, homeworkID); err != nil {
			return err
		}
		subs, err := svc.repo.QuerySubmissionsByHomework(ctx, homeworkID)
		if err != nil {
			return err
		}

		joined = make([]SubmissionWithStudent, 0, len(subs))
		for _, sub := range subs {
			acct, err := svc.accounts.GetAccountByID(ctx, sub.StudentID)
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
			joined = append(joined, SubmissionWithStudent{
				Submission:   sub,
				StudentName:  sp.Name,
				StudentNo:    sp.StudentNo,
				StudentClass: sp.ClassName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// SubmissionsForStudent lists a student's submissions joined with homework
// titles and course names.
func (svc *Service) SubmissionsForStudent(ctx context.Context, studentID string) ([]StudentSubmission, error) {
	var joined []StudentSubmission
	err := svc.lock.Execute(core.ReadOp, func() error {
		subs, err := svc.repo.QuerySubmissionsByStudent(ctx, studentID)
		if err != nil {
			return err
		}

		joined = make([]StudentSubmission, 0, len(subs))
		for _, sub := range subs {
			hw, err := svc.repo.GetHomework(ctx, sub.HomeworkID)
			if err != nil {
				if err == core.ErrNotFound {
					continue // orphaned by a course deletion
				}
				return err
			}
			courseName, err := svc.courses.CourseName(ctx, hw.CourseID)
			if err != nil && err != core.ErrNotFound {
				return err
			}
			joined = append(joined, StudentSubmission{
				Submission:    sub,
				HomeworkTitle: hw.Title,
				CourseName:    courseName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}
