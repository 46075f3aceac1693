package kvdb

import (
	"context"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/assignment"
)

type AssignmentRepository struct {
	homeworks   collection[assignment.Homework]
	submissions collection[assignment.Submission]
}

var _ assignment.Repository = (*AssignmentRepository)(nil)

func NewAssignmentRepository(db DB) *AssignmentRepository {
	return &AssignmentRepository{
		homeworks:   newCollection[assignment.Homework](db, CollHomeworks),
		submissions: newCollection[assignment.Submission](db, CollSubmissions),
	}
}

func (repo *AssignmentRepository) CreateHomework(ctx context.Context, hw assignment.Homework) (assignment.Homework, error) {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return assignment.Homework{}, err
	}
	homeworks = append(homeworks, hw)
	if err = repo.homeworks.save(ctx, homeworks); err != nil {
		return assignment.Homework{}, err
	}
	return hw, nil
}

func (repo *AssignmentRepository) GetHomework(ctx context.Context, id string) (assignment.Homework, error) {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return assignment.Homework{}, err
	}
	for _, hw := range homeworks {
		if hw.ID == id {
			return hw, nil
		}
	}
	return assignment.Homework{}, core.ErrNotFound
}

func (repo *AssignmentRepository) QueryHomeworksByCourse(ctx context.Context, courseID string) ([]assignment.Homework, error) {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]assignment.Homework, 0, len(homeworks))
	for _, hw := range homeworks {
		if hw.CourseID == courseID {
			matches = append(matches, hw)
		}
	}
	return matches, nil
}

func (repo *AssignmentRepository) UpdateHomework(ctx context.Context, hw assignment.Homework) (assignment.Homework, error) {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return assignment.Homework{}, err
	}
	for i, existing := range homeworks {
		if existing.ID == hw.ID {
			homeworks[i] = hw
			if err = repo.homeworks.save(ctx, homeworks); err != nil {
				return assignment.Homework{}, err
			}
			return hw, nil
		}
	}
	return assignment.Homework{}, core.ErrNotFound
}

func (repo *AssignmentRepository) DeleteHomework(ctx context.Context, id string) error {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return err
	}
	kept := homeworks[:0]
	for _, hw := range homeworks {
		if hw.ID != id {
			kept = append(kept, hw)
		}
	}
	return repo.homeworks.save(ctx, kept)
}

// DeleteHomeworksByCourse is the catalog's course-deletion cascade hook.
// It removes homework rows only; their submissions are deliberately left
// in place (homework deletion is the path that cascades to submissions).
func (repo *AssignmentRepository) DeleteHomeworksByCourse(ctx context.Context, courseID string) error {
	homeworks, err := repo.homeworks.load(ctx)
	if err != nil {
		return err
	}
	kept := homeworks[:0]
	for _, hw := range homeworks {
		if hw.CourseID != courseID {
			kept = append(kept, hw)
		}
	}
	return repo.homeworks.save(ctx, kept)
}

func (repo *AssignmentRepository) GetSubmission(ctx context.Context, id string) (assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return assignment.Submission{}, err
	}
	for _, sub := range submissions {
		if sub.ID == id {
			return sub, nil
		}
	}
	return assignment.Submission{}, core.ErrNotFound
}

func (repo *AssignmentRepository) GetSubmissionByPair(ctx context.Context, homeworkID, studentID string) (assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return assignment.Submission{}, err
	}
	for _, sub := range submissions {
		if sub.HomeworkID == homeworkID && sub.StudentID == studentID {
			return sub, nil
		}
	}
	return assignment.Submission{}, core.ErrNotFound
}

func (repo *AssignmentRepository) QuerySubmissionsByHomework(ctx context.Context, homeworkID string) ([]assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]assignment.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.HomeworkID == homeworkID {
			matches = append(matches, sub)
		}
	}
	return matches, nil
}

func (repo *AssignmentRepository) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]assignment.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.StudentID == studentID {
			matches = append(matches, sub)
		}
	}
	return matches, nil
}

func (repo *AssignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return assignment.Submission{}, err
	}
	submissions = append(submissions, sub)
	if err = repo.submissions.save(ctx, submissions); err != nil {
		return assignment.Submission{}, err
	}
	return sub, nil
}

func (repo *AssignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return assignment.Submission{}, err
	}
	for i, existing := range submissions {
		if existing.ID == sub.ID {
			submissions[i] = sub
			if err = repo.submissions.save(ctx, submissions); err != nil {
				return assignment.Submission{}, err
			}
			return sub, nil
		}
	}
	return assignment.Submission{}, core.ErrNotFound
}

func (repo *AssignmentRepository) DeleteSubmissionsByHomework(ctx context.Context, homeworkID string) error {
	submissions, err := repo.submissions.load(ctx)
	if err != nil {
		return err
	}
	kept := submissions[:0]
	for _, sub := range submissions {
		if sub.HomeworkID != homeworkID {
			kept = append(kept, sub)
		}
	}
	return repo.submissions.save(ctx, kept)
}
