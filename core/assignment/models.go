package assignment

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tsongo/darasa/core"
)

// Derived homework statuses for a given student. Status is a pure function
// of the submission row (see Status); it is never stored on the homework.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

// Grading criteria types
const (
	CriteriaText = "text"
	CriteriaFile = "file"
)

// FileMeta describes an embedded attachment; Content is the base64 payload.
type FileMeta struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	Content string `json:"content,omitempty"`
}

// GradingCriteria is the optional rubric attached to a homework, either
// inline text or an uploaded file.
type GradingCriteria struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type Homework struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`

	Attachment      *FileMeta        `json:"attachment,omitempty"`
	GradingCriteria *GradingCriteria `json:"grading_criteria,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
}

// Submission is the single live row for a (homework, student) pair.
// Grading fields are cleared on resubmission.
type Submission struct {
	ID          string      `json:"id"`
	HomeworkID  string      `json:"homework_id"`
	StudentID   string      `json:"student_id"` // student's account id
	Content     string      `json:"content"`
	Attachments []FileMeta  `json:"attachments,omitempty"`
	Score       null.Int    `json:"score"`
	Feedback    null.String `json:"feedback"`
	SubmittedAt time.Time   `json:"submitted_at"` // UTC
	GradedAt    null.Time   `json:"graded_at"`
}

// Status derives the homework status for a student from the presence and
// grading state of their submission row. It must be recomputed on every
// read: resubmission changes the answer without any status write.
func Status(sub *Submission) string {
	switch {
	case sub == nil:
		return StatusPending
	case sub.Score.Valid:
		return StatusGraded
	default:
		return StatusSubmitted
	}
}

// SubmissionWithStudent is a submission denormalized with its student's
// directory entry for teacher-facing listings.
type SubmissionWithStudent struct {
	Submission
	StudentName  string `json:"student_name"`
	StudentNo    string `json:"student_no"`
	StudentClass string `json:"student_class"`
}

// StudentSubmission is a submission denormalized with homework and course
// names for student-facing listings.
type StudentSubmission struct {
	Submission
	HomeworkTitle string `json:"homework_title"`
	CourseName    string `json:"course_name"`
}

// HomeworkWithStatus pairs a homework with the derived status for one student.
type HomeworkWithStatus struct {
	Homework
	Status string `json:"status"`
}

// NewHomework contains information needed to assign a new Homework.
type NewHomework struct {
	Title           string           `json:"title" validate:"required,max=200"`
	Description     string           `json:"description"`
	Deadline        time.Time        `json:"deadline" validate:"required"`
	Attachment      *FileMeta        `json:"attachment"`
	GradingCriteria *GradingCriteria `json:"grading_criteria" validate:"omitempty"`
}

func (nh *NewHomework) Validate() error {
	nh.Title = core.CleanString(nh.Title)
	if err := core.Validate.Struct(nh); err != nil {
		return err
	}
	if gc := nh.GradingCriteria; gc != nil && gc.Type != CriteriaText && gc.Type != CriteriaFile {
		return core.NewValidationError(nil, core.FieldError{
			Field: "grading_criteria", Error: "type must be text or file",
		})
	}
	return nil
}

// UpdateHomework defines what may be patched on an existing Homework;
// nil fields are left unchanged.
type UpdateHomework struct {
	Title           *string          `json:"title" validate:"omitempty,max=200"`
	Description     *string          `json:"description"`
	Deadline        *time.Time       `json:"deadline"`
	Attachment      *FileMeta        `json:"attachment"`
	GradingCriteria *GradingCriteria `json:"grading_criteria"`
}

func (uh *UpdateHomework) Validate() error {
	if uh.Title != nil {
		title := core.CleanString(*uh.Title)
		uh.Title = &title
	}
	return core.Validate.Struct(uh)
}

// SubmissionInput is a student's (re)submission payload.
type SubmissionInput struct {
	Content     string     `json:"content" validate:"required"`
	Attachments []FileMeta `json:"attachments"`
}

func (si *SubmissionInput) Validate() error { return core.Validate.Struct(si) }

// GradeInput is a teacher's grading payload. Score bounds are enforced by
// the service so an out-of-range score is reported as ErrInvalidScore.
type GradeInput struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}
