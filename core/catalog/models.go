package catalog

import (
	"time"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
)

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TeacherID   string `json:"teacher_id"` // owning teacher's account id

	// StudentCount is derived: it must equal the number of live enrollment
	// rows for this course after every successful operation.
	StudentCount int `json:"student_count"`

	CreatedAt time.Time `json:"created_at"` // UTC
}

// Enrollment is the join row between a Course and a student Account,
// keyed on (course_id, student_id).
type Enrollment struct {
	CourseID   string    `json:"course_id"`
	StudentID  string    `json:"student_id"` // student's account id
	EnrolledAt time.Time `json:"enrolled_at"`
}

// CourseWithTeacher is a course denormalized with its teacher's directory
// entry for student-facing listings.
type CourseWithTeacher struct {
	Course
	TeacherName   string    `json:"teacher_name"`
	TeacherHandle string    `json:"teacher_handle"`
	EnrolledAt    time.Time `json:"enrolled_at"`
}

// EnrolledStudent is a student profile annotated with its enrollment time.
type EnrolledStudent struct {
	account.StudentProfile
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// UpdateCourse defines what information may be patched on an existing
// Course; nil fields are left unchanged.
type UpdateCourse struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

func (uc *UpdateCourse) Validate() error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		uc.Name = &name
	}
	return core.Validate.Struct(uc)
}
