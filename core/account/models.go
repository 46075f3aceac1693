package account

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tsongo/darasa/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

type Account struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsTeacher() bool { return a.Role == RoleTeacher }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }

// TeacherProfile holds a teacher's directory entry. It is joined to an
// Account by handle equality; the join is not structurally guaranteed.
type TeacherProfile struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	TeacherNo string    `json:"teacher_no"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// StudentProfile holds a student's directory entry, joined to an Account by
// handle equality.
type StudentProfile struct {
	ID        string    `json:"id"`
	Handle    string    `json:"handle"`
	StudentNo string    `json:"student_no"`
	Name      string    `json:"name"`
	ClassName string    `json:"class_name"`
	Gender    string    `json:"gender"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Profile is the role-dependent profile of an account; exactly one of
// Teacher or Student is set.
type Profile struct {
	Role    string          `json:"role"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
	Student *StudentProfile `json:"student,omitempty"`
}

// Session is issued on successful authentication.
type Session struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// NewAccount contains information needed to register a new Account.
type NewAccount struct {
	Handle   string `json:"handle" validate:"required,min=3,max=50,alphanum_"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

func (na *NewAccount) Validate() error {
	// handles are case-sensitive: trim only, never lower
	na.Handle = core.CleanString(na.Handle)
	return core.Validate.Struct(na)
}

type Credentials struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Handle = core.CleanString(c.Handle)
	return core.Validate.Struct(c)
}

type ChangePassword struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func (cp ChangePassword) Validate() error { return core.Validate.Struct(cp) }

// NewTeacherProfile seeds a teacher directory entry for an existing Account.
type NewTeacherProfile struct {
	Handle    string `json:"handle" validate:"required"`
	TeacherNo string `json:"teacher_no" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func (np *NewTeacherProfile) Validate() error {
	np.Handle = core.CleanString(np.Handle)
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	return core.Validate.Struct(np)
}

// NewStudentProfile seeds a student directory entry for an existing Account.
type NewStudentProfile struct {
	Handle    string `json:"handle" validate:"required"`
	StudentNo string `json:"student_no" validate:"required"`
	Name      string `json:"name" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female"`
}

func (np *NewStudentProfile) Validate() error {
	np.Handle = core.CleanString(np.Handle)
	np.Name = core.CleanString(np.Name)
	np.ClassName = core.CleanString(np.ClassName)
	return core.Validate.Struct(np)
}
