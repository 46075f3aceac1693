package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/core/resource"
	"github.com/tsongo/darasa/storage/kvdb"
)

type fixture struct {
	db      kvdb.DB
	acctSvc *account.Service
	catSvc  *catalog.Service
	asgSvc  *assignment.Service
	resSvc  *resource.Service

	catRepo *kvdb.CatalogRepository
	asgRepo *kvdb.AssignmentRepository
	resRepo *kvdb.ResourceRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conf := &core.Config{
		AppName:   "Darasa",
		SecretKey: []byte("secret"),
		TestMode:  true,
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}

	db := kvdb.OpenInMem()
	lock := core.NewLockManager()

	acctRepo := kvdb.NewAccountRepository(db)
	catRepo := kvdb.NewCatalogRepository(db)
	asgRepo := kvdb.NewAssignmentRepository(db)
	resRepo := kvdb.NewResourceRepository(db)

	return &fixture{
		db:      db,
		acctSvc: account.NewService(conf, acctRepo, lock),
		catSvc:  catalog.NewService(catRepo, acctRepo, asgRepo, resRepo, lock),
		asgSvc:  assignment.NewService(asgRepo, catRepo, acctRepo, lock),
		resSvc:  resource.NewService(resRepo, catRepo, lock),
		catRepo: catRepo,
		asgRepo: asgRepo,
		resRepo: resRepo,
	}
}

func (f *fixture) createTeacher(t *testing.T, handle string) account.Account {
	t.Helper()
	ctx := context.Background()
	acct, err := f.acctSvc.Register(ctx, account.NewAccount{Handle: handle, Password: "s3cr3t!", Role: account.RoleTeacher})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", handle, err)
	}
	_, err = f.acctSvc.CreateTeacherProfile(ctx, account.NewTeacherProfile{
		Handle: handle, TeacherNo: "T-" + handle, Name: "Teacher " + handle,
	})
	if err != nil {
		t.Fatalf("CreateTeacherProfile(%s) failed: %v", handle, err)
	}
	return acct
}

func (f *fixture) createStudent(t *testing.T, handle, studentNo string) account.Account {
	t.Helper()
	ctx := context.Background()
	acct, err := f.acctSvc.Register(ctx, account.NewAccount{Handle: handle, Password: "s3cr3t!", Role: account.RoleStudent})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", handle, err)
	}
	_, err = f.acctSvc.CreateStudentProfile(ctx, account.NewStudentProfile{
		Handle: handle, StudentNo: studentNo, Name: "Student " + handle, ClassName: "CS-2301",
	})
	if err != nil {
		t.Fatalf("CreateStudentProfile(%s) failed: %v", handle, err)
	}
	return acct
}

func (f *fixture) createCourse(t *testing.T, teacherID, name string) catalog.Course {
	t.Helper()
	crs, err := f.catSvc.Create(context.Background(), catalog.NewCourse{Name: name}, teacherID)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", name, err)
	}
	return crs
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")

	crs, err := f.catSvc.Create(ctx, catalog.NewCourse{Name: "Algebra", Description: "Linear algebra"}, teacher.ID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if crs.TeacherID != teacher.ID {
		t.Errorf("TeacherID = %q, want %q", crs.TeacherID, teacher.ID)
	}
	if crs.StudentCount != 0 {
		t.Errorf("StudentCount = %d, want 0", crs.StudentCount)
	}

	// teacher account must exist
	if _, err = f.catSvc.Create(ctx, catalog.NewCourse{Name: "Orphaned"}, "no-such-id"); err != core.ErrNotFound {
		t.Errorf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestService_EnrollUnenroll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	student := f.createStudent(t, "student1", "20230001")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	if _, err := f.catSvc.Enroll(ctx, crs.ID, student.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	refreshed, err := f.catSvc.Get(ctx, crs.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if refreshed.StudentCount != 1 {
		t.Errorf("StudentCount = %d, want 1", refreshed.StudentCount)
	}

	// duplicate enrollment must not touch the counter
	if _, err = f.catSvc.Enroll(ctx, crs.ID, student.ID); err != catalog.ErrAlreadyEnrolled {
		t.Errorf("Enroll() error = %v, want ErrAlreadyEnrolled", err)
	}
	refreshed, _ = f.catSvc.Get(ctx, crs.ID)
	if refreshed.StudentCount != 1 {
		t.Errorf("StudentCount after duplicate = %d, want 1", refreshed.StudentCount)
	}

	if _, err = f.catSvc.Enroll(ctx, crs.ID, "no-such-student"); err != core.ErrNotFound {
		t.Errorf("Enroll() error = %v, want ErrNotFound", err)
	}
	if _, err = f.catSvc.Enroll(ctx, "no-such-course", student.ID); err != core.ErrNotFound {
		t.Errorf("Enroll() error = %v, want ErrNotFound", err)
	}

	if err = f.catSvc.Unenroll(ctx, crs.ID, student.ID); err != nil {
		t.Fatalf("Unenroll() failed: %v", err)
	}
	refreshed, _ = f.catSvc.Get(ctx, crs.ID)
	if refreshed.StudentCount != 0 {
		t.Errorf("StudentCount after unenroll = %d, want 0", refreshed.StudentCount)
	}

	if err = f.catSvc.Unenroll(ctx, crs.ID, student.ID); err != catalog.ErrNotEnrolled {
		t.Errorf("Unenroll() error = %v, want ErrNotEnrolled", err)
	}
}

func TestService_UnenrollCounterUnderflow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	student := f.createStudent(t, "student1", "20230001")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	if _, err := f.catSvc.Enroll(ctx, crs.ID, student.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	// corrupt the stored counter behind the service's back
	stored, err := f.catRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	stored.StudentCount = 0
	if _, err = f.catRepo.UpdateCourse(ctx, stored); err != nil {
		t.Fatalf("UpdateCourse() failed: %v", err)
	}

	if err = f.catSvc.Unenroll(ctx, crs.ID, student.ID); err != catalog.ErrCounterUnderflow {
		t.Errorf("Unenroll() error = %v, want ErrCounterUnderflow", err)
	}

	// underflow is detected before any write: the join row must survive
	if _, err = f.catRepo.GetEnrollment(ctx, crs.ID, student.ID); err != nil {
		t.Errorf("GetEnrollment() after underflow failed: %v", err)
	}
}

func TestService_EnrollConcurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	const n = 20
	students := make([]account.Account, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, f.createStudent(t, fmt.Sprintf("student%d", i+1), fmt.Sprintf("2023%04d", i+1)))
	}

	var wg sync.WaitGroup
	for _, s := range students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			if _, err := f.catSvc.Enroll(ctx, crs.ID, studentID); err != nil {
				t.Errorf("Enroll() failed: %v", err)
			}
		}(s.ID)
	}
	wg.Wait()

	refreshed, err := f.catSvc.Get(ctx, crs.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if refreshed.StudentCount != n {
		t.Errorf("StudentCount = %d, want %d", refreshed.StudentCount, n)
	}
	enrollments, err := f.catRepo.QueryEnrollmentsByCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("QueryEnrollmentsByCourse() failed: %v", err)
	}
	if len(enrollments) != refreshed.StudentCount {
		t.Errorf("enrollment rows = %d, counter = %d; must match", len(enrollments), refreshed.StudentCount)
	}

	// and back down, concurrently
	for _, s := range students {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			if err := f.catSvc.Unenroll(ctx, crs.ID, studentID); err != nil {
				t.Errorf("Unenroll() failed: %v", err)
			}
		}(s.ID)
	}
	wg.Wait()

	refreshed, _ = f.catSvc.Get(ctx, crs.ID)
	if refreshed.StudentCount != 0 {
		t.Errorf("StudentCount after unenrolls = %d, want 0", refreshed.StudentCount)
	}
}

func TestService_EnrollPartialFailure(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	student := f.createStudent(t, "student1", "20230001")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	// fail the counter write only; the join-row write goes through
	kvdb.FailPuts(f.db, func(collection string) error {
		if collection == kvdb.CollCourses {
			return errors.New("disk full")
		}
		return nil
	})
	defer kvdb.FailPuts(f.db, nil)

	_, err := f.catSvc.Enroll(ctx, crs.ID, student.ID)
	if !core.IsPartialFailure(err) {
		t.Fatalf("Enroll() error = %v, want a partial failure", err)
	}

	// the join row landed; only the counter is stale
	if _, err = f.catRepo.GetEnrollment(ctx, crs.ID, student.ID); err != nil {
		t.Errorf("GetEnrollment() failed: %v", err)
	}
	refreshed, _ := f.catSvc.Get(ctx, crs.ID)
	if refreshed.StudentCount != 0 {
		t.Errorf("StudentCount = %d, want stale 0", refreshed.StudentCount)
	}
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	student := f.createStudent(t, "student1", "20230001")
	crs := f.createCourse(t, teacher.ID, "Algebra")
	other := f.createCourse(t, teacher.ID, "Geometry")

	if _, err := f.catSvc.Enroll(ctx, crs.ID, student.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	hw, err := f.asgSvc.Assign(ctx, crs.ID, assignment.NewHomework{Title: "HW 1", Deadline: time.Now().Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	sub, err := f.asgSvc.Submit(ctx, hw.ID, student.ID, assignment.SubmissionInput{Content: "my answer"})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Slides"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	if _, err = f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: "week1.pdf", Size: 4, Content: "AAAA"}); err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	otherHw, err := f.asgSvc.Assign(ctx, other.ID, assignment.NewHomework{Title: "HW other", Deadline: time.Now().Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}

	if err = f.catSvc.Delete(ctx, crs.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err = f.catSvc.Get(ctx, crs.ID); err != core.ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if homeworks, _ := f.asgRepo.QueryHomeworksByCourse(ctx, crs.ID); len(homeworks) != 0 {
		t.Errorf("homeworks survived course deletion: %d", len(homeworks))
	}
	if folders, _ := f.resRepo.QueryFoldersByCourse(ctx, crs.ID); len(folders) != 0 {
		t.Errorf("folders survived course deletion: %d", len(folders))
	}
	if files, _ := f.resRepo.QueryFilesByFolder(ctx, fld.ID); len(files) != 0 {
		t.Errorf("files survived course deletion: %d", len(files))
	}
	if enrollments, _ := f.catRepo.QueryEnrollmentsByCourse(ctx, crs.ID); len(enrollments) != 0 {
		t.Errorf("enrollments survived course deletion: %d", len(enrollments))
	}

	// submissions of the removed homeworks are left in place; only homework
	// deletion cascades to them
	orphan, err := f.asgRepo.GetSubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if orphan.HomeworkID != hw.ID {
		t.Errorf("orphan HomeworkID = %q, want %q", orphan.HomeworkID, hw.ID)
	}

	// the sibling course is untouched
	if _, err = f.asgSvc.Get(ctx, otherHw.ID); err != nil {
		t.Errorf("sibling homework gone: %v", err)
	}

	if err = f.catSvc.Delete(ctx, crs.ID); err != core.ErrNotFound {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}

func TestService_EnrolledStudents(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	// enroll out of student_no order
	s3 := f.createStudent(t, "student3", "20230003")
	s1 := f.createStudent(t, "student1", "20230001")
	s2 := f.createStudent(t, "student2", "20230002")
	for _, s := range []account.Account{s3, s1, s2} {
		if _, err := f.catSvc.Enroll(ctx, crs.ID, s.ID); err != nil {
			t.Fatalf("Enroll() failed: %v", err)
		}
	}

	// an enrolled account without a profile row is skipped, not fatal
	ghost, err := f.acctSvc.Register(ctx, account.NewAccount{Handle: "ghost", Password: "s3cr3t!", Role: account.RoleStudent})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if _, err = f.catSvc.Enroll(ctx, crs.ID, ghost.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	students, err := f.catSvc.EnrolledStudents(ctx, crs.ID)
	if err != nil {
		t.Fatalf("EnrolledStudents() failed: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("EnrolledStudents() = %d students, want 3", len(students))
	}
	for i, want := range []string{"20230001", "20230002", "20230003"} {
		if students[i].StudentNo != want {
			t.Errorf("students[%d].StudentNo = %q, want %q", i, students[i].StudentNo, want)
		}
	}

	if _, err = f.catSvc.EnrolledStudents(ctx, "no-such-course"); err != core.ErrNotFound {
		t.Errorf("EnrolledStudents() error = %v, want ErrNotFound", err)
	}
}

func TestService_CoursesForStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createTeacher(t, "teacher1")
	student := f.createStudent(t, "student1", "20230001")
	crs := f.createCourse(t, teacher.ID, "Algebra")

	if _, err := f.catSvc.Enroll(ctx, crs.ID, student.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	courses, err := f.catSvc.CoursesForStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("CoursesForStudent() failed: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("CoursesForStudent() = %d courses, want 1", len(courses))
	}
	if courses[0].TeacherName != "Teacher teacher1" || courses[0].TeacherHandle != "teacher1" {
		t.Errorf("teacher join = (%q, %q), want (Teacher teacher1, teacher1)", courses[0].TeacherName, courses[0].TeacherHandle)
	}

	// a teacher without a profile row falls back to the placeholder
	bare, err := f.acctSvc.Register(ctx, account.NewAccount{Handle: "teacher2", Password: "s3cr3t!", Role: account.RoleTeacher})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	bareCrs := f.createCourse(t, bare.ID, "Geometry")
	if _, err = f.catSvc.Enroll(ctx, bareCrs.ID, student.ID); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	courses, err = f.catSvc.CoursesForStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("CoursesForStudent() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("CoursesForStudent() = %d courses, want 2", len(courses))
	}
	var bareJoin *catalog.CourseWithTeacher
	for i := range courses {
		if courses[i].ID == bareCrs.ID {
			bareJoin = &courses[i]
		}
	}
	if bareJoin == nil {
		t.Fatal("bare teacher's course missing from listing")
	}
	if bareJoin.TeacherName != "unknown" {
		t.Errorf("TeacherName = %q, want unknown", bareJoin.TeacherName)
	}
	if bareJoin.TeacherHandle != "teacher2" {
		t.Errorf("TeacherHandle = %q, want teacher2", bareJoin.TeacherHandle)
	}
}

func TestService_CoursesForTeacher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	t1 := f.createTeacher(t, "teacher1")
	t2 := f.createTeacher(t, "teacher2")
	f.createCourse(t, t1.ID, "Algebra")
	f.createCourse(t, t1.ID, "Geometry")
	f.createCourse(t, t2.ID, "Chemistry")

	courses, err := f.catSvc.CoursesForTeacher(ctx, t1.ID)
	if err != nil {
		t.Fatalf("CoursesForTeacher() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("CoursesForTeacher() = %d courses, want 2", len(courses))
	}
}
