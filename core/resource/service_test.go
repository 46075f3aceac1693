package resource_test

import (
	"context"
	"testing"
	"time"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/catalog"
	"github.com/tsongo/darasa/core/resource"
	"github.com/tsongo/darasa/storage/kvdb"
)

type fixture struct {
	resSvc *resource.Service
	catSvc *catalog.Service

	resRepo *kvdb.ResourceRepository
}

func setup(t *testing.T) (*fixture, catalog.Course) {
	t.Helper()
	conf := &core.Config{
		AppName:   "Darasa",
		SecretKey: []byte("secret"),
		TestMode:  true,
		Server:    core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
	}
	ctx := context.Background()

	db := kvdb.OpenInMem()
	lock := core.NewLockManager()

	acctRepo := kvdb.NewAccountRepository(db)
	catRepo := kvdb.NewCatalogRepository(db)
	asgRepo := kvdb.NewAssignmentRepository(db)
	resRepo := kvdb.NewResourceRepository(db)

	acctSvc := account.NewService(conf, acctRepo, lock)
	catSvc := catalog.NewService(catRepo, acctRepo, asgRepo, resRepo, lock)

	teacher, err := acctSvc.Register(ctx, account.NewAccount{Handle: "teacher1", Password: "s3cr3t!", Role: account.RoleTeacher})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	crs, err := catSvc.Create(ctx, catalog.NewCourse{Name: "Algebra"}, teacher.ID)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	f := &fixture{
		resSvc:  resource.NewService(resRepo, catRepo, lock),
		catSvc:  catSvc,
		resRepo: resRepo,
	}
	return f, crs
}

func TestService_CreateFolder(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	if fld.CourseID != crs.ID || fld.CreatedAt.IsZero() {
		t.Errorf("folder not initialized: %+v", fld)
	}

	if _, err = f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"}); err != resource.ErrDuplicateName {
		t.Errorf("CreateFolder() dup error = %v, want ErrDuplicateName", err)
	}
	if _, err = f.resSvc.CreateFolder(ctx, "no-such-course", resource.NewFolder{Name: "Lectures"}); err != core.ErrNotFound {
		t.Errorf("CreateFolder() error = %v, want ErrNotFound", err)
	}
}

func TestService_RenameFolder(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	a, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	if _, err = f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Labs"}); err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}

	// renaming to its own name is a no-op
	fld, err := f.resSvc.RenameFolder(ctx, a.ID, "Lectures")
	if err != nil {
		t.Fatalf("RenameFolder() failed: %v", err)
	}
	if fld.Name != "Lectures" {
		t.Errorf("Name = %q, want Lectures", fld.Name)
	}

	if _, err = f.resSvc.RenameFolder(ctx, a.ID, "Labs"); err != resource.ErrDuplicateName {
		t.Errorf("RenameFolder() error = %v, want ErrDuplicateName", err)
	}

	fld, err = f.resSvc.RenameFolder(ctx, a.ID, "Slides")
	if err != nil {
		t.Fatalf("RenameFolder() failed: %v", err)
	}
	if fld.Name != "Slides" {
		t.Errorf("Name = %q, want Slides", fld.Name)
	}

	if _, err = f.resSvc.RenameFolder(ctx, "no-such-folder", "X"); err != core.ErrNotFound {
		t.Errorf("RenameFolder() error = %v, want ErrNotFound", err)
	}
}

func TestService_UploadFile(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	other, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Labs"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}

	file, err := f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{
		Name: "week1.pdf", Size: 1024, Type: "application/pdf", Content: "cGRm",
	})
	if err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}
	if file.FolderID != fld.ID || file.CourseID != crs.ID {
		t.Errorf("file anchoring = (%q, %q), want (%q, %q)", file.FolderID, file.CourseID, fld.ID, crs.ID)
	}

	// duplicate name within the same folder
	if _, err = f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: "week1.pdf"}); err != resource.ErrDuplicateName {
		t.Errorf("UploadFile() dup error = %v, want ErrDuplicateName", err)
	}
	// same name in another folder is fine
	if _, err = f.resSvc.UploadFile(ctx, other.ID, resource.NewFile{Name: "week1.pdf"}); err != nil {
		t.Errorf("UploadFile() in sibling folder failed: %v", err)
	}

	if _, err = f.resSvc.UploadFile(ctx, "no-such-folder", resource.NewFile{Name: "x"}); err != core.ErrNotFound {
		t.Errorf("UploadFile() error = %v, want ErrNotFound", err)
	}
}

func TestService_UpdateFileContent(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	file, err := f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: "notes.txt", Size: 3, Content: "b2xk"})
	if err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	updated, err := f.resSvc.UpdateFileContent(ctx, file.ID, "bmV3", 4)
	if err != nil {
		t.Fatalf("UpdateFileContent() failed: %v", err)
	}
	if updated.Content != "bmV3" || updated.Size != 4 {
		t.Errorf("update = (%q, %d), want (bmV3, 4)", updated.Content, updated.Size)
	}
	if updated.Name != "notes.txt" {
		t.Errorf("Name changed: %q", updated.Name)
	}

	got, err := f.resSvc.GetFile(ctx, file.ID)
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if got.Content != "bmV3" {
		t.Errorf("persisted Content = %q, want bmV3", got.Content)
	}

	if _, err = f.resSvc.UpdateFileContent(ctx, "no-such-file", "x", 1); err != core.ErrNotFound {
		t.Errorf("UpdateFileContent() error = %v, want ErrNotFound", err)
	}
}

func TestService_DeleteFolder(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	sibling, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Labs"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}

	file, err := f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: "week1.pdf"})
	if err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}
	kept, err := f.resSvc.UploadFile(ctx, sibling.ID, resource.NewFile{Name: "lab1.pdf"})
	if err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	if err = f.resSvc.DeleteFolder(ctx, fld.ID); err != nil {
		t.Fatalf("DeleteFolder() failed: %v", err)
	}

	// folder deletion cascades to its files, siblings untouched
	if _, err = f.resRepo.GetFolder(ctx, fld.ID); err != core.ErrNotFound {
		t.Errorf("GetFolder() error = %v, want ErrNotFound", err)
	}
	if _, err = f.resRepo.GetFile(ctx, file.ID); err != core.ErrNotFound {
		t.Errorf("GetFile() error = %v, want ErrNotFound", err)
	}
	if _, err = f.resRepo.GetFile(ctx, kept.ID); err != nil {
		t.Errorf("sibling file gone: %v", err)
	}

	if err = f.resSvc.DeleteFolder(ctx, fld.ID); err != core.ErrNotFound {
		t.Errorf("DeleteFolder() again error = %v, want ErrNotFound", err)
	}
}

func TestService_DeleteFile(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	file, err := f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: "week1.pdf"})
	if err != nil {
		t.Fatalf("UploadFile() failed: %v", err)
	}

	if err = f.resSvc.DeleteFile(ctx, file.ID); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	if _, err = f.resSvc.GetFile(ctx, file.ID); err != core.ErrNotFound {
		t.Errorf("GetFile() error = %v, want ErrNotFound", err)
	}
	if err = f.resSvc.DeleteFile(ctx, file.ID); err != core.ErrNotFound {
		t.Errorf("DeleteFile() again error = %v, want ErrNotFound", err)
	}
	// folder survives
	if _, err = f.resRepo.GetFolder(ctx, fld.ID); err != nil {
		t.Errorf("GetFolder() failed: %v", err)
	}
}

func TestService_ResourcesForCourse(t *testing.T) {
	f, crs := setup(t)
	ctx := context.Background()

	fld, err := f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Lectures"})
	if err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	if _, err = f.resSvc.CreateFolder(ctx, crs.ID, resource.NewFolder{Name: "Labs"}); err != nil {
		t.Fatalf("CreateFolder() failed: %v", err)
	}
	for _, name := range []string{"week1.pdf", "week2.pdf"} {
		if _, err = f.resSvc.UploadFile(ctx, fld.ID, resource.NewFile{Name: name, Content: "cGRm"}); err != nil {
			t.Fatalf("UploadFile() failed: %v", err)
		}
	}

	folders, err := f.resSvc.ResourcesForCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("ResourcesForCourse() failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("ResourcesForCourse() = %d folders, want 2", len(folders))
	}
	for _, fws := range folders {
		want := 0
		if fws.ID == fld.ID {
			want = 2
		}
		if fws.FileCount != want || len(fws.Files) != want {
			t.Errorf("folder %q: count = %d files = %d, want %d", fws.Name, fws.FileCount, len(fws.Files), want)
		}
		for _, info := range fws.Files {
			if info.Size < 0 {
				t.Errorf("file %q: negative size", info.Name)
			}
		}
	}

	if _, err = f.resSvc.ResourcesForCourse(ctx, "no-such-course"); err != core.ErrNotFound {
		t.Errorf("ResourcesForCourse() error = %v, want ErrNotFound", err)
	}
}
