package resource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tsongo/darasa/core"
)

// ErrDuplicateName is returned when a folder name collides within a course
// or a file name collides within a folder.
var ErrDuplicateName = errors.New("name already taken")

type (
	Repository interface {
		CreateFolder(ctx context.Context, fld Folder) (Folder, error)
		GetFolder(ctx context.Context, id string) (Folder, error)
		QueryFoldersByCourse(ctx context.Context, courseID string) ([]Folder, error)
		UpdateFolder(ctx context.Context, fld Folder) (Folder, error)
		DeleteFolder(ctx context.Context, id string) error

		CreateFile(ctx context.Context, f File) (File, error)
		GetFile(ctx context.Context, id string) (File, error)
		QueryFilesByFolder(ctx context.Context, folderID string) ([]File, error)
		UpdateFile(ctx context.Context, f File) (File, error)
		DeleteFile(ctx context.Context, id string) error
		DeleteFilesByFolder(ctx context.Context, folderID string) error
	}

	// CourseDirectory anchors folders to existing courses.
	CourseDirectory interface {
		CourseExists(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo    Repository
		courses CourseDirectory
		lock    *core.LockManager
	}
)

var nowFunc = time.Now // mockable

func NewService(repo Repository, courses CourseDirectory, lock *core.LockManager) *Service {
	return &Service{repo: repo, courses: courses, lock: lock}
}

func (svc *Service) CreateFolder(ctx context.Context, courseID string, nf NewFolder) (Folder, error) {
	fld := Folder{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Name:      nf.Name,
		CreatedAt: nowFunc().UTC(),
	}
	err := svc.lock.Execute(core.WriteOp, func() error {
		ok, err := svc.courses.CourseExists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}
		if err = svc.checkFolderName(ctx, courseID, nf.Name); err != nil {
			return err
		}
		fld, err = svc.repo.CreateFolder(ctx, fld)
		return err
	})
	if err != nil {
		return Folder{}, err
	}
	return fld, nil
}

func (svc *Service) RenameFolder(ctx context.Context, id, name string) (Folder, error) {
	name = core.CleanString(name)
	var fld Folder
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		fld, err = svc.repo.GetFolder(ctx, id)
		if err != nil {
			return err
		}
		if name == fld.Name {
			return nil
		}
		if err = svc.checkFolderName(ctx, fld.CourseID, name); err != nil {
			return err
		}
		fld.Name = name
		fld, err = svc.repo.UpdateFolder(ctx, fld)
		return err
	})
	if err != nil {
		return Folder{}, err
	}
	return fld, nil
}

// DeleteFolder removes the folder and every file whose folder_id matches.
// The cascade is complete: no orphaned files may remain.
func (svc *Service) DeleteFolder(ctx context.Context, id string) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.repo.GetFolder(ctx, id); err != nil {
			return err
		}
		if err := svc.repo.DeleteFilesByFolder(ctx, id); err != nil {
			return err
		}
		if err := svc.repo.DeleteFolder(ctx, id); err != nil {
			return core.NewPartialFailure("resource.DeleteFolder", "course_folders row", err)
		}
		return nil
	})
}

func (svc *Service) UploadFile(ctx context.Context, folderID string, nf NewFile) (File, error) {
	var f File
	err := svc.lock.Execute(core.WriteOp, func() error {
		fld, err := svc.repo.GetFolder(ctx, folderID)
		if err != nil {
			return err
		}
		files, err := svc.repo.QueryFilesByFolder(ctx, folderID)
		if err != nil {
			return err
		}
		for _, existing := range files {
			if existing.Name == nf.Name {
				return ErrDuplicateName
			}
		}

		f = File{
			ID:        uuid.NewString(),
			FolderID:  folderID,
			CourseID:  fld.CourseID,
			Name:      nf.Name,
			Size:      nf.Size,
			Type:      nf.Type,
			Content:   nf.Content,
			CreatedAt: nowFunc().UTC(),
		}
		f, err = svc.repo.CreateFile(ctx, f)
		return err
	})
	if err != nil {
		return File{}, err
	}
	return f, nil
}

func (svc *Service) GetFile(ctx context.Context, id string) (File, error) {
	var f File
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		f, err = svc.repo.GetFile(ctx, id)
		return err
	})
	return f, err
}

// UpdateFileContent replaces the file's payload in place. The overwrite is
// destructive; there is no versioning.
func (svc *Service) UpdateFileContent(ctx context.Context, id, content string, size int64) (File, error) {
	var f File
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		f, err = svc.repo.GetFile(ctx, id)
		if err != nil {
			return err
		}
		f.Content = content
		f.Size = size
		f, err = svc.repo.UpdateFile(ctx, f)
		return err
	})
	if err != nil {
		return File{}, err
	}
	return f, nil
}

func (svc *Service) DeleteFile(ctx context.Context, id string) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		if _, err := svc.repo.GetFile(ctx, id); err != nil {
			return err
		}
		return svc.repo.DeleteFile(ctx, id)
	})
}

// ResourcesForCourse lists the course's folders annotated with their files
// (content omitted) and the derived file count.
func (svc *Service) ResourcesForCourse(ctx context.Context, courseID string) ([]FolderWithFiles, error) {
	var folders []FolderWithFiles
	err := svc.lock.Execute(core.ReadOp, func() error {
		ok, err := svc.courses.CourseExists(ctx, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}

		flds, err := svc.repo.QueryFoldersByCourse(ctx, courseID)
		if err != nil {
			return err
		}
		folders = make([]FolderWithFiles, 0, len(flds))
		for _, fld := range flds {
			files, err := svc.repo.QueryFilesByFolder(ctx, fld.ID)
			if err != nil {
				return err
			}
			infos := make([]FileInfo, 0, len(files))
			for _, f := range files {
				infos = append(infos, f.Info())
			}
			folders = append(folders, FolderWithFiles{
				Folder:    fld,
				Files:     infos,
				FileCount: len(infos),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (svc *Service) checkFolderName(ctx context.Context, courseID, name string) error {
	folders, err := svc.repo.QueryFoldersByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	for _, fld := range folders {
		if fld.Name == name {
			return ErrDuplicateName
		}
	}
	return nil
}
