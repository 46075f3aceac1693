package kvdb

import (
	"context"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/resource"
)

type ResourceRepository struct {
	folders collection[resource.Folder]
	files   collection[resource.File]
}

var _ resource.Repository = (*ResourceRepository)(nil)

func NewResourceRepository(db DB) *ResourceRepository {
	return &ResourceRepository{
		folders: newCollection[resource.Folder](db, CollFolders),
		files:   newCollection[resource.File](db, CollFiles),
	}
}

func (repo *ResourceRepository) CreateFolder(ctx context.Context, fld resource.Folder) (resource.Folder, error) {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return resource.Folder{}, err
	}
	folders = append(folders, fld)
	if err = repo.folders.save(ctx, folders); err != nil {
		return resource.Folder{}, err
	}
	return fld, nil
}

func (repo *ResourceRepository) GetFolder(ctx context.Context, id string) (resource.Folder, error) {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return resource.Folder{}, err
	}
	for _, fld := range folders {
		if fld.ID == id {
			return fld, nil
		}
	}
	return resource.Folder{}, core.ErrNotFound
}

func (repo *ResourceRepository) QueryFoldersByCourse(ctx context.Context, courseID string) ([]resource.Folder, error) {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]resource.Folder, 0, len(folders))
	for _, fld := range folders {
		if fld.CourseID == courseID {
			matches = append(matches, fld)
		}
	}
	return matches, nil
}

func (repo *ResourceRepository) UpdateFolder(ctx context.Context, fld resource.Folder) (resource.Folder, error) {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return resource.Folder{}, err
	}
	for i, existing := range folders {
		if existing.ID == fld.ID {
			folders[i] = fld
			if err = repo.folders.save(ctx, folders); err != nil {
				return resource.Folder{}, err
			}
			return fld, nil
		}
	}
	return resource.Folder{}, core.ErrNotFound
}

func (repo *ResourceRepository) DeleteFolder(ctx context.Context, id string) error {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return err
	}
	kept := folders[:0]
	for _, fld := range folders {
		if fld.ID != id {
			kept = append(kept, fld)
		}
	}
	return repo.folders.save(ctx, kept)
}

// DeleteFoldersByCourse is part of the catalog's course-deletion cascade.
func (repo *ResourceRepository) DeleteFoldersByCourse(ctx context.Context, courseID string) error {
	folders, err := repo.folders.load(ctx)
	if err != nil {
		return err
	}
	kept := folders[:0]
	for _, fld := range folders {
		if fld.CourseID != courseID {
			kept = append(kept, fld)
		}
	}
	return repo.folders.save(ctx, kept)
}

func (repo *ResourceRepository) CreateFile(ctx context.Context, f resource.File) (resource.File, error) {
	files, err := repo.files.load(ctx)
	if err != nil {
		return resource.File{}, err
	}
	files = append(files, f)
	if err = repo.files.save(ctx, files); err != nil {
		return resource.File{}, err
	}
	return f, nil
}

func (repo *ResourceRepository) GetFile(ctx context.Context, id string) (resource.File, error) {
	files, err := repo.files.load(ctx)
	if err != nil {
		return resource.File{}, err
	}
	for _, f := range files {
		if f.ID == id {
			return f, nil
		}
	}
	return resource.File{}, core.ErrNotFound
}

func (repo *ResourceRepository) QueryFilesByFolder(ctx context.Context, folderID string) ([]resource.File, error) {
	files, err := repo.files.load(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]resource.File, 0, len(files))
	for _, f := range files {
		if f.FolderID == folderID {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

func (repo *ResourceRepository) UpdateFile(ctx context.Context, f resource.File) (resource.File, error) {
	files, err := repo.files.load(ctx)
	if err != nil {
		return resource.File{}, err
	}
	for i, existing := range files {
		if existing.ID == f.ID {
			files[i] = f
			if err = repo.files.save(ctx, files); err != nil {
				return resource.File{}, err
			}
			return f, nil
		}
	}
	return resource.File{}, core.ErrNotFound
}

func (repo *ResourceRepository) DeleteFile(ctx context.Context, id string) error {
	files, err := repo.files.load(ctx)
	if err != nil {
		return err
	}
	kept := files[:0]
	for _, f := range files {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	return repo.files.save(ctx, kept)
}

func (repo *ResourceRepository) DeleteFilesByFolder(ctx context.Context, folderID string) error {
	files, err := repo.files.load(ctx)
	if err != nil {
		return err
	}
	kept := files[:0]
	for _, f := range files {
		if f.FolderID != folderID {
			kept = append(kept, f)
		}
	}
	return repo.files.save(ctx, kept)
}

// DeleteFilesByCourse is part of the catalog's course-deletion cascade.
func (repo *ResourceRepository) DeleteFilesByCourse(ctx context.Context, courseID string) error {
	files, err := repo.files.load(ctx)
	if err != nil {
		return err
	}
	kept := files[:0]
	for _, f := range files {
		if f.CourseID != courseID {
			kept = append(kept, f)
		}
	}
	return repo.files.save(ctx, kept)
}
