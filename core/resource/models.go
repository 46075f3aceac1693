package resource

import (
	"time"

	"github.com/tsongo/darasa/core"
)

type Folder struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"` // unique within the course
	CreatedAt time.Time `json:"created_at"` // UTC
}

type File struct {
	ID       string `json:"id"`
	FolderID string `json:"folder_id"`
	CourseID string `json:"course_id"`
	Name     string `json:"name"` // unique within the folder
	Size     int64  `json:"size"`
	Type     string `json:"type"`    // MIME type
	Content  string `json:"content"` // base64 payload
	CreatedAt time.Time `json:"created_at"` // UTC
}

// FileInfo is a File without its content payload, for listings.
type FileInfo struct {
	ID        string    `json:"id"`
	FolderID  string    `json:"folder_id"`
	CourseID  string    `json:"course_id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func (f File) Info() FileInfo {
	return FileInfo{
		ID:        f.ID,
		FolderID:  f.FolderID,
		CourseID:  f.CourseID,
		Name:      f.Name,
		Size:      f.Size,
		Type:      f.Type,
		CreatedAt: f.CreatedAt,
	}
}

// FolderWithFiles is a folder annotated with its files and derived count.
type FolderWithFiles struct {
	Folder
	Files     []FileInfo `json:"files"`
	FileCount int        `json:"file_count"`
}

// NewFolder contains information needed to create a Folder.
type NewFolder struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (nf *NewFolder) Validate() error {
	nf.Name = core.CleanString(nf.Name)
	return core.Validate.Struct(nf)
}

// NewFile contains information needed to upload a File. The core performs
// no content-type or size validation; that is a caller concern.
type NewFile struct {
	Name    string `json:"name" validate:"required,max=255"`
	Size    int64  `json:"size"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (nf *NewFile) Validate() error {
	nf.Name = core.CleanString(nf.Name)
	return core.Validate.Struct(nf)
}
