// Package kvdb persists the app's collections on a flat key-value substrate:
// each named collection is read and written as one whole JSON document
// holding an ordered record list. The substrate has no transactions, no
// foreign keys and no locking; relationship and invariant enforcement is
// entirely the job of the core services sitting on top.
package kvdb

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Collection names. One substrate document per collection.
const (
	CollAccounts        = "accounts"
	CollTeacherProfiles = "teacher_profiles"
	CollStudentProfiles = "student_profiles"
	CollCourses         = "courses"
	CollEnrollments     = "course_enrollments"
	CollHomeworks       = "homeworks"
	CollSubmissions     = "homework_submissions"
	CollFolders         = "course_folders"
	CollFiles           = "course_files"
)

// Collections lists every known collection, in creation order.
var Collections = []string{
	CollAccounts,
	CollTeacherProfiles,
	CollStudentProfiles,
	CollCourses,
	CollEnrollments,
	CollHomeworks,
	CollSubmissions,
	CollFolders,
	CollFiles,
}

// DB is the persistence substrate: whole-document get/set per named
// collection. Get returns nil data (and no error) for an unset collection.
type DB interface {
	Get(ctx context.Context, collection string) ([]byte, error)
	Put(ctx context.Context, collection string, data []byte) error
	Close() error
}

// collection is a thin typed wrapper over one named collection. It has no
// knowledge of relationships; records keep their insertion order. Unknown
// JSON fields are dropped and missing ones zeroed, so adding a field to a
// record type stays backward-compatible with previously written data.
type collection[T any] struct {
	db   DB
	name string
}

func newCollection[T any](db DB, name string) collection[T] {
	return collection[T]{db: db, name: name}
}

func (c collection[T]) load(ctx context.Context) ([]T, error) {
	data, err := c.db.Get(ctx, c.name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading collection %s", c.name)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var recs []T
	if err = json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrapf(err, "decoding collection %s", c.name)
	}
	return recs, nil
}

func (c collection[T]) save(ctx context.Context, recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return errors.Wrapf(err, "encoding collection %s", c.name)
	}
	if err = c.db.Put(ctx, c.name, data); err != nil {
		return errors.Wrapf(err, "writing collection %s", c.name)
	}
	return nil
}
