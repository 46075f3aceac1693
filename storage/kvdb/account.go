package kvdb

import (
	"context"
	"time"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
)

// accountRecord is the persisted shape of an account; it carries the
// password hash the API-facing model keeps out of its JSON.
type accountRecord struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash []byte    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAccountRecord(acct account.Account) accountRecord {
	return accountRecord{
		ID:           acct.ID,
		Handle:       acct.Handle,
		PasswordHash: acct.PasswordHash,
		Role:         acct.Role,
		CreatedAt:    acct.CreatedAt,
	}
}

func (rec accountRecord) toAccount() account.Account {
	return account.Account{
		ID:           rec.ID,
		Handle:       rec.Handle,
		PasswordHash: rec.PasswordHash,
		Role:         rec.Role,
		CreatedAt:    rec.CreatedAt,
	}
}

type AccountRepository struct {
	accounts collection[accountRecord]
	teachers collection[account.TeacherProfile]
	students collection[account.StudentProfile]
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{
		accounts: newCollection[accountRecord](db, CollAccounts),
		teachers: newCollection[account.TeacherProfile](db, CollTeacherProfiles),
		students: newCollection[account.StudentProfile](db, CollStudentProfiles),
	}
}

// CheckHandleUniqueness matches handles case-sensitively and exactly.
func (repo *AccountRepository) CheckHandleUniqueness(ctx context.Context, handle string) error {
	recs, err := repo.accounts.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.Handle == handle {
			return account.ErrDuplicateHandle
		}
	}
	return nil
}

func (repo *AccountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	recs, err := repo.accounts.load(ctx)
	if err != nil {
		return account.Account{}, err
	}
	recs = append(recs, toAccountRecord(acct))
	if err = repo.accounts.save(ctx, recs); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (repo *AccountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	recs, err := repo.accounts.load(ctx)
	if err != nil {
		return account.Account{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec.toAccount(), nil
		}
	}
	return account.Account{}, core.ErrNotFound
}

func (repo *AccountRepository) GetAccountByHandle(ctx context.Context, handle string) (account.Account, error) {
	recs, err := repo.accounts.load(ctx)
	if err != nil {
		return account.Account{}, err
	}
	for _, rec := range recs {
		if rec.Handle == handle {
			return rec.toAccount(), nil
		}
	}
	return account.Account{}, core.ErrNotFound
}

func (repo *AccountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	recs, err := repo.accounts.load(ctx)
	if err != nil {
		return account.Account{}, err
	}
	for i, rec := range recs {
		if rec.ID == acct.ID {
			recs[i] = toAccountRecord(acct)
			if err = repo.accounts.save(ctx, recs); err != nil {
				return account.Account{}, err
			}
			return acct, nil
		}
	}
	return account.Account{}, core.ErrNotFound
}

func (repo *AccountRepository) CreateTeacherProfile(ctx context.Context, tp account.TeacherProfile) (account.TeacherProfile, error) {
	profs, err := repo.teachers.load(ctx)
	if err != nil {
		return account.TeacherProfile{}, err
	}
	profs = append(profs, tp)
	if err = repo.teachers.save(ctx, profs); err != nil {
		return account.TeacherProfile{}, err
	}
	return tp, nil
}

func (repo *AccountRepository) CreateStudentProfile(ctx context.Context, sp account.StudentProfile) (account.StudentProfile, error) {
	profs, err := repo.students.load(ctx)
	if err != nil {
		return account.StudentProfile{}, err
	}
	profs = append(profs, sp)
	if err = repo.students.save(ctx, profs); err != nil {
		return account.StudentProfile{}, err
	}
	return sp, nil
}

func (repo *AccountRepository) GetTeacherProfileByHandle(ctx context.Context, handle string) (account.TeacherProfile, error) {
	profs, err := repo.teachers.load(ctx)
	if err != nil {
		return account.TeacherProfile{}, err
	}
	for _, tp := range profs {
		if tp.Handle == handle {
			return tp, nil
		}
	}
	return account.TeacherProfile{}, core.ErrNotFound
}

func (repo *AccountRepository) GetStudentProfileByHandle(ctx context.Context, handle string) (account.StudentProfile, error) {
	profs, err := repo.students.load(ctx)
	if err != nil {
		return account.StudentProfile{}, err
	}
	for _, sp := range profs {
		if sp.Handle == handle {
			return sp, nil
		}
	}
	return account.StudentProfile{}, core.ErrNotFound
}

func (repo *AccountRepository) QueryStudentProfiles(ctx context.Context) ([]account.StudentProfile, error) {
	return repo.students.load(ctx)
}
