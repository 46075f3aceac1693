package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tsongo/darasa/core"
)

var (
	// errors
	ErrDuplicateHandle    = errors.New("an account with this handle already exists")
	ErrInvalidCredentials = errors.New("invalid handle or password")
	ErrProfileMissing     = errors.New("no profile matches this account")
)

type (
	Repository interface {
		CheckHandleUniqueness(ctx context.Context, handle string) error
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByHandle(ctx context.Context, handle string) (Account, error)
		UpdateAccount(ctx context.Context, acct Account) (Account, error)

		CreateTeacherProfile(ctx context.Context, tp TeacherProfile) (TeacherProfile, error)
		CreateStudentProfile(ctx context.Context, sp StudentProfile) (StudentProfile, error)
		GetTeacherProfileByHandle(ctx context.Context, handle string) (TeacherProfile, error)
		GetStudentProfileByHandle(ctx context.Context, handle string) (StudentProfile, error)
		QueryStudentProfiles(ctx context.Context) ([]StudentProfile, error)
	}

	Service struct {
		conf *core.Config
		repo Repository
		lock *core.LockManager
	}
)

var nowFunc = time.Now // mockable

func NewService(conf *core.Config, repo Repository, lock *core.LockManager) *Service {
	return &Service{conf: conf, repo: repo, lock: lock}
}

// Register appends a new Account. It deliberately does not create the
// matching profile row; profiles are seeded separately.
func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, error) {
	acct := Account{
		ID:        uuid.NewString(),
		Handle:    na.Handle,
		Role:      na.Role,
		CreatedAt: nowFunc().UTC(),
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, err
	}

	err := svc.lock.Execute(core.WriteOp, func() error {
		if err := svc.repo.CheckHandleUniqueness(ctx, na.Handle); err != nil {
			return err
		}
		var err error
		acct, err = svc.repo.CreateAccount(ctx, acct)
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

// Authenticate checks the credentials and issues a session token. Unknown
// handle and password mismatch both return ErrInvalidCredentials so callers
// cannot tell which failed.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (Session, error) {
	var acct Account
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		acct, err = svc.repo.GetAccountByHandle(ctx, creds.Handle)
		return err
	})
	if err != nil {
		if err == core.ErrNotFound {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err = acct.CheckPassword(creds.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token, err := makeSessionToken(acct, svc.conf)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Account: acct}, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	var acct Account
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		acct, err = svc.repo.GetAccountByID(ctx, id)
		return err
	})
	return acct, err
}

// ProfileByAccountID resolves the role-matching profile row via handle
// equality. Account existence does not guarantee profile existence:
// ErrProfileMissing is returned when no profile row matches.
func (svc *Service) ProfileByAccountID(ctx context.Context, id string) (Profile, error) {
	var prof Profile
	err := svc.lock.Execute(core.ReadOp, func() error {
		acct, err := svc.repo.GetAccountByID(ctx, id)
		if err != nil {
			return err
		}
		prof.Role = acct.Role

		switch acct.Role {
		case RoleTeacher:
			tp, err := svc.repo.GetTeacherProfileByHandle(ctx, acct.Handle)
			if err != nil {
				if err == core.ErrNotFound {
					return ErrProfileMissing
				}
				return err
			}
			prof.Teacher = &tp
		case RoleStudent:
			sp, err := svc.repo.GetStudentProfileByHandle(ctx, acct.Handle)
			if err != nil {
				if err == core.ErrNotFound {
					return ErrProfileMissing
				}
				return err
			}
			prof.Student = &sp
		default:
			return ErrProfileMissing
		}
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return prof, nil
}

func (svc *Service) ChangePassword(ctx context.Context, id string, cp ChangePassword) error {
	return svc.lock.Execute(core.WriteOp, func() error {
		acct, err := svc.repo.GetAccountByID(ctx, id)
		if err != nil {
			return err
		}
		if err = acct.CheckPassword(cp.OldPassword); err != nil {
			return ErrInvalidCredentials
		}
		if err = acct.SetPassword(cp.NewPassword); err != nil {
			return err
		}
		_, err = svc.repo.UpdateAccount(ctx, acct)
		return err
	})
}

func (svc *Service) CreateTeacherProfile(ctx context.Context, np NewTeacherProfile) (TeacherProfile, error) {
	tp := TeacherProfile{
		ID:        uuid.NewString(),
		Handle:    np.Handle,
		TeacherNo: np.TeacherNo,
		Name:      np.Name,
		Gender:    np.Gender,
		Email:     np.Email,
		CreatedAt: nowFunc().UTC(),
	}
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		tp, err = svc.repo.CreateTeacherProfile(ctx, tp)
		return err
	})
	if err != nil {
		return TeacherProfile{}, err
	}
	return tp, nil
}

func (svc *Service) CreateStudentProfile(ctx context.Context, np NewStudentProfile) (StudentProfile, error) {
	sp := StudentProfile{
		ID:        uuid.NewString(),
		Handle:    np.Handle,
		StudentNo: np.StudentNo,
		Name:      np.Name,
		ClassName: np.ClassName,
		Gender:    np.Gender,
		CreatedAt: nowFunc().UTC(),
	}
	err := svc.lock.Execute(core.WriteOp, func() error {
		var err error
		sp, err = svc.repo.CreateStudentProfile(ctx, sp)
		return err
	})
	if err != nil {
		return StudentProfile{}, err
	}
	return sp, nil
}

func (svc *Service) ListStudentProfiles(ctx context.Context) ([]StudentProfile, error) {
	var profs []StudentProfile
	err := svc.lock.Execute(core.ReadOp, func() error {
		var err error
		profs, err = svc.repo.QueryStudentProfiles(ctx)
		return err
	})
	return profs, err
}
