package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []User, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		GetUserByName(ctx context.Context, name string, exec ...core.DBExecutor) (User, error)
		GetUserByGoogleID(ctx context.Context, googleID string, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		SetLastLogin(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Role:      nu.Role,
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

// GetOrCreateOAuthUser resolves a Google login to a local account, linking
// by google id first, then by verified email, creating a student account
// when neither matches. OAuth accounts carry no usable password hash.
func (svc *Service) GetOrCreateOAuthUser(ctx context.Context, googleID, email, name string) (User, error) {
	email = core.CleanString(email, true /* lower */)

	if usr, err := svc.repo.GetUserByGoogleID(ctx, googleID); err == nil {
		return usr, nil
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, err
	}

	if usr, err := svc.repo.GetUserByEmail(ctx, email); err == nil {
		usr.GoogleID = googleID
		usr.UpdatedAt = time.Now().UTC()
		return svc.repo.UpdateUser(ctx, usr)
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Role:      RoleStudent,
		Name:      core.CleanString(name),
		Email:     email,
		GoogleID:  googleID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = uu.Name
	usr.UpdatedAt = time.Now().UTC()
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids)
}

// RequestPasswordReset mails a reset link to the account with this email,
// if one exists.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

func (svc *Service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to Collegia",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account is ready. Log in at %s to get started.\n\n- %s Team",
			usr.Name, svc.conf.AppName, svc.conf.FrontendBaseURL, svc.conf.AppName,
		),
	})
}

func (svc *Service) sendPasswordResetMail(usr User) {
	token := MakeToken(usr)
	link := fmt.Sprintf("%s/password-reset?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password Reset",
		Body: fmt.Sprintf(
			"Hi %s,\n\nFollow this link to reset your password:\n%s\n\n"+
				"If you did not request a reset, you can safely ignore this email.\n\n- %s Team",
			usr.Name, link, svc.conf.AppName,
		),
	})
}
