package student

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/score"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrEmailExists     = errors.New("a student with this email already exists")
	ErrAlreadyVerified = errors.New("email address already verified")
	ErrNotEnrolled     = errors.New("student is not enrolled in this subject")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, isVerified *bool) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service interface {
		CheckUniqueness(email string, excluded ...Student) error
		Register(ctx context.Context, ns NewStudent) (Student, error)
		VerifyEmail(ctx context.Context, ve VerifyStudentEmail) (Student, error)
		RequestEmailVerification(ctx context.Context, email string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetStudentPassword) error
		ChangePassword(ctx context.Context, id string, cp ChangeStudentPassword) (Student, error)
		AddSubject(ctx context.Context, id, subject string) (Student, error)
		RemoveSubject(ctx context.Context, id, subject string) (Student, error)
		UpdatePlan(ctx context.Context, email, plan string) (Student, error)
		UpdateLastLogin(ctx context.Context, std Student) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByEmail(ctx context.Context, email string) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo     Repository
		scoreSvc score.Service
		mailSvc  core.EmailService
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, scoreSvc score.Service, mailSvc core.EmailService, conf *core.Config) *service {
	secretKey = []byte(conf.SecretKey)
	verificationTimeoutDelta = conf.VerificationTimeoutDelta
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &service{
		repo:     repo,
		scoreSvc: scoreSvc,
		mailSvc:  mailSvc,
		conf:     conf,
	}
}

func (svc *service) CheckUniqueness(email string, excluded ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excluded...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a Student on the Freemium plan, opens a score board entry
// per enrolled subject and emails a verification link.
func (svc *service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		Name:      ns.Name,
		Email:     ns.Email,
		Plan:      PlanFreemium,
		Subjects:  ns.Subjects,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(std.Subjects) == 0 {
		std.Subjects = append(std.Subjects, DefaultSubjects...)
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	if _, err = svc.scoreSvc.Enroll(ctx, std.ID, std.Subjects...); err != nil {
		return Student{}, err
	}

	go svc.sendVerificationMail(std)
	return std, nil
}

func (svc *service) VerifyEmail(ctx context.Context, ve VerifyStudentEmail) (Student, error) {
	std, err := svc.getByUID(ctx, ve.UID)
	if err != nil {
		return Student{}, err
	}
	if std.IsVerified {
		return std, ErrAlreadyVerified
	}
	if err = verifyToken(std, ve.Token, purposeEmailVerification); err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	verified := true
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, &verified)
}

// RequestEmailVerification re-sends the verification link to an
// unverified student.
func (svc *service) RequestEmailVerification(ctx context.Context, email string) error {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if std.IsVerified {
		return ErrAlreadyVerified
	}
	go svc.sendVerificationMail(std)
	return nil
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(std)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetStudentPassword) error {
	std, err := svc.getByUID(ctx, rp.UID)
	if err != nil {
		return err
	}
	if err = verifyToken(std, rp.Token, purposePasswordReset); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	if err = std.SetPassword(rp.Password); err != nil {
		return err
	}
	std.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateStudent(ctx, std, nil)
	return err
}

func (svc *service) ChangePassword(ctx context.Context, id string, cp ChangeStudentPassword) (Student, error) {
	std, err := svc.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = std.CheckPassword(cp.OldPassword); err != nil {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "old_password", Error: "invalid password"})
	}
	if cp.Password == cp.OldPassword {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "password", Error: "new password cannot be the same as the old password"})
	}

	if err = std.SetPassword(cp.Password); err != nil {
		return Student{}, err
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, nil)
}

func (svc *service) AddSubject(ctx context.Context, id, subject string) (Student, error) {
	if !IsSubject(subject) {
		return Student{}, core.NewValidationError(nil, core.FieldError{Field: "subject", Error: "unknown subject"})
	}

	std, err := svc.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.HasSubject(subject) {
		return std, nil
	}

	std.Subjects = append(std.Subjects, subject)
	std.UpdatedAt = time.Now().UTC()
	if std, err = svc.repo.UpdateStudent(ctx, std, nil); err != nil {
		return Student{}, err
	}
	if _, err = svc.scoreSvc.Enroll(ctx, std.ID, subject); err != nil {
		return Student{}, err
	}
	return std, nil
}

func (svc *service) RemoveSubject(ctx context.Context, id, subject string) (Student, error) {
	std, err := svc.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if !std.HasSubject(subject) {
		return Student{}, ErrNotEnrolled
	}

	subjects := make([]string, 0, len(std.Subjects)-1)
	for _, sub := range std.Subjects {
		if sub != subject {
			subjects = append(subjects, sub)
		}
	}
	std.Subjects = subjects
	std.UpdatedAt = time.Now().UTC()
	if std, err = svc.repo.UpdateStudent(ctx, std, nil); err != nil {
		return Student{}, err
	}
	if err = svc.scoreSvc.Unenroll(ctx, std.ID, subject); err != nil && err != score.ErrNotFound {
		return Student{}, err
	}
	return std, nil
}

// UpdatePlan moves the student identified by email to the given plan.
// Unknown plans fall back to Freemium.
func (svc *service) UpdatePlan(ctx context.Context, email, plan string) (Student, error) {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Student{}, err
	}
	std.Plan = NormalizePlan(plan)
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, nil)
}

func (svc *service) UpdateLastLogin(ctx context.Context, std Student) (Student, error) {
	now := time.Now().UTC()
	std.LastLogin = now
	std.UpdatedAt = now
	return svc.repo.UpdateStudent(ctx, std, nil)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.GetByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	std.Name = us.Name
	std.Email = us.Email
	if us.Plan != "" {
		std.Plan = us.Plan
	}
	if us.Subjects != nil {
		std.Subjects = us.Subjects
	}
	if us.Password != "" {
		if err = std.SetPassword(us.Password); err != nil {
			return Student{}, err
		}
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std, nil)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids...)
	return err
}

func (svc *service) getByUID(ctx context.Context, uid string) (Student, error) {
	id, err := decodeUID(uid)
	if err != nil {
		return Student{}, core.NewValidationError(errInvalidToken, core.FieldError{Field: "uid", Error: errInvalidToken.Error()})
	}
	return svc.GetByID(ctx, id)
}

func (svc *service) sendVerificationMail(std Student) {
	token, err := makeToken(std, purposeEmailVerification)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Verify your email address",
		TemplateName: "email-verification",
		TemplateData: mailData{
			Name:    std.Name,
			URL:     fmt.Sprintf("%s/verifyEmail?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(std), token),
			Timeout: formatTimeout(svc.conf.VerificationTimeoutDelta),
		},
	})
}

func (svc *service) sendPasswordResetMail(std Student) {
	token, err := makeToken(std, purposePasswordReset)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: mailData{
			Name:    std.Name,
			URL:     fmt.Sprintf("%s/resetPassword?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(std), token),
			Timeout: formatTimeout(svc.conf.PasswordResetTimeoutDelta),
		},
	})
}

type mailData struct {
	Name    string
	URL     string
	Timeout string
}

func formatTimeout(d time.Duration) string {
	if d >= time.Hour {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
