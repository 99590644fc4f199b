package student

import (
	"context"
	"time"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/score"
)

type serviceMock struct {
	service
}

func NewServiceMock(repo Repository, scoreSvc score.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{service: *NewService(repo, scoreSvc, mailSvc, conf)}
}

func (svc *serviceMock) Register(ctx context.Context, ns NewStudent) (Student, error) {
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

	// run synchronously
	svc.sendVerificationMail(std)
	return std, nil
}

func (svc *serviceMock) RequestEmailVerification(ctx context.Context, email string) error {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if std.IsVerified {
		return ErrAlreadyVerified
	}
	// run synchronously
	svc.sendVerificationMail(std)
	return nil
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	std, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(std)
	return nil
}
