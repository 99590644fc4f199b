package main

import (
	"context"
	"time"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

// addStudent updates or creates a verified student account.
func (cli *commandLine) addStudent(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	std, err := cli.stdRepo.GetStudent(ctx, student.GetFilter{Email: email})
	if err != nil {
		if err != student.ErrNotFound {
			return err
		}
		std = student.Student{
			Name:      name,
			Email:     email,
			Plan:      student.PlanFreemium,
			Subjects:  student.DefaultSubjects,
			CreatedAt: now,
		}
		if err = std.SetPassword(pwd); err != nil {
			return err
		}
		std.UpdatedAt = now
		verified := true
		if std, err = cli.stdRepo.CreateStudent(ctx, std); err != nil {
			return err
		}
		_, err = cli.stdRepo.UpdateStudent(ctx, std, &verified)
		return err
	}

	std.Name = name
	if err = std.SetPassword(pwd); err != nil {
		return err
	}
	std.UpdatedAt = now
	verified := true
	_, err = cli.stdRepo.UpdateStudent(ctx, std, &verified)
	return err
}
