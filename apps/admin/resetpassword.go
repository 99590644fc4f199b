package main

import (
	"context"
	"time"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	std, err := cli.stdRepo.GetStudent(ctx, student.GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if err = std.SetPassword(pwd); err != nil {
		return err
	}
	std.UpdatedAt = time.Now().UTC()
	_, err = cli.stdRepo.UpdateStudent(ctx, std, nil)
	return err
}
