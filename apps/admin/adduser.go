package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	switch role {
	case user.RoleStudent, user.RoleProfessor, user.RoleAdmin: // pass
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Role:      role,
			Name:      name,
			Email:     email,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
