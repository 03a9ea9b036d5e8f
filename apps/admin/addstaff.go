package main

import (
	"context"
	"fmt"

	"github.com/littleoaks/backend/core/account"
)

// addStaff provisions a staff principal and its profile through the
// registration workflow.
func (cli *commandLine) addStaff(email, pwd string, isAdmin bool) error {
	role := account.RoleStaff
	if isAdmin {
		role = account.RoleAdmin
	}

	id, err := cli.accountSvc.Register(context.Background(), account.Registration{
		Email:    email,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s account created: %s\n", role, id)
	return nil
}
