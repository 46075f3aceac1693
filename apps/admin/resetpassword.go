package main

import (
	"context"
)

func (cli *commandLine) resetPassword(handle, pwd string) error {
	ctx := context.Background()
	acct, err := cli.acctRepo.GetAccountByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if err := acct.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.acctRepo.UpdateAccount(ctx, acct); err != nil {
		return err
	}
	return nil
}
