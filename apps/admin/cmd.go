package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	acctRepo account.Repository
	acctSvc  *account.Service
	catSvc   *catalog.Service
	asgSvc   *assignment.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  seed - create demo accounts, profiles, courses and homeworks")
	fmt.Println("  resetpassword -handle HANDLE - reset an account's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordHandle := resetPasswordCmd.String("handle", "", "The account's handle. The password will be prompted next.")

	switch args[1] {
	case "seed":
		return cli.seed()
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordHandle == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordHandle, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
