package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/child"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	store      core.Store
	accountSvc *account.Service
	childSvc   *child.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addstaff -email EMAIL [-admin] - create a staff account; the password is prompted next")
	fmt.Println("  linkchild -child CHILD_ID -parent PARENT_ID - link a child to a guardian")
	fmt.Println("  migrate up|down|status|... - run database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStaffCmd := flag.NewFlagSet("addstaff", flag.ExitOnError)
	addStaffEmail := addStaffCmd.String("email", "", "The staff member's email. The password will be prompted next.")
	addStaffAdmin := addStaffCmd.Bool("admin", false, "Grant the admin role.")

	linkChildCmd := flag.NewFlagSet("linkchild", flag.ExitOnError)
	linkChildID := linkChildCmd.String("child", "", "The child's id.")
	linkParentID := linkChildCmd.String("parent", "", "The guardian's principal id.")

	switch args[1] {
	case "addstaff":
		if err := addStaffCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStaffEmail == "" {
			addStaffCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addStaffCmd.Usage()
			return errHelp
		}
		return cli.addStaff(*addStaffEmail, string(pwd), *addStaffAdmin)
	case "linkchild":
		if err := linkChildCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *linkChildID == "" || *linkParentID == "" {
			linkChildCmd.Usage()
			return errHelp
		}
		return cli.linkChild(*linkChildID, *linkParentID)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
