package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	"github.com/littleoaks/backend/core/child"
	testutil "github.com/littleoaks/backend/tests"
)

func setup(t *testing.T) (*commandLine, core.Store) {
	store := testutil.OpenStore()
	logger := testutil.NewQuietLogger()
	identity := testutil.NewIdentity(store, logger)

	cli := &commandLine{
		db:         &sqlx.DB{}, // migrations are mocked out
		store:      store,
		accountSvc: account.NewService(store, identity, nil /* tokens */, logger),
		childSvc:   child.NewService(store, logger),
	}
	return cli, store
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

type addStaffExtra struct {
	pwd            string
	wantValidation bool
}

func asExtra(v interface{}) addStaffExtra {
	e, _ := v.(addStaffExtra)
	return e
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_addStaff(t *testing.T) {
	cli, store := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addstaff"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addstaff", "-email", "t@test.cd"}, wantErr: errHelp},
		{name: "weak password", args: []string{"addstaff", "-email", "t@test.cd"}, extra: addStaffExtra{pwd: "short", wantValidation: true}},
		{name: "staff", args: []string{"addstaff", "-email", "t@test.cd"}, extra: addStaffExtra{pwd: "S3cret!pass"}},
		{name: "admin", args: []string{"addstaff", "-email", "boss@test.cd", "-admin"}, extra: addStaffExtra{pwd: "S3cret!pass"}},
		{name: "duplicate email", args: []string{"addstaff", "-email", "t@test.cd"}, extra: addStaffExtra{pwd: "S3cret!pass"}, wantErr: core.ErrEmailTaken},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(asExtra(tt.extra).pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case asExtra(tt.extra).wantValidation:
				if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
					t.Errorf("cli.run() error = %v, want a validation error", err)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	// roles landed on the profiles
	docs, err := store.Query(context.Background(), account.StaffCollection, core.DocQuery{Field: "email", Equals: "boss@test.cd"})
	if err != nil || len(docs) != 1 {
		t.Fatalf("Query() = %v docs, err %v", len(docs), err)
	}
	if docs[0].String("role") != "admin" {
		t.Errorf("role = %v, want admin", docs[0].String("role"))
	}
}

func Test_commandLine_linkChild(t *testing.T) {
	cli, store := setup(t)
	ctx := context.Background()

	testutil.CreateChild(t, store, "c1", "Nia")
	testutil.CreateParentProfile(t, store, "p1", "mom@test.cd")

	tests := []cliTest{
		{name: "missing child flag", args: []string{"linkchild", "-parent", "p1"}, wantErr: errHelp},
		{name: "missing parent flag", args: []string{"linkchild", "-child", "c1"}, wantErr: errHelp},
		{name: "unknown child", args: []string{"linkchild", "-child", "ghost", "-parent", "p1"}, wantErr: core.ErrDocNotFound},
		{name: "link", args: []string{"linkchild", "-child", "c1", "-parent", "p1"}},
		{name: "link is idempotent", args: []string{"linkchild", "-child", "c1", "-parent", "p1"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	c, err := cli.childSvc.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if len(c.ParentIDs) != 1 || c.ParentIDs[0] != "p1" {
		t.Errorf("child parentIds = %v, want [p1]", c.ParentIDs)
	}

	parent, err := cli.accountSvc.GetParent(ctx, "p1")
	if err != nil {
		t.Fatalf("GetParent() failed: %v", err)
	}
	if len(parent.ChildrenIDs) != 1 || parent.ChildrenIDs[0] != "c1" {
		t.Errorf("parent childrenIds = %v, want [c1]", parent.ChildrenIDs)
	}
}
