package main

import (
	"context"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
)

// linkChild records the guardian relationship on both sides: the child's
// parentIds drive fanout, the parent's childrenIds drive the parent app's
// child list.
func (cli *commandLine) linkChild(childID, parentID string) error {
	ctx := context.Background()

	c, err := cli.childSvc.Get(ctx, childID)
	if err != nil {
		return err
	}
	if !contains(c.ParentIDs, parentID) {
		c.ParentIDs = append(c.ParentIDs, parentID)
		if err = cli.childSvc.SaveProfile(ctx, c); err != nil {
			return err
		}
	}

	parent, err := cli.accountSvc.GetParent(ctx, parentID)
	if err != nil {
		return err
	}
	if !contains(parent.ChildrenIDs, childID) {
		ids := append(parent.ChildrenIDs, childID)
		if err = cli.store.Set(ctx, account.ParentCollection, parentID, core.Document{"childrenIds": ids}, true); err != nil {
			return err
		}
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
