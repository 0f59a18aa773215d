package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// Users prints every registered account. Password hashes are never shown.
func (a *App) Users(ctx context.Context) error {
	list, err := a.accounts.Users(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.say("No users registered.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tFULL NAME\tEMAIL\tBIRTHDATE")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Username, u.Fullname, u.Email, u.Birthdate)
	}
	return tw.Flush()
}
