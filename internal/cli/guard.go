package cli

import (
	"context"
	"fmt"

	"petcare-inventory-api/internal/guard"

	"github.com/spf13/cobra"
)

// accessDeniedError is returned when the admin guard does not allow access.
type accessDeniedError struct {
	decision guard.Decision
}

func (e *accessDeniedError) Error() string {
	if e.decision.State == guard.StateNoToken {
		return "not logged in; run invctl login --token <token>"
	}
	if e.decision.Err != nil {
		return fmt.Sprintf("admin access denied: %v", e.decision.Err)
	}
	return "admin access denied"
}

// checkAdmin runs the admin guard for the stored session.
func checkAdmin(ctx context.Context, opts *rootOptions, s session) guard.Decision {
	log := opts.logger()
	g := guard.New(guard.Config{
		Verifier: guard.NewIdentityClient(guard.ClientConfig{
			BaseURL: s.BaseURL,
			Logger:  log,
		}),
		Logger: log,
	})

	check := g.Mount(ctx, s.guardSession())
	defer check.Unmount()
	return check.Wait()
}

func newGuardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "guard",
		Short: "Check whether the session may use admin features",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}

			d := checkAdmin(cmd.Context(), opts, s)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", d.State)
			if d.Redirect != "" {
				fmt.Fprintf(out, "redirect: %s\n", d.Redirect)
			}
			if !d.Allowed() {
				return &accessDeniedError{decision: d}
			}
			return nil
		},
	}
}
