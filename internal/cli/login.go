package cli

import (
	"fmt"
	"sort"
	"strings"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/internal/guard"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		token    string
		baseURL  string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token in the session file",
		Long:  "Save a bearer token issued by the identity provider. Unless --no-verify is set the token is checked against the API and its role is cached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			s, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				s.BaseURL = baseURL
			}
			s.Token = token
			s.CachedRole = ""

			if !noVerify {
				client := guard.NewIdentityClient(guard.ClientConfig{
					BaseURL: s.BaseURL,
					Logger:  opts.logger(),
				})
				roles, err := client.Roles(cmd.Context(), token)
				if err != nil {
					return fmt.Errorf("verifying token: %w", err)
				}
				s.CachedRole = primaryRole(roles)
			}

			if err := saveSession(opts.sessionPath, s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if s.CachedRole != "" {
				fmt.Fprintf(out, "Logged in to %s as %s\n", s.BaseURL, s.CachedRole)
			} else {
				fmt.Fprintf(out, "Logged in to %s\n", s.BaseURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&baseURL, "url", "", "API base URL (default "+defaultBaseURL+")")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Store the token without contacting the API")

	return cmd
}

// primaryRole picks the role to cache: ADMIN when present, otherwise the
// first role in sorted order.
func primaryRole(roles guard.RoleSet) string {
	if roles.Has(auth.RoleAdmin) {
		return auth.RoleAdmin
	}
	names := make([]string, 0, len(roles))
	for r := range roles {
		names = append(names, r)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
