package cli

import (
	"strings"

	"musicalist/internal/format"

	"github.com/spf13/cobra"
)

type userOut struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Authors with a list on this machine",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			names := s.bridge.Users().List(cmd.Context())
			out := make([]userOut, 0, len(names))
			for _, n := range names {
				out = append(out, userOut{Name: n, Location: s.bridge.UserLocation(n)})
			}
			return writeOut(cmd, app, format.Envelope{Data: out})
		},
	}
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Forget an author and delete their stored list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !s.bridge.Users().Contains(cmd.Context(), name) {
				return writeErr(cmd, errNotFound("user", name))
			}
			v, err := s.bridge.DeleteUser(cmd.Context(), name)
			s.view = v
			if serr := s.save(cmd.Context()); serr != nil && err == nil {
				err = serr
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeList(cmd, app, s, map[string]any{"deletedUser": name})
		},
	}
}
