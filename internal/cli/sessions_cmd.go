package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soyeahso/valet/internal/store"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored chat sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := cfg.Session.DBPath
			if dbPath == "" {
				dbPath = paths.DB
			}
			db, err := store.Open(dbPath, log)
			if err != nil {
				return err
			}
			defer db.Close()

			infos, err := store.NewChatStore(db).Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}

			for _, info := range infos {
				line := fmt.Sprintf("%s  %d messages", info.ID, info.Messages)
				if len(info.Tags) > 0 {
					line += "  [" + strings.Join(info.Tags, ", ") + "]"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
