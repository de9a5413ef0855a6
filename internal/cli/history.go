package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved conversation sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(GetConfig(), GetRootDir())
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.ListSessions()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(out, "%s  %3d turns  %s\n", s.ID, s.Turns, s.UpdatedAt.Format(time.DateTime))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print a session's conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(GetConfig(), GetRootDir())
		if err != nil {
			return err
		}
		defer st.Close()

		turns, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if len(turns) == 0 {
			return fmt.Errorf("session %s not found", args[0])
		}

		out := cmd.OutOrStdout()
		for _, t := range turns {
			fmt.Fprintf(out, "%s: %s\n\n", t.Role, t.Text)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear <session>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory(GetConfig(), GetRootDir())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
}
