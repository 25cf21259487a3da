package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chemviz-cli/internal/render"
)

var histSelect int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List prior datasets, or show one with --select",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := newSession()
		out := cmd.OutOrStdout()
		if histSelect > 0 {
			if _, err := selectFromHistory(cmd.Context(), sess, histSelect); err != nil {
				return err
			}
			fmt.Fprint(out, render.Dashboard(sess.Snapshot(), render.Options{Cursor: -1}))
			return nil
		}
		sess.LoadHistory(cmd.Context())
		fmt.Fprint(out, render.History(sess.Snapshot(), -1))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&histSelect, "select", "s", 0, "show the Nth most recent dataset (1 = latest)")
}
