package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	sessionTitle  string
	sessionCounty string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored case sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a case session and print its id",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, b, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		cs, err := svc.CreateSession(cmd.Context(), sessionTitle, sessionCounty)
		if err != nil {
			return err
		}
		fmt.Println(cs.ID)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List case sessions, most recently updated first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, b, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer b.Close()

		list, err := svc.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No sessions yet. Create one with `opcoach session new`.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tCOUNTY\tPROGRESS\tMESSAGES\tUPDATED")
		for _, cs := range list {
			county := cs.Jurisdiction.County
			if county == "" {
				county = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%d\t%s\n",
				cs.ID, cs.Title, county, cs.ProgressPercent, len(cs.Conversation),
				cs.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	sessionNewCmd.Flags().StringVar(&sessionTitle, "title", "", "session title")
	sessionNewCmd.Flags().StringVar(&sessionCounty, "county", "", "New York county (defaults to default_county)")
	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd)
	rootCmd.AddCommand(sessionCmd)
}
