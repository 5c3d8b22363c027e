// jobctl is a small command line front end for the job board SDK. It drives
// the same authenticated transport the SPA uses: credentials persist in the
// data folder, and an expired access token is refreshed transparently on the
// next command.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/openjobs/go-jobboard/credentials"
	"github.com/openjobs/go-jobboard/internal/config"
	"github.com/openjobs/go-jobboard/internal/utils"
	"github.com/openjobs/go-jobboard/jobs"
	"github.com/openjobs/go-jobboard/session"
	"github.com/openjobs/go-jobboard/transport"
)

// app holds the SDK stack shared by every subcommand. It is wired once in the
// root command's PersistentPreRunE, after configuration is loaded.
type app struct {
	sessions *session.Manager
	jobs     *jobs.Service
}

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "jobctl: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "jobctl",
		Short:         "Command line client for the job board",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.wire()
		},
	}

	rootCmd.AddCommand(newLoginCmd(a))
	rootCmd.AddCommand(newLogoutCmd(a))
	rootCmd.AddCommand(newWhoAmICmd(a))
	rootCmd.AddCommand(newSearchCmd(a))
	rootCmd.AddCommand(newSaveCmd(a))
	rootCmd.AddCommand(newUnsaveCmd(a))
	rootCmd.AddCommand(newSavedCmd(a))
	return rootCmd
}

func (a *app) wire() error {
	_ = config.Load(".env")
	c := config.New()

	store, err := credentials.NewFileStore(c.GetDataFolder())
	if err != nil {
		return err
	}

	client, err := transport.New(c.GetAPIBaseURL(), store,
		transport.WithOnAuthExpired(func() {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		}),
	)
	if err != nil {
		return err
	}

	a.sessions, err = session.NewManager(client, store)
	if err != nil {
		return err
	}
	a.jobs, err = jobs.NewService(client)
	return err
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.sessions.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s %s <%s>\n", sess.User.FirstName, sess.User.LastName, sess.User.Email)
			return nil
		},
	}

	loginCmd.Flags().StringVar(&email, "email", "", "account email (required)")
	loginCmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	return loginCmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.sessions.Logout(cmd.Context())
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := a.sessions.Bootstrap(cmd.Context())
			if !sess.IsLoggedIn() {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s %s <%s> (%s), %d saved jobs\n",
				sess.User.FirstName, sess.User.LastName, sess.User.Email, sess.User.Role, len(sess.SavedJobIDs))
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		keyword  string
		location string
		page     int
		size     int
	)

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search active job postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.jobs.Search(cmd.Context(), jobs.SearchFilters{
				Keyword:  keyword,
				Location: location,
				Page:     page,
				Size:     size,
			})
			if err != nil {
				return err
			}

			fmt.Printf("page %d/%d (%d jobs total)\n", result.Number+1, result.TotalPages, result.TotalElements)
			for _, job := range result.Content {
				company := ""
				if name := utils.Value(job.Company).Name; name != "" {
					company = " @ " + name
				}
				fmt.Printf("  %s  %s%s (%s)\n", job.ID, job.Title, company, job.Location)
			}
			return nil
		},
	}

	searchCmd.Flags().StringVar(&keyword, "keyword", "", "keyword filter")
	searchCmd.Flags().StringVar(&location, "location", "", "location filter")
	searchCmd.Flags().IntVar(&page, "page", 0, "result page")
	searchCmd.Flags().IntVar(&size, "size", 10, "page size")
	return searchCmd
}

func newSaveCmd(a *app) *cobra.Command {
	var jobID string

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save a job posting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess := a.sessions.Bootstrap(cmd.Context()); !sess.IsLoggedIn() {
				return fmt.Errorf("log in first")
			}
			if err := a.sessions.SaveJob(cmd.Context(), jobID); err != nil {
				return err
			}
			fmt.Println("saved")
			return nil
		},
	}

	saveCmd.Flags().StringVar(&jobID, "job", "", "job ID (required)")
	_ = saveCmd.MarkFlagRequired("job")
	return saveCmd
}

func newUnsaveCmd(a *app) *cobra.Command {
	var jobID string

	unsaveCmd := &cobra.Command{
		Use:   "unsave",
		Short: "Remove a job from the saved list",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess := a.sessions.Bootstrap(cmd.Context()); !sess.IsLoggedIn() {
				return fmt.Errorf("log in first")
			}
			if err := a.sessions.UnsaveJob(cmd.Context(), jobID); err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		},
	}

	unsaveCmd.Flags().StringVar(&jobID, "job", "", "job ID (required)")
	_ = unsaveCmd.MarkFlagRequired("job")
	return unsaveCmd
}

func newSavedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List saved job postings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sess := a.sessions.Bootstrap(cmd.Context()); !sess.IsLoggedIn() {
				return fmt.Errorf("log in first")
			}
			saved, err := a.jobs.SavedJobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				fmt.Println("no saved jobs")
				return nil
			}
			for _, job := range saved {
				fmt.Printf("  %s  %s (%s)\n", job.ID, job.Title, job.Location)
			}
			return nil
		},
	}
}
