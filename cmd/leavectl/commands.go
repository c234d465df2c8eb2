package main

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/cron"
	"github.com/spf13/cobra"
)

var now = time.Now

func rootCmd(open opener, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leavectl",
		Short: "Run leave engine batch jobs",
		Long: `Run the leave engine's batch jobs against the configured database.

Examples:
  leavectl earned-leave --year 2024 --dry-run
  leavectl deductions --year 2024 --month 3
  leavectl mark-absent --date 2024-03-04
  leavectl token --user <uuid> --admin
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.AddCommand(earnedLeaveCmd(open))
	cmd.AddCommand(deductionsCmd(open))
	cmd.AddCommand(markAbsentCmd(open))
	cmd.AddCommand(tokenCmd(open))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leavectl %s\n", version)
		},
	})

	return cmd
}

func earnedLeaveCmd(open opener) *cobra.Command {
	var req leave.EarnedLeaveRunRequest

	cmd := &cobra.Command{
		Use:   "earned-leave",
		Short: "Accrue earned leave for a completed year",
		Long: `Count each user's worked days in --year and post the earned leave
balance into --posting-year (defaults to the year after --year).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("year") {
				req.Year = now().Year() - 1
			}
			if req.PostingYear == 0 {
				req.PostingYear = req.Year + 1
			}

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			resp, err := env.Services.EarnedLeave.RunEarnedLeaveCalculation(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return batchError(resp.Summary)
		},
	}

	cmd.Flags().IntVar(&req.Year, "year", 0, "Year whose attendance is counted (default: last year)")
	cmd.Flags().IntVar(&req.PostingYear, "posting-year", 0, "Year the balance is posted to (default: --year + 1)")
	cmd.Flags().StringSliceVar(&req.UserIDs, "user", nil, "Limit the run to these user IDs")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Compute without writing balances")

	return cmd
}

func deductionsCmd(open opener) *cobra.Command {
	var req leave.DeductionRunRequest

	cmd := &cobra.Command{
		Use:   "deductions",
		Short: "Apply monthly late, early and absence deductions",
		Long: `Charge casual leave, then earned leave, for a month's late arrivals,
early departures and absences. Defaults to the previous month.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			previous := now().AddDate(0, -1, 0)
			if !cmd.Flags().Changed("month") {
				req.Month = int(previous.Month())
			}
			if !cmd.Flags().Changed("year") {
				req.Year = previous.Year()
			}

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			resp, err := env.Services.Deductions.RunMonthlyDeductions(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return batchError(resp.Summary)
		},
	}

	cmd.Flags().IntVar(&req.Month, "month", 0, "Month to charge, 1-12 (default: previous month)")
	cmd.Flags().IntVar(&req.Year, "year", 0, "Year of --month (default: year of the previous month)")
	cmd.Flags().StringSliceVar(&req.UserIDs, "user", nil, "Limit the run to these user IDs")
	cmd.Flags().BoolVar(&req.DryRun, "dry-run", false, "Compute without writing balances")

	return cmd
}

func markAbsentCmd(open opener) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "mark-absent",
		Short: "Record absences for a working date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			location := env.Settings.Location
			if location == nil {
				location = time.UTC
			}

			day := now().In(location).AddDate(0, 0, -1)
			if date != "" {
				day, err = time.ParseInLocation("2006-01-02", date, location)
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", date)
				}
			}

			jobs := cron.NewAttendanceJobs(env.Services.Attendance, env.Repos.Users, location)
			if err := jobs.MarkAbsentOn(cmd.Context(), day); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"date":   day.Format("2006-01-02"),
				"status": "done",
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to sweep, YYYY-MM-DD (default: yesterday)")

	return cmd
}

func tokenCmd(open opener) *cobra.Command {
	var (
		userID  string
		isAdmin bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			token, expiresAt, err := env.JWT.GenerateAccessToken(userID, isAdmin)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"access_token": token,
				"expires_at":   expiresAt,
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin privileges")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// batchError turns per-user failures into a non-zero exit after the
// summary has been printed.
func batchError(summary leave.BatchSummary) error {
	if summary.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d user(s) failed", summary.Failed)
}
