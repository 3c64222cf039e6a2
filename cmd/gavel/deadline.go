package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lexhaven/gavel/pkg/docket/calendar"
)

var deadlineFlags struct {
	from    string
	days    int
	mode    string
	service string
}

var deadlineCmd = &cobra.Command{
	Use:   "deadline",
	Short: "Compute a single deadline",
	Long: `Compute a deadline from a trigger date under the FRCP 6(a) counting
rule: periods shorter than 11 days count business days, longer periods
count calendar days, and a deadline landing on a weekend or federal
holiday is extended forward to the next business day. Service by mail
adds three calendar days before that final correction.

Examples:
  # 90 calendar days after filing
  gavel deadline --from 2026-03-02 --days 90

  # Answer deadline with mail service (+3 days)
  gavel deadline --from 2026-03-02 --days 21 --service mail

  # Force business-day counting
  gavel deadline --from 2026-03-02 --days 30 --mode business`,
	RunE: computeDeadline,
}

func init() {
	rootCmd.AddCommand(deadlineCmd)

	deadlineCmd.Flags().StringVar(&deadlineFlags.from, "from", "", "trigger date (YYYY-MM-DD, default today)")
	deadlineCmd.Flags().IntVar(&deadlineFlags.days, "days", 0, "offset in days")
	deadlineCmd.Flags().StringVar(&deadlineFlags.mode, "mode", "auto", "counting mode: auto, business, calendar")
	deadlineCmd.Flags().StringVar(&deadlineFlags.service, "service", "personal", "service method: personal, electronic, mail")
	_ = deadlineCmd.MarkFlagRequired("days")
}

func computeDeadline(cmd *cobra.Command, args []string) error {
	trigger := time.Now().UTC()
	if deadlineFlags.from != "" {
		parsed, err := time.Parse("2006-01-02", deadlineFlags.from)
		if err != nil {
			return fmt.Errorf("invalid --from date %q: %w", deadlineFlags.from, err)
		}
		trigger = parsed
	}

	var mode calendar.CountingMode
	switch deadlineFlags.mode {
	case "auto":
		mode = calendar.ModeFor(deadlineFlags.days)
	case "business":
		mode = calendar.BusinessDays
	case "calendar":
		mode = calendar.CalendarDays
	default:
		return fmt.Errorf("invalid --mode %q: must be auto, business, or calendar", deadlineFlags.mode)
	}

	service := calendar.ServiceMethod(deadlineFlags.service)
	switch service {
	case calendar.ServicePersonal, calendar.ServiceElectronic, calendar.ServiceMail:
	default:
		return fmt.Errorf("invalid --service %q: must be personal, electronic, or mail", deadlineFlags.service)
	}

	result, err := calendar.Compute(trigger, deadlineFlags.days, mode, service)
	if err != nil {
		return err
	}

	fmt.Printf("Due: %s (%s)\n", result.DueAt.Format("2006-01-02"), result.DueAt.Weekday())
	if result.ShortPeriod {
		fmt.Println("Short period: 14 days or fewer after service adjustment")
	}
	fmt.Printf("Computation: %s\n", result.Notes)
	return nil
}
