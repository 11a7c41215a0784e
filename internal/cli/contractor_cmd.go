package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchly/smartsched/internal/app"
	"github.com/dispatchly/smartsched/internal/cli/formatter"
	"github.com/dispatchly/smartsched/internal/domain"
)

func newContractorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contractor",
		Short: "Manage contractors",
	}

	cmd.AddCommand(
		newContractorAddCmd(app),
		newContractorListCmd(app),
		newContractorInspectCmd(app),
	)

	return cmd
}

func geoLocation(lat, lng float64, address, city, tz string) domain.GeoLocation {
	return domain.GeoLocation{
		Lat:      lat,
		Lng:      lng,
		Address:  address,
		City:     city,
		Timezone: tz,
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// parseHoursFlag parses one --hours entry like "Mon=09:00-17:00". Several
// days sharing a shift can be comma-joined on the left: "Mon,Tue=09:00-17:00".
func parseHoursFlag(entry, tz string) ([]app.WorkingHoursInput, error) {
	days, span, ok := strings.Cut(entry, "=")
	if !ok {
		return nil, fmt.Errorf("invalid hours %q, want DAY=HH:MM-HH:MM", entry)
	}
	start, end, ok := strings.Cut(span, "-")
	if !ok {
		return nil, fmt.Errorf("invalid hours span %q, want HH:MM-HH:MM", span)
	}

	var out []app.WorkingHoursInput
	for _, name := range strings.Split(days, ",") {
		key := strings.ToLower(strings.TrimSpace(name))
		if len(key) > 3 {
			key = key[:3]
		}
		day, ok := weekdayNames[key]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in %q", name, entry)
		}
		out = append(out, app.WorkingHoursInput{
			Day:      day,
			Start:    strings.TrimSpace(start),
			End:      strings.TrimSpace(end),
			Timezone: tz,
		})
	}
	return out, nil
}

// parseOverrideFlag parses one --override entry like "2025-07-05=10:00-14:00".
func parseOverrideFlag(entry string) (app.OverrideInput, error) {
	date, span, ok := strings.Cut(entry, "=")
	if !ok {
		return app.OverrideInput{}, fmt.Errorf("invalid override %q, want YYYY-MM-DD=HH:MM-HH:MM", entry)
	}
	start, end, ok := strings.Cut(span, "-")
	if !ok {
		return app.OverrideInput{}, fmt.Errorf("invalid override span %q, want HH:MM-HH:MM", span)
	}
	return app.OverrideInput{
		Date:  strings.TrimSpace(date),
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
	}, nil
}

func newContractorAddCmd(appRef *App) *cobra.Command {
	var (
		name, address, city, tz string
		lat, lng, rating        float64
		maxJobs                 int
		skills                  []string
		hours                   []string
		holidays                []string
		overrides               []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new contractor",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.CreateContractorRequest{
				Name:          name,
				HomeBase:      geoLocation(lat, lng, address, city, tz),
				Skills:        skills,
				Rating:        rating,
				MaxJobsPerDay: maxJobs,
				Holidays:      holidays,
			}

			for _, entry := range hours {
				parsed, err := parseHoursFlag(entry, tz)
				if err != nil {
					return err
				}
				req.WorkingHours = append(req.WorkingHours, parsed...)
			}
			for _, entry := range overrides {
				ov, err := parseOverrideFlag(entry)
				if err != nil {
					return err
				}
				req.Overrides = append(req.Overrides, ov)
			}

			c, err := appRef.Contractors.CreateContractor(context.Background(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created contractor %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Contractor name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Home base latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Home base longitude")
	cmd.Flags().StringVar(&address, "address", "", "Home base street address")
	cmd.Flags().StringVar(&city, "city", "", "Home base city")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA timezone (resolved from coordinates when empty)")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Skill tags (comma-separated)")
	cmd.Flags().Float64Var(&rating, "rating", 70, "Rating 0-100")
	cmd.Flags().IntVar(&maxJobs, "max-jobs", 0, "Daily job cap (0 = unlimited)")
	cmd.Flags().StringArrayVar(&hours, "hours", nil, `Weekly hours, repeatable ("Mon,Tue=09:00-17:00")`)
	cmd.Flags().StringArrayVar(&holidays, "holiday", nil, "Holiday date YYYY-MM-DD, repeatable")
	cmd.Flags().StringArrayVar(&overrides, "override", nil, `Date override, repeatable ("2025-07-05=10:00-14:00")`)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func newContractorListCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contractors",
		RunE: func(cmd *cobra.Command, args []string) error {
			contractors, err := appRef.Contractors.ListContractors(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatContractorList(contractors))
			return nil
		},
	}
}

func newContractorInspectCmd(appRef *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show contractor details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveContractorID(ctx, appRef, args[0])
			if err != nil {
				return err
			}
			c, err := appRef.Contractors.GetContractor(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatContractor(c))
			return nil
		},
	}
}
