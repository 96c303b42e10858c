package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"FieldOps/internal/app"
	"FieldOps/internal/domain"
	"FieldOps/internal/usecase"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily digest scheduler until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Serve(cmd.Context())
		},
	}
}

func newMissionCmd(c *cli) *cobra.Command {
	var (
		actor    string
		lat, lng float64
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Assign the nearest pending work item",
		RunE: func(cmd *cobra.Command, _ []string) error {
			assignment, err := c.app.Dispatcher.NextMission(cmd.Context(), actor, lat, lng)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), assignment)
			}
			printAssignment(cmd.OutOrStdout(), assignment)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "current latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "current longitude")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newIntelCmd(c *cli) *cobra.Command {
	var actor, item string
	cmd := &cobra.Command{
		Use:   "intel",
		Short: "Brief the actor on a work item before the visit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Dispatcher.MissionIntel(cmd.Context(), actor, item)
			if err != nil {
				return err
			}
			printIntel(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor id")
	cmd.Flags().StringVar(&item, "item", "", "work item id")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newLogCmd(c *cli) *cobra.Command {
	var (
		file string
		req  usecase.LogRequest
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a visit outcome and get follow-up guidance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" {
				if err := readYAML(c.fs, file, &req); err != nil {
					return err
				}
			}
			res, err := c.app.Ledger.LogInteraction(cmd.Context(), req)
			if err != nil {
				return err
			}
			printLogResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the visit from a YAML file instead of flags")
	cmd.Flags().StringVar(&req.ActorID, "actor", "", "actor id")
	cmd.Flags().StringVar(&req.WorkItemID, "item", "", "work item id")
	cmd.Flags().IntVar(&req.Score, "score", 0, "outcome score 1-5")
	cmd.Flags().StringVar(&req.Note, "note", "", "visit note")
	cmd.Flags().StringVar(&req.OpeningLine, "opening", "", "opening line used")
	cmd.Flags().StringVar(&req.Outcome, "outcome", "", "short outcome label")
	cmd.Flags().StringSliceVar(&req.MediaRefs, "media", nil, "photo or audio URLs")
	return cmd
}

func newKPIsCmd(c *cli) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Show the actor's performance aggregate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg, err := c.app.Ledger.KPIs(cmd.Context(), actor)
			if err != nil {
				return err
			}
			printKPIs(cmd.OutOrStdout(), agg)
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor id")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newDigestCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Read, dismiss and rate daily digests",
	}
	cmd.AddCommand(
		newDigestGetCmd(c),
		newDigestDismissCmd(c),
		newDigestFeedbackCmd(c),
		newDigestRunCmd(c),
	)
	return cmd
}

func newDigestGetCmd(c *cli) *cobra.Command {
	var (
		actor  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show today's digest, generating it when absent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := c.app.Digests.GetDailyDigest(cmd.Context(), actor)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), view.Record)
			}

			profile, err := c.app.Store().GetActor(cmd.Context(), actor)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					return err
				}
				profile = domain.Actor{ID: actor}
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprint(out, usecase.RenderDigest(profile, view.Record))
			if view.Record.Fallback {
				_, _ = fmt.Fprintln(out, warn("(template digest)"))
			}
			if view.Record.Dismissed {
				_, _ = fmt.Fprintln(out, faint("(dismissed)"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newDigestDismissCmd(c *cli) *cobra.Command {
	var actor, date string
	cmd := &cobra.Command{
		Use:   "dismiss",
		Short: "Hide a digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Digests.Dismiss(cmd.Context(), actor, date); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), good("Dismissed."))
			return nil
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor id")
	cmd.Flags().StringVar(&date, "date", "", "digest day as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newDigestFeedbackCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record feedback on digest suggestions from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req usecase.FeedbackRequest
			if err := readYAML(c.fs, file, &req); err != nil {
				return err
			}
			id, err := c.app.Digests.RecordFeedback(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good("Feedback recorded"), faint(id))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML feedback document")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDigestRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate today's digest for every actor now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := c.app.Digests.RunDaily(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newActionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List and complete scheduled follow-ups",
	}

	var listActor string
	list := &cobra.Command{
		Use:   "list",
		Short: "List pending scheduled actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			actions, err := c.app.Schedule.Upcoming(cmd.Context(), listActor)
			if err != nil {
				return err
			}
			printActions(cmd.OutOrStdout(), actions, c.app.Location())
			return nil
		},
	}
	list.Flags().StringVar(&listActor, "actor", "", "actor id")
	_ = list.MarkFlagRequired("actor")

	var doneActor, id string
	complete := &cobra.Command{
		Use:   "complete",
		Short: "Mark a scheduled action done",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Schedule.Complete(cmd.Context(), doneActor, id); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), good("Done."))
			return nil
		},
	}
	complete.Flags().StringVar(&doneActor, "actor", "", "actor id")
	complete.Flags().StringVar(&id, "id", "", "scheduled action id")
	_ = complete.MarkFlagRequired("actor")
	_ = complete.MarkFlagRequired("id")

	cmd.AddCommand(list, complete)
	return cmd
}

func newPrefsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read or change digest preferences",
	}

	var getActor string
	get := &cobra.Command{
		Use:   "get",
		Short: "Show preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs, err := c.app.Preferences.Get(cmd.Context(), getActor)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "digest enabled: %t\n", prefs.DigestEnabled)
			return nil
		},
	}
	get.Flags().StringVar(&getActor, "actor", "", "actor id")
	_ = get.MarkFlagRequired("actor")

	var setActor string
	set := &cobra.Command{
		Use:   "set <digest-enabled>",
		Short: "Turn the daily digest on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return domain.Invalid("digest-enabled", "expected true or false, got %q", args[0])
			}
			if err := c.app.Preferences.SetDigestEnabled(cmd.Context(), setActor, enabled); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s digest enabled: %t\n", good("Saved."), enabled)
			return nil
		},
	}
	set.Flags().StringVar(&setActor, "actor", "", "actor id")
	_ = set.MarkFlagRequired("actor")

	cmd.AddCommand(get, set)
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert work items and actors from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := app.ReadSeed(c.fs, file)
			if err != nil {
				return err
			}
			summary, err := app.ApplySeed(cmd.Context(), c.app.Store(), seed, time.Now())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d work items, %d actors\n", good("Seeded"), summary.WorkItems, summary.Actors)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readYAML(fs afero.Fs, path string, out any) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
