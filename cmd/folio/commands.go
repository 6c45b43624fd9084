package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/render"
	"github.com/kalambet/folio/internal/storage"
	"github.com/kalambet/folio/internal/tui"
	"github.com/kalambet/folio/internal/view"
)

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile and skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newRemoteClient(cfg, config.NewSecretStore())
		return runShow(cmd.Context(), newController(client), cmd.OutOrStdout(), jsonOut)
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "print the profile as JSON")
}

func runShow(ctx context.Context, c *view.Controller, w io.Writer, jsonOut bool) error {
	if jsonOut {
		if err := c.Load(ctx); err != nil {
			return err
		}
		return writeJSON(w, c.Store().Snapshot().Profile)
	}

	stop := render.New(w, noColor).Watch(c.Store(), w)
	defer stop()
	if err := c.Load(ctx); err != nil {
		return errReported
	}
	return nil
}

// --- edit ---

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit profile fields and save them",
	Long: `Load the profile, apply the given edits to the draft and save it.

Examples:
  folio edit --set title="Staff Engineer" --set location=Berlin
  folio edit --social github=https://github.com/ada
  folio edit -i`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		sets, _ := cmd.Flags().GetStringArray("set")
		socials, _ := cmd.Flags().GetStringArray("social")

		if interactive {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client := newRemoteClient(cfg, config.NewSecretStore())
			return tui.Run(cmd.Context(), newController(client), cmd.InOrStdin(), cmd.OutOrStdout(), noColor)
		}

		fields, err := parseAssignments(sets)
		if err != nil {
			return err
		}
		links, err := parseAssignments(socials)
		if err != nil {
			return err
		}
		if len(fields) == 0 && len(links) == 0 {
			return fmt.Errorf("nothing to edit: use --set field=value or --social platform=url")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newRemoteClient(cfg, config.NewSecretStore())
		return runEdit(cmd.Context(), newController(client), cmd.OutOrStdout(), fields, links)
	},
}

func init() {
	editCmd.Flags().BoolP("interactive", "i", false, "edit in a full-screen form")
	editCmd.Flags().StringArray("set", nil, "field=value ("+strings.Join(profile.Fields, ", ")+")")
	editCmd.Flags().StringArray("social", nil, "platform=url ("+strings.Join(profile.Platforms, ", ")+")")
}

type assignment struct {
	key   string
	value string
}

func parseAssignments(list []string) ([]assignment, error) {
	out := make([]assignment, 0, len(list))
	for _, item := range list {
		k, v, ok := strings.Cut(item, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", item)
		}
		out = append(out, assignment{key: k, value: v})
	}
	return out, nil
}

func runEdit(ctx context.Context, c *view.Controller, w io.Writer, fields, links []assignment) error {
	// Reject unknown names before touching the network.
	probe := profile.EmptyDraft()
	for _, a := range fields {
		if err := probe.Set(a.key, a.value); err != nil {
			return err
		}
	}
	for _, a := range links {
		if err := probe.SetSocialLink(a.key, a.value); err != nil {
			return err
		}
	}

	r := render.New(w, noColor)
	if err := c.Load(ctx); err != nil {
		io.WriteString(w, r.Render(c.Store().Snapshot()))
		return errReported
	}
	if err := c.ToggleEdit(ctx); err != nil {
		return err
	}
	for _, a := range fields {
		if err := c.SetField(a.key, a.value); err != nil {
			return err
		}
	}
	for _, a := range links {
		if err := c.SetSocialLink(a.key, a.value); err != nil {
			return err
		}
	}

	err := c.ToggleEdit(ctx)
	io.WriteString(w, r.Render(c.Store().Snapshot()))
	if err != nil {
		return errReported
	}
	printSuccess("Profile updated")
	return nil
}

// --- skills ---

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newRemoteClient(cfg, config.NewSecretStore())

		skills, err := client.Skills(cmd.Context())
		if err != nil {
			return err
		}
		return printSkills(cmd.OutOrStdout(), skills, jsonOut)
	},
}

func printSkills(w io.Writer, skills []profile.Skill, jsonOut bool) error {
	if jsonOut {
		return writeJSON(w, skills)
	}
	if len(skills) == 0 {
		fmt.Fprintln(w, "No skills found.")
		return nil
	}
	_, err := io.WriteString(w, render.SkillList(skills))
	return err
}

var skillsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a skill to the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		category, _ := cmd.Flags().GetString("category")
		proficiency, _ := cmd.Flags().GetFloat64("proficiency")
		years, _ := cmd.Flags().GetFloat64("years")

		if name == "" || category == "" {
			return fmt.Errorf("--name and --category are required")
		}
		if proficiency < 0 || proficiency > 100 {
			return fmt.Errorf("--proficiency must be between 0 and 100")
		}

		return withStore(func(store *storage.Store) error {
			sk, err := store.AddSkill(profile.Skill{
				Name:              name,
				Category:          category,
				Proficiency:       proficiency,
				YearsOfExperience: years,
			})
			if err != nil {
				return err
			}
			printSuccess("Added skill %s: %s", sk.ID, sk.Label())
			return nil
		})
	},
}

var skillsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a skill from the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid skill id %q", args[0])
		}
		return withStore(func(store *storage.Store) error {
			if err := store.DeleteSkill(id); err != nil {
				return err
			}
			printSuccess("Removed skill %d", id)
			return nil
		})
	},
}

func init() {
	skillsCmd.Flags().Bool("json", false, "print skills as JSON")

	skillsAddCmd.Flags().String("name", "", "skill name")
	skillsAddCmd.Flags().String("category", "", "skill category")
	skillsAddCmd.Flags().Float64("proficiency", 0, "proficiency percentage (0-100)")
	skillsAddCmd.Flags().Float64("years", 0, "years of experience")

	skillsCmd.AddCommand(skillsAddCmd)
	skillsCmd.AddCommand(skillsRemoveCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the profile held by the local store",
}

var profileSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write profile fields directly to the local store",
	Long: `Write profile fields directly to the local store served by "folio serve".
Only the flags given are changed.

Example:
  folio profile seed --name Ada --title Engineer --image /ada.png --skill-ids 1,2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			mgr := profile.NewManager(store)
			p, err := mgr.GetProfile()
			if err != nil {
				return err
			}
			p, err = applySeedFlags(cmd, p)
			if err != nil {
				return err
			}
			if err := mgr.ReplaceProfile(p); err != nil {
				return err
			}
			printSuccess("Profile stored")
			return nil
		})
	},
}

func init() {
	addSeedFlags(profileSeedCmd)
	profileCmd.AddCommand(profileSeedCmd)
}

func addSeedFlags(cmd *cobra.Command) {
	for _, f := range profile.Fields {
		cmd.Flags().String(f, "", f)
	}
	for _, pl := range profile.Platforms {
		cmd.Flags().String(pl, "", pl+" URL")
	}
	cmd.Flags().String("image", "", "profile image URL")
	cmd.Flags().StringSlice("skill-ids", nil, "skill identifiers shown on the profile")
}

func applySeedFlags(cmd *cobra.Command, p profile.Profile) (profile.Profile, error) {
	d := profile.NewDraft(p)
	for _, f := range profile.Fields {
		if cmd.Flags().Changed(f) {
			v, _ := cmd.Flags().GetString(f)
			if err := d.Set(f, v); err != nil {
				return p, err
			}
		}
	}
	for _, pl := range profile.Platforms {
		if cmd.Flags().Changed(pl) {
			v, _ := cmd.Flags().GetString(pl)
			if err := d.SetSocialLink(pl, v); err != nil {
				return p, err
			}
		}
	}
	if cmd.Flags().Changed("skill-ids") {
		ids, _ := cmd.Flags().GetStringSlice("skill-ids")
		d.Skills = make([]profile.SkillID, len(ids))
		for i, id := range ids {
			d.Skills[i] = skillIDFromArg(id)
		}
	}

	out := p.WithDraft(d)
	if cmd.Flags().Changed("image") {
		out.ProfileImage, _ = cmd.Flags().GetString("image")
	}
	return out, nil
}

// skillIDFromArg keeps numeric identifiers numeric on the wire.
func skillIDFromArg(s string) profile.SkillID {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return profile.SkillID(s)
	}
	b, _ := json.Marshal(s)
	return profile.SkillID(b)
}

func withStore(fn func(*storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", bold(k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.ValidKeys(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
