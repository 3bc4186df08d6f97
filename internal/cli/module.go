package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/project"
)

// moduleView is the JSON shape of one module in module list and show.
type moduleView struct {
	Module project.Module `json:"module"`
	Tier   int            `json:"tier"`
	Result calc.Result    `json:"result"`
}

// moduleTiers maps each module to its evaluation tier.
func moduleTiers(eng *engine.Engine) map[project.ModuleKey]int {
	out := make(map[project.ModuleKey]int)
	for i, tier := range eng.Tiers() {
		for _, k := range tier {
			out[k] = i
		}
	}
	return out
}

// NewModuleListCmd creates the module list command.
func NewModuleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List modules with their state and evaluation tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, rep, err := ws.load(cmd.Context())
			if err != nil {
				return err
			}
			tiers := moduleTiers(ws.engine)

			if outputFormat(cmd) == config.FormatJSON {
				views := make([]moduleView, 0, len(project.AllKeys()))
				for _, k := range project.AllKeys() {
					views = append(views, moduleView{Module: s.Modules[k], Tier: tiers[k], Result: rep.Results[k]})
				}
				return engine.RenderJSON(cmd.OutOrStdout(), views)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tACTIVE\tTIER")
			fmt.Fprintln(tw, "---\t----\t------\t----")
			for _, k := range project.AllKeys() {
				m := s.Modules[k]
				active := "no"
				if m.IsActive {
					active = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", k, m.Name, active, tiers[k])
			}
			return tw.Flush()
		},
	}
}

// NewModuleShowCmd creates the module show command.
func NewModuleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <module>",
		Short: "Show the detailed results of one module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseModuleKey(args[0])
			if err != nil {
				return err
			}
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, rep, err := ws.load(cmd.Context())
			if err != nil {
				return err
			}

			m, r := s.Modules[key], rep.Results[key]
			if outputFormat(cmd) == config.FormatJSON {
				return engine.RenderJSON(cmd.OutOrStdout(), moduleView{Module: m, Tier: moduleTiers(ws.engine)[key], Result: r})
			}
			return engine.RenderModuleTable(cmd.OutOrStdout(), m, r, config.GetOutputPrecision())
		},
	}
}

// NewModuleToggleCmd creates the module toggle command. Without --on or --off
// it flips the current state.
func NewModuleToggleCmd() *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "toggle <module>",
		Short: "Activate or deactivate a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if on && off {
				return errors.New("--on and --off are mutually exclusive")
			}
			key, err := parseModuleKey(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, _, err := ws.load(ctx)
			if err != nil {
				return err
			}

			active := !s.Modules[key].IsActive
			switch {
			case on:
				active = true
			case off:
				active = false
			}
			rep, err := ws.engine.SetActive(ctx, s, key, active)
			if err != nil {
				return err
			}
			if err := ws.save(ctx, s); err != nil {
				return err
			}

			state := "deactivated"
			if active {
				state = "activated"
			}
			cmd.Printf("%s %s; project saving %.2f wan/yr\n", s.Modules[key].Name, state, rep.Summary.TotalYearlySaving)
			return nil
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "activate the module")
	cmd.Flags().BoolVar(&off, "off", false, "deactivate the module")
	return cmd
}

// NewModuleSetCmd creates the module set command, which replaces a module's params.
func NewModuleSetCmd() *cobra.Command {
	var (
		params string
		file   string
		merge  bool
	)

	cmd := &cobra.Command{
		Use:   "set <module>",
		Short: "Replace or update the parameters of a module",
		Long: `Sets module parameters from --params JSON or a --file.

With --merge the given fields are applied over the current parameters; otherwise
they replace them. Parameters that do not decode are rejected and nothing is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseModuleKey(args[0])
			if err != nil {
				return err
			}
			raw, err := readParams(params, file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			s, _, err := ws.load(ctx)
			if err != nil {
				return err
			}
			if merge {
				raw, err = mergeParams(s.Modules[key].Params, raw)
				if err != nil {
					return err
				}
			}

			rep, err := ws.engine.SetParams(ctx, s, key, raw)
			if err != nil {
				return err
			}
			if err := ws.save(ctx, s); err != nil {
				return err
			}
			return engine.RenderModuleTable(cmd.OutOrStdout(), s.Modules[key], rep.Results[key], config.GetOutputPrecision())
		},
	}

	cmd.Flags().StringVar(&params, "params", "", "parameters as a JSON object")
	cmd.Flags().StringVar(&file, "file", "", "read parameters from a JSON file")
	cmd.Flags().BoolVar(&merge, "merge", false, "apply the given fields over the current parameters")
	return cmd
}

func readParams(params, file string) (json.RawMessage, error) {
	switch {
	case params != "" && file != "":
		return nil, errors.New("--params and --file are mutually exclusive")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		return data, nil
	case params != "":
		return json.RawMessage(params), nil
	default:
		return nil, errors.New("one of --params or --file is required")
	}
}

// mergeParams overlays the top-level fields of patch onto current.
func mergeParams(current, patch json.RawMessage) (json.RawMessage, error) {
	base := map[string]json.RawMessage{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &base); err != nil {
			return nil, fmt.Errorf("%w: current params: %w", calc.ErrInvalidParams, err)
		}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", calc.ErrInvalidParams, err)
	}
	for k, v := range fields {
		base[k] = v
	}
	data, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	return data, nil
}
