package commands

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/hob/internal/app"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/hob/internal/ui/style"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	var opts app.InstallOptions
	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Install a recipe and its dependencies",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			report, err := c.app.Install(cmd.Context(), args[0], opts)
			if report != nil && opts.DryRun {
				printPlan(p, report.Plan)
			}
			if report != nil {
				for _, res := range report.Results {
					icon := p.ok(style.Check)
					if res.Status == lifecycle.StatusSatisfied {
						icon = p.faint(style.Tilde)
					}
					p.printf("%s %s %s\n", icon, res.Recipe, p.faint(res.Status.String()))
				}
			}
			var lm *domain.LockMismatchError
			if errors.As(err, &lm) {
				printMismatches(p, lm.Mismatches)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.NoDeps, "no-deps", false, "Install only the named recipe")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print the plan without installing")
	cmd.Flags().BoolVar(&opts.Locked, "locked", false, "Fail if planned versions differ from hob.lock")
	return cmd
}

func printPlan(p *printer, plan *domain.Plan) {
	p.printf("%s %s\n", p.bold("Plan for"), plan.Target)
	for i, e := range plan.Entries {
		line := "  " + strconv.Itoa(i+1) + ". " + e.Name
		if e.IsDep {
			line += p.faint(" (dependency)")
		}
		p.println(line)
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	var opts app.RemoveOptions
	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"uninstall", "rm"},
		Short:   "Remove an installed recipe",
		Args:    usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			report, err := c.app.Remove(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				p.printf("%s %s (%d file(s))\n", p.bold("Would remove"), report.Recipe, len(report.Files))
				for _, f := range report.Files {
					p.println("  " + f)
				}
				if len(report.Dependents) > 0 {
					p.println(p.note(style.Warning + " still required by " + strings.Join(report.Dependents, ", ")))
				}
				return nil
			}
			p.printf("%s %s removed\n", p.ok(style.Check), report.Recipe)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Remove even if installed recipes depend on it")
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "Print what would be removed")
	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [name]",
		Short: "Check recipes for newer upstream versions",
		Long: "Runs each recipe's check_update function. A newer version it reports is\n" +
			"written back to the recipe's version variable.",
		Args: usage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			updates, err := c.app.Update(cmd.Context(), firstArg(args))
			for _, up := range updates {
				if up.Changed() {
					p.printf("%s %s %s %s %s\n", p.ok(style.Arrow), up.Recipe, up.Previous, style.Arrow, up.Latest)
				} else {
					p.printf("%s %s %s\n", p.faint(style.Tilde), up.Recipe, p.faint("up to date"))
				}
			}
			return err
		},
	}
}

func (c *CLI) newUpgradeCmd() *cobra.Command {
	var opts app.UpgradeOptions
	cmd := &cobra.Command{
		Use:   "upgrade [name]",
		Short: "Reinstall installed recipes whose version changed",
		Args:  usage(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			ups, err := c.app.Upgrade(cmd.Context(), firstArg(args), opts)
			if err == nil && len(ups) == 0 {
				p.println("Everything is up to date.")
				return nil
			}
			verb := "upgraded"
			if opts.DryRun {
				verb = "would upgrade"
			}
			for _, up := range ups {
				p.printf("%s %s %s %s %s %s\n", p.ok(style.Check), up.Recipe, p.faint(verb), up.From, style.Arrow, up.To)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&opts.DryRun, "dry-run", "n", false, "List upgrades without running them")
	return cmd
}

func (c *CLI) newAutoremoveCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "autoremove",
		Short: "Remove dependencies nothing installed needs any more",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrinter(cmd.OutOrStdout())
			removed, err := c.app.Autoremove(cmd.Context(), dryRun)
			if err == nil && len(removed) == 0 {
				p.println("No orphans.")
				return nil
			}
			verb := "removed"
			if dryRun {
				verb = "would remove"
			}
			for _, name := range removed {
				p.printf("%s %s %s\n", p.ok(style.Check), name, p.faint(verb))
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "List orphans that would be removed")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
