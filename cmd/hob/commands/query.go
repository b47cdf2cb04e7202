package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/hob/internal/app"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/ui/style"
)

func (c *CLI) newListCmd() *cobra.Command {
	var opts app.ListOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes",
		Args:    usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			recipes, err := c.app.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printRecipes(newPrinter(cmd.OutOrStdout()), recipes)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.Installed, "installed", "i", false, "Only list installed recipes")
	return cmd
}

func (c *CLI) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <pattern>",
		Short: "Find recipes by name or description",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := c.app.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(recipes) == 0 {
				p.printf("No recipes match %q.\n", args[0])
				return nil
			}
			printRecipes(p, recipes)
			return nil
		},
	}
}

func printRecipes(p *printer, recipes []*domain.Recipe) {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{r.Name, r.EffectiveVersion(), status(p, r), r.Description})
	}
	p.table([]string{"NAME", "VERSION", "STATUS", "DESCRIPTION"}, rows)
}

func status(p *printer, r *domain.Recipe) string {
	switch {
	case !r.State.Installed:
		return p.faint("available")
	case domain.UpgradeNeeded(r.State.InstalledVersion, r.Version):
		return p.note("outdated")
	case r.State.InstalledAsDep:
		return p.ok("dependency")
	default:
		return p.ok("installed")
	}
}

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show a recipe's details and install state",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			field := func(k, v string) { p.printf("%s %s\n", p.bold(k+":"), v) }
			field("Name", r.Name)
			field("Version", r.Version)
			if r.Description != "" {
				field("Description", r.Description)
			}
			field("Recipe", r.Path)
			if len(r.Deps) > 0 {
				field("Dependencies", specs(r.Deps))
			}
			if len(r.BuildDeps) > 0 {
				field("Build dependencies", specs(r.BuildDeps))
			}
			if !r.State.Installed {
				field("Installed", "no")
				return nil
			}
			how := "explicitly"
			if r.State.InstalledAsDep {
				how = "as a dependency"
			}
			field("Installed", r.State.InstalledVersion+" ("+how+")")
			if r.State.InstalledAt > 0 {
				field("Installed at", time.Unix(r.State.InstalledAt, 0).UTC().Format(time.RFC3339))
			}
			p.printf("%s %d\n", p.bold("Files:"), len(r.State.InstalledFiles))
			for _, f := range r.State.InstalledFiles {
				p.println("  " + f)
			}
			return nil
		},
	}
}

func specs(deps []domain.DependencySpec) string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
		if !d.Constraint.IsAny() {
			out[i] += " " + d.Constraint.String()
		}
	}
	return strings.Join(out, ", ")
}

func (c *CLI) newDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps <name>",
		Short: "List a recipe's direct dependencies",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := c.app.Deps(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(deps) == 0 {
				p.printf("%s has no dependencies.\n", args[0])
				return nil
			}
			rows := make([][]string, 0, len(deps))
			for _, d := range deps {
				kind := "runtime"
				if d.Build {
					kind = "build"
				}
				found, mark := d.Found, p.ok(style.Check)
				switch {
				case found == "":
					found, mark = p.bad("missing"), p.bad(style.Cross)
				case !d.Satisfied:
					mark = p.bad(style.Cross)
				}
				rows = append(rows, []string{mark, d.Name, d.Constraint, found, kind})
			}
			p.table([]string{"", "NAME", "CONSTRAINT", "VERSION", "KIND"}, rows)
			return nil
		},
	}
}

func (c *CLI) newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <name>",
		Short: "Show the dependency tree of a recipe",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := c.app.Tree(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.println(p.renderTree(root))
			return nil
		},
	}
}

func (c *CLI) newWhyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "why <name>",
		Short: "Show which installed recipes need a recipe",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			chains, err := c.app.Why(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(chains) == 0 {
				p.printf("Nothing installed explicitly depends on %s.\n", args[0])
				return nil
			}
			for _, chain := range chains {
				p.println(strings.Join(chain, " "+style.Arrow+" "))
			}
			return nil
		},
	}
}

func (c *CLI) newImpactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <name>",
		Short: "List recipes that depend on a recipe, directly or not",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.app.Impact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(names) == 0 {
				p.printf("No recipe depends on %s.\n", args[0])
				return nil
			}
			for _, n := range names {
				p.println(n)
			}
			return nil
		},
	}
}

func (c *CLI) newOrphansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List dependencies nothing installed needs",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.app.Orphans(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(names) == 0 {
				p.println("No orphans.")
				return nil
			}
			for _, n := range names {
				p.println(n)
			}
			return nil
		},
	}
}

func (c *CLI) newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print content hashes of files",
		Long:  "Prints the sha256 and xxh64 digests of each file, for pinning downloads in recipes.",
		Args:  usage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashes, err := c.app.Hash(cmd.Context(), args)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, h := range hashes {
				p.printf("%s %s\n", p.bold(h.Path), p.faint(fmt.Sprintf("(%d bytes)", h.Size)))
				p.printf("  sha256  %s\n", h.SHA256)
				p.printf("  xxh64   %s\n", h.XXH64)
			}
			return nil
		},
	}
}
