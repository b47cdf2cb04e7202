package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/ui/style"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Manage hob.lock",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "update",
			Short: "Write the declared version of every recipe to hob.lock",
			Args:  usage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				lock, err := c.app.LockUpdate(cmd.Context())
				if err != nil {
					return err
				}
				p := newPrinter(cmd.OutOrStdout())
				p.printf("%s locked %d recipe(s)\n", p.ok(style.Check), len(lock.Packages))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print hob.lock",
			Args:  usage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				lock, err := c.app.LockShow(cmd.Context())
				if err != nil {
					return err
				}
				printLock(newPrinter(cmd.OutOrStdout()), lock)
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify",
			Short: "Check hob.lock against the current recipes",
			Args:  usage(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				p := newPrinter(cmd.OutOrStdout())
				mismatches, err := c.app.LockVerify(cmd.Context())
				if len(mismatches) > 0 {
					printMismatches(p, mismatches)
					return err
				}
				if err != nil {
					return err
				}
				p.printf("%s hob.lock matches the recipes\n", p.ok(style.Check))
				return nil
			},
		},
	)
	return cmd
}

func printLock(p *printer, lock *domain.Lockfile) {
	rows := make([][]string, 0, len(lock.Packages))
	for _, name := range lock.Names() {
		rows = append(rows, []string{name, lock.Packages[name]})
	}
	p.table([]string{"NAME", "VERSION"}, rows)
	meta := lock.Metadata
	if meta.Generated.IsZero() {
		return
	}
	p.println()
	p.println(p.faint("generated " + meta.Generated.Format(time.RFC3339) + " by " + meta.Generator))
	p.println(p.faint("id " + meta.GenerationID + ", digest " + meta.RecipesDigest))
}

func printMismatches(p *printer, mismatches []domain.Mismatch) {
	for _, m := range mismatches {
		p.printf("%s %s\n", p.bad(style.Cross), m.String())
	}
}
