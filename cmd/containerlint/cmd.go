package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/manifest"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "containerlint",
		Short:         "Validate container service manifests",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newListCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest.yaml>",
		Short: "Report missing dependencies, cycles and scoped services captured by singletons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, m, err := load(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			if err := c.Validate(); err != nil {
				problems := unjoin(err)
				for _, p := range problems {
					fmt.Fprintln(cmd.OutOrStdout(), "✗", p)
				}
				return fmt.Errorf("%s: %d problem(s)", args[0], len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d services\n", args[0], len(m.Services))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <manifest.yaml>",
		Short: "Print every service with its lifecycle and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := load(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLIFECYCLE\tDEPENDS ON")
			for _, info := range c.Services() {
				deps := strings.Join(info.Dependencies, ", ")
				if deps == "" {
					deps = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, info.Lifecycle, deps)
			}
			return w.Flush()
		},
	}
}

// load registers the manifest at path on a fresh container with stub factories.
func load(path string) (*container.Container, *manifest.Manifest, error) {
	m, err := manifest.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	c := container.New()
	if err := m.Apply(c, manifest.StubCatalog(m)); err != nil {
		return nil, nil, err
	}
	return c, m, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

