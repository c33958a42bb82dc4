package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartmesh/cartmesh/config"
	"github.com/cartmesh/cartmesh/geometry"
	"github.com/cartmesh/cartmesh/match"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Show how refinement references map onto the meshed part",
	Long: `Resolves every refinement reference in the configuration and prints
the part element it corresponds to, using the same geometric identity
and bulk correspondence matching the case builder applies. Useful when
stored references stop matching after geometry edits.`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	doc, err := f.BuildDocument()
	if err != nil {
		return err
	}
	part, ok := doc.Shape(f.Part)
	if !ok {
		return fmt.Errorf("part %q not found", f.Part)
	}
	refinements, err := f.Refinements()
	if err != nil {
		return err
	}

	var groups [][]geometry.Ref
	for _, r := range refinements {
		groups = append(groups, r.Refs)
		for _, ref := range r.Refs {
			elem, err := doc.Resolve(ref)
			if err != nil {
				cmd.Printf("%-12s %-24s unresolved: %v\n", r.Name, ref.String(), err)
				continue
			}
			found, err := match.FindElement(part, elem)
			if err != nil {
				cmd.Printf("%-12s %-24s error: %v\n", r.Name, ref.String(), err)
				continue
			}
			if found == "" {
				cmd.Printf("%-12s %-24s no match\n", r.Name, ref.String())
				continue
			}
			cmd.Printf("%-12s %-24s -> %s\n", r.Name, ref.String(), found)
		}
	}

	matches, unresolved := match.MatchFacesToShape(doc, groups, part)
	for _, err := range unresolved {
		cmd.Printf("bulk: skipped %v\n", err)
	}
	cmd.Println()
	for i, claims := range matches {
		if len(claims) == 0 {
			continue
		}
		name := geometry.ElementName(geometry.Face, i)
		for _, c := range claims {
			cmd.Printf("bulk: %s claimed by %s (%s)\n", name, refinements[c.Group].Name, c.Ref.String())
		}
	}
	return nil
}
