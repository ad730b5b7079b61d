package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/scenariosim/internal/catalog"
)

type listEntry struct {
	Family      catalog.Family `json:"family" yaml:"family"`
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// newListCommand creates the "list" subcommand that prints the scenario catalog.
func newListCommand() *cobra.Command {
	var (
		output   string
		families string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cluster scenarios and pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			only := parseNameSet(families)
			if err := validateNames(only, string(catalog.FamilyCluster), string(catalog.FamilyPipeline)); err != nil {
				return err
			}

			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			var entries []listEntry
			if included(string(catalog.FamilyCluster), only) {
				for _, id := range cat.ClusterIDs() {
					c, err := cat.Cluster(id)
					if err != nil {
						return err
					}
					entries = append(entries, listEntry{Family: catalog.FamilyCluster, ID: c.ID, Name: c.Name, Description: c.Description})
				}
			}
			if included(string(catalog.FamilyPipeline), only) {
				for _, id := range cat.PipelineIDs() {
					p, err := cat.Pipeline(id)
					if err != nil {
						return err
					}
					entries = append(entries, listEntry{Family: catalog.FamilyPipeline, ID: p.ID, Name: p.Name, Description: p.Description})
				}
			}

			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "FAMILY\tID\tNAME\tDESCRIPTION")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Family, e.ID, e.Name, e.Description)
			}
			return tw.Flush()
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&families, "family", "", "Only list selected families (comma-separated: cluster, pipeline)")

	return cmd
}
