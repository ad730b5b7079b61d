package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/scenariosim/internal/engine"
	"github.com/codex-k8s/scenariosim/internal/store"
)

var clusterSections = []string{"controlplane", "nodes", "pods", "services", "ingresses", "deployments"}

// newClusterCommand groups cluster scenario subcommands.
func newClusterCommand() *cobra.Command {
	return newGroupCommand("cluster", "Inspect and break cluster scenarios",
		newClusterShowCommand(),
		newClusterFailCommand(),
	)
}

func newClusterShowCommand() *cobra.Command {
	var (
		output   string
		sections string
		selected string
	)

	cmd := &cobra.Command{
		Use:   "show [scenario]",
		Short: "Show a cluster scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			only := parseNameSet(sections)
			if err := validateNames(only, clusterSections...); err != nil {
				return err
			}

			eng, err := newEngineFromCmd(cmd)
			if err != nil {
				return err
			}
			id := scenarioArg(args, SettingsFromContext(cmd.Context()).DefaultCluster)
			if err := eng.LoadCluster(id); err != nil {
				return err
			}
			if selected != "" {
				ref, err := store.ParseRef(selected)
				if err != nil {
					return err
				}
				if err := eng.Select(ref); err != nil {
					return err
				}
			}

			view := eng.ClusterView()
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, view)
			}
			return renderCluster(cmd.OutOrStdout(), view, only)
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&sections, "only", "", "Only show selected sections (comma-separated: controlplane, nodes, pods, services, ingresses, deployments)")
	cmd.Flags().StringVar(&selected, "select", "", "Highlight a resource (kind/name, e.g. pod/web-7d9c6b-abcde)")

	return cmd
}

func newClusterFailCommand() *cobra.Command {
	var (
		output  string
		failure string
	)

	cmd := &cobra.Command{
		Use:   "fail [scenario] <kind/name>",
		Short: "Simulate a failure on one resource of a cluster scenario",
		Long: "Simulate a failure on one resource. Pods support kill and restart, nodes support nodeDown, " +
			"control plane components support degrade and outage. Without --failure the first kind that " +
			"applies to the resource is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			id := SettingsFromContext(cmd.Context()).DefaultCluster
			target := args[0]
			if len(args) == 2 {
				id, target = args[0], args[1]
			}

			ref, err := store.ParseRef(target)
			if err != nil {
				return err
			}
			kind, err := failureFor(ref, failure)
			if err != nil {
				return err
			}

			eng, err := newEngineFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := eng.LoadCluster(id); err != nil {
				return err
			}
			if err := eng.Select(ref); err != nil {
				return err
			}
			m, err := eng.SimulateFailure(ref, kind)
			if err != nil {
				return err
			}

			view := eng.ClusterView()
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, struct {
					Mutation store.Mutation     `json:"mutation" yaml:"mutation"`
					Cluster  engine.ClusterView `json:"cluster" yaml:"cluster"`
				}{m, view})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s -> %s\n", m.Kind, m.Ref, m.Before, m.After)
			return renderCluster(cmd.OutOrStdout(), view, nil)
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&failure, "failure", "", "Failure kind (kill, restart, nodeDown, degrade, outage)")

	return cmd
}

// failureFor parses raw or picks the default failure for ref.Kind.
func failureFor(ref store.Ref, raw string) (store.FailureKind, error) {
	if raw != "" {
		return store.ParseFailureKind(raw)
	}
	switch ref.Kind {
	case store.KindPod:
		return store.FailureKill, nil
	case store.KindNode:
		return store.FailureNodeDown, nil
	case store.KindComponent:
		return store.FailureDegrade, nil
	default:
		return "", fmt.Errorf("no failure applies to %s: %w", ref, store.ErrUnsupported)
	}
}

func renderCluster(w io.Writer, v engine.ClusterView, only map[string]struct{}) error {
	c := v.Scenario
	if c == nil {
		return nil
	}
	sel := v.Selection
	s := v.Summary
	_, _ = fmt.Fprintf(w, "%s (%s)\n", c.Name, c.ID)
	if c.Description != "" {
		_, _ = fmt.Fprintln(w, c.Description)
	}
	_, _ = fmt.Fprintf(w, "control plane %s, nodes %d/%d ready, pods %d running, %d failed, %d restarts\n",
		badge(s.ControlPlane.Badge()), s.NodesReady, s.Nodes, s.PodsRunning, s.PodsFailed, s.Restarts)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	mark := func(selected bool) string {
		if selected {
			return "*"
		}
		return " "
	}

	if included("controlplane", only) {
		_ = tw.Flush()
		section(w, "Control plane")
		for _, comp := range c.ControlPlane {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", mark(sel.Component == comp.ID), comp.Name, badge(comp.Status.Badge()))
		}
	}
	if included("nodes", only) {
		_ = tw.Flush()
		section(w, "Nodes")
		for _, n := range c.Nodes {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark(sel.Node == n.Name), n.Name, n.Role, n.Version, badge(n.Status.Badge()))
		}
	}
	if included("pods", only) {
		_ = tw.Flush()
		section(w, "Pods")
		for _, p := range c.Pods {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\trestarts=%d\t%s\n", mark(sel.Pod == p.Name), p.Name, p.Node, badge(p.Status.Badge()), p.Restarts, p.Reason)
		}
	}
	if included("services", only) {
		_ = tw.Flush()
		section(w, "Services")
		for _, svc := range c.Services {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d targets\n", mark(sel.Service == svc.Name), svc.Name, svc.Type, badge(svc.Status.Badge()), len(svc.Targets))
		}
	}
	if included("ingresses", only) {
		_ = tw.Flush()
		section(w, "Ingresses")
		for _, ing := range c.Ingresses {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s -> %s\t%s\n", mark(sel.Ingress == ing.Name), ing.Name, ing.Host, ing.Backend, badge(ing.Status.Badge()))
		}
	}
	if included("deployments", only) {
		_ = tw.Flush()
		section(w, "Deployments")
		for _, d := range c.Deployments {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d/%d ready\t%s\n", mark(sel.Deployment == d.Name), d.Name, d.ReadyReplicas, d.Replicas, badge(d.Status.Badge()))
		}
	}
	return tw.Flush()
}
