package catalog

import (
	"fmt"
	"strings"
)

// ValidateCluster checks the structural invariants of a cluster snapshot.
// Status domains are enforced while decoding.
func ValidateCluster(s *ClusterSnapshot) error {
	if s == nil {
		return fmt.Errorf("cluster scenario is nil")
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("cluster scenario id is empty")
	}

	if len(s.ControlPlane) != len(ComponentIDs) {
		return fmt.Errorf("cluster %q: control plane must have %d components, got %d", s.ID, len(ComponentIDs), len(s.ControlPlane))
	}
	for _, id := range ComponentIDs {
		if _, ok := s.Component(id); !ok {
			return fmt.Errorf("cluster %q: control plane component %q missing", s.ID, id)
		}
	}

	nodes := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, n.Name)
	}
	if err := uniqueNames(s.ID, "node", nodes); err != nil {
		return err
	}

	pods := make([]string, 0, len(s.Pods))
	for _, p := range s.Pods {
		if p.Restarts < 0 {
			return fmt.Errorf("cluster %q: pod %q has negative restarts", s.ID, p.Name)
		}
		if p.Node != "" {
			if _, ok := s.Node(p.Node); !ok {
				return fmt.Errorf("cluster %q: pod %q references unknown node %q", s.ID, p.Name, p.Node)
			}
		}
		pods = append(pods, p.Name)
	}
	if err := uniqueNames(s.ID, "pod", pods); err != nil {
		return err
	}

	services := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		services = append(services, svc.Name)
	}
	if err := uniqueNames(s.ID, "service", services); err != nil {
		return err
	}

	ingresses := make([]string, 0, len(s.Ingresses))
	for _, ing := range s.Ingresses {
		ingresses = append(ingresses, ing.Name)
	}
	if err := uniqueNames(s.ID, "ingress", ingresses); err != nil {
		return err
	}

	deployments := make([]string, 0, len(s.Deployments))
	for _, d := range s.Deployments {
		deployments = append(deployments, d.Name)
	}
	return uniqueNames(s.ID, "deployment", deployments)
}

// ValidatePipeline checks that the pipeline has an id and that every stage,
// job and step id is unique across the pipeline.
func ValidatePipeline(p *Pipeline) error {
	if p == nil {
		return fmt.Errorf("pipeline is nil")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("pipeline id is empty")
	}

	var ids []string
	for _, st := range p.Stages {
		ids = append(ids, st.ID)
		for _, job := range st.Jobs {
			ids = append(ids, job.ID)
			for _, step := range job.Steps {
				ids = append(ids, step.ID)
			}
		}
	}
	if err := uniqueNames(p.ID, "pipeline unit", ids); err != nil {
		return err
	}

	for _, st := range p.Stages {
		for _, dep := range st.DependsOn {
			if _, _, ok := p.Stage(dep); !ok {
				return fmt.Errorf("pipeline %q: stage %q depends on unknown stage %q", p.ID, st.ID, dep)
			}
		}
	}
	return nil
}

func uniqueNames(scenario, kind string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("scenario %q: %s with empty name", scenario, kind)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("scenario %q: duplicate %s %q", scenario, kind, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
