package protocol

import (
	"sort"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// Dot renders the topology of p: roles on one side, resources on the other,
// an edge for every role using a resource labelled with its operations.
func Dot(p *Protocol) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	graph := gographviz.NewEscape()
	graph.SetDir(true)
	graph.SetName(p.Name)

	roles := gographviz.NewSubGraph("cluster_roles")
	resources := gographviz.NewSubGraph("cluster_resources")
	graph.AddSubGraph(graph.Name, roles.Name, map[string]string{"label": "workers"})
	graph.AddSubGraph(graph.Name, resources.Name, map[string]string{"label": "shared state"})

	for _, r := range p.Resources {
		attrs := map[string]string{"shape": "box", "label": r.Name + " (" + r.Kind.String() + ")"}
		if r.Kind == Flag && r.Up {
			attrs["style"] = "bold"
		}
		graph.AddNode(resources.Name, r.Name, attrs)
	}
	for _, r := range p.Roles {
		graph.AddNode(roles.Name, r.Name, map[string]string{"shape": "ellipse"})
		ops := edges(r.Loop)
		names := make([]string, 0, len(ops))
		for res := range ops {
			names = append(names, res)
		}
		sort.Strings(names)
		for _, res := range names {
			graph.AddEdge(r.Name, res, true, map[string]string{"label": strings.Join(ops[res], ",")})
		}
	}
	return graph.String(), nil
}

// edges collects the operations a loop performs on each resource.
func edges(steps []Step) map[string][]string {
	seen := make(map[string]map[string]bool)
	var walk func([]Step)
	walk = func(steps []Step) {
		for _, s := range steps {
			if s.Alts != nil {
				for _, alt := range s.Alts {
					walk(alt)
				}
				continue
			}
			if seen[s.Resource] == nil {
				seen[s.Resource] = make(map[string]bool)
			}
			seen[s.Resource][s.Op.String()] = true
		}
	}
	walk(steps)

	out := make(map[string][]string, len(seen))
	for res, ops := range seen {
		for op := range ops {
			out[res] = append(out[res], op)
		}
		sort.Strings(out[res])
	}
	return out
}
