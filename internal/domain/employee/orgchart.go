package employee

import "sort"

// OrgNode is one employee in the reporting tree.
type OrgNode struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Department string     `json:"department"`
	Reports    []*OrgNode `json:"reports"`
}

type OrgChart struct {
	Roots []*OrgNode `json:"roots"`
	// CycleBreaks lists employees whose manager link was ignored
	// because following it led back to themselves.
	CycleBreaks []string `json:"cycle_breaks,omitempty"`
}

// BuildOrgChart arranges employees into a forest by ManagerID. Employees
// without a manager, or whose manager is unknown, become roots.
func BuildOrgChart(employees []Employee) OrgChart {
	byID := make(map[string]Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	parent := make(map[string]string, len(employees))
	for _, e := range employees {
		if e.ManagerID == nil || *e.ManagerID == e.ID {
			continue
		}
		if _, ok := byID[*e.ManagerID]; ok {
			parent[e.ID] = *e.ManagerID
		}
	}

	// Walk each chain; the first node seen twice closes a cycle and
	// loses its manager link.
	var breaks []string
	state := make(map[string]int, len(employees)) // 0 new, 1 visiting, 2 done
	ids := sortedIDs(employees)
	for _, id := range ids {
		var path []string
		cur := id
		for state[cur] == 0 {
			state[cur] = 1
			path = append(path, cur)
			next, ok := parent[cur]
			if !ok {
				break
			}
			if state[next] == 1 {
				delete(parent, next)
				breaks = append(breaks, next)
				break
			}
			cur = next
		}
		for _, p := range path {
			state[p] = 2
		}
	}

	nodes := make(map[string]*OrgNode, len(employees))
	for _, id := range ids {
		e := byID[id]
		nodes[id] = &OrgNode{
			ID:         e.ID,
			Name:       e.FullName(),
			Role:       e.Role,
			Department: e.Department,
			Reports:    []*OrgNode{},
		}
	}

	chart := OrgChart{Roots: []*OrgNode{}}
	for _, id := range ids {
		if mgr, ok := parent[id]; ok {
			nodes[mgr].Reports = append(nodes[mgr].Reports, nodes[id])
		} else {
			chart.Roots = append(chart.Roots, nodes[id])
		}
	}
	sortNodes(chart.Roots)
	for _, n := range nodes {
		sortNodes(n.Reports)
	}
	sort.Strings(breaks)
	chart.CycleBreaks = breaks
	return chart
}

func sortedIDs(employees []Employee) []string {
	ids := make([]string, 0, len(employees))
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if !seen[e.ID] {
			seen[e.ID] = true
			ids = append(ids, e.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

func sortNodes(nodes []*OrgNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name != nodes[j].Name {
			return nodes[i].Name < nodes[j].Name
		}
		return nodes[i].ID < nodes[j].ID
	})
}
