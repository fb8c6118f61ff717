package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emp(id, first, manager string) Employee {
	e := Employee{ID: id, FirstName: first, LastName: "X", Department: "IT", Role: "Engineer"}
	if manager != "" {
		e.ManagerID = &manager
	}
	return e
}

func TestBuildOrgChart_Tree(t *testing.T) {
	chart := BuildOrgChart([]Employee{
		emp("ceo", "Ana", ""),
		emp("it", "Mihai", "ceo"),
		emp("hr", "Ioana", "ceo"),
		emp("dev1", "Vlad", "it"),
		emp("dev2", "Cristian", "it"),
	})

	require.Len(t, chart.Roots, 1)
	root := chart.Roots[0]
	assert.Equal(t, "ceo", root.ID)
	require.Len(t, root.Reports, 2)
	assert.Equal(t, "Ioana X", root.Reports[0].Name)
	assert.Equal(t, "Mihai X", root.Reports[1].Name)

	it := root.Reports[1]
	require.Len(t, it.Reports, 2)
	assert.Equal(t, "Cristian X", it.Reports[0].Name)
	assert.Empty(t, chart.CycleBreaks)
}

func TestBuildOrgChart_UnknownManagerBecomesRoot(t *testing.T) {
	chart := BuildOrgChart([]Employee{
		emp("a", "Ana", ""),
		emp("b", "Bogdan", "gone"),
	})
	require.Len(t, chart.Roots, 2)
	assert.Equal(t, "a", chart.Roots[0].ID)
	assert.Equal(t, "b", chart.Roots[1].ID)
}

func TestBuildOrgChart_BreaksCycles(t *testing.T) {
	chart := BuildOrgChart([]Employee{
		emp("a", "Ana", "c"),
		emp("b", "Bogdan", "a"),
		emp("c", "Cristian", "b"),
		emp("d", "Dana", "d"),
	})

	require.Len(t, chart.CycleBreaks, 1)
	assert.Equal(t, []string{"a"}, chart.CycleBreaks)

	// a loses its link, so the cycle unrolls into a -> b -> c, plus d alone.
	require.Len(t, chart.Roots, 2)
	assert.Equal(t, "a", chart.Roots[0].ID)
	require.Len(t, chart.Roots[0].Reports, 1)
	assert.Equal(t, "b", chart.Roots[0].Reports[0].ID)
	require.Len(t, chart.Roots[0].Reports[0].Reports, 1)
	assert.Equal(t, "c", chart.Roots[0].Reports[0].Reports[0].ID)
	assert.Equal(t, "d", chart.Roots[1].ID)
}

func TestBuildOrgChart_Empty(t *testing.T) {
	chart := BuildOrgChart(nil)
	assert.NotNil(t, chart.Roots)
	assert.Empty(t, chart.Roots)
}
