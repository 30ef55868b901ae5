package lp

import (
	"testing"

	"github.com/quasar-analytics/quasar/core/mapfunc"
	"github.com/stretchr/testify/require"
)

func TestReadFileBuildsALeafPlan(t *testing.T) {
	plan := ReadFile("orders.json")
	require.Equal(t, KindReadFile, plan.Kind)
	require.Equal(t, "orders.json", plan.Path)
	require.Nil(t, plan.Src)
}

func TestProjectWrapsItsSource(t *testing.T) {
	src := ReadFile("orders.json")
	proj := mapfunc.Leaf(mapfunc.Hole{})
	plan := Project(src, proj)

	require.Equal(t, KindProject, plan.Kind)
	require.Same(t, src, plan.Src)
}

func TestFilterOpWrapsItsSource(t *testing.T) {
	src := ReadFile("orders.json")
	pred := mapfunc.Leaf(mapfunc.Hole{})
	plan := FilterOp(src, pred)

	require.Equal(t, KindFilterOp, plan.Kind)
	require.Same(t, src, plan.Src)
}

func TestShiftCarriesItsStructAndMapFlag(t *testing.T) {
	src := ReadFile("orders.json")
	strct := mapfunc.Leaf(mapfunc.Hole{})

	arrayShift := Shift(src, strct, false)
	require.Equal(t, KindShift, arrayShift.Kind)
	require.False(t, arrayShift.ShiftIsMap)

	mapShift := Shift(src, strct, true)
	require.True(t, mapShift.ShiftIsMap)
}
