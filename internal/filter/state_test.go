package filter

import (
	"reflect"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestApplyCanonicalizesAndAttachesTolerance(t *testing.T) {
	st := NewState(DefaultCatalog())

	st.Apply(map[string][]string{
		GroupMovement: {"Avalance", "Flow"},
	}, map[string]Bounds{
		MetricMMI: {Min: fp(5)},
	})

	snap := st.Snapshot()
	if got, want := snap.Categorical[GroupMovement], []string{"Flow", "Avalanche"}; !reflect.DeepEqual(got, want) {
		t.Errorf("movement = %v, want %v", got, want)
	}
	r := snap.Numeric[MetricMMI]
	if r == nil || r.Min == nil || *r.Min != 5 {
		t.Fatalf("mmi range = %#v, want min 5", r)
	}
	if r.Tol != 0.05 {
		t.Errorf("mmi tol = %v, want the catalog tolerance 0.05", r.Tol)
	}
}

func TestApplyPreservesSpatial(t *testing.T) {
	st := NewState(DefaultCatalog())
	poly := geojson.NewGeometry(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	st.SetSpatial(poly)

	st.Apply(map[string][]string{GroupMaterial: {"Rock"}}, nil)
	if st.Snapshot().Spatial == nil {
		t.Fatal("Apply must not clear the spatial selection")
	}

	st.ClearSpatial()
	if st.Snapshot().Spatial != nil {
		t.Fatal("ClearSpatial must remove the spatial selection")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	st := NewState(DefaultCatalog())
	st.Apply(map[string][]string{GroupMaterial: {"Rock"}}, map[string]Bounds{
		MetricPGA: {Min: fp(10)},
	})

	snap := st.Snapshot()
	snap.Categorical[GroupMaterial][0] = "Water"
	*snap.Numeric[MetricPGA].Min = 99

	fresh := st.Snapshot()
	if fresh.Categorical[GroupMaterial][0] != "Rock" {
		t.Error("mutating a snapshot leaked into the state's categorical selection")
	}
	if *fresh.Numeric[MetricPGA].Min != 10 {
		t.Error("mutating a snapshot leaked into the state's numeric range")
	}
}

func TestApplyReplacesWholesale(t *testing.T) {
	st := NewState(DefaultCatalog())
	st.Apply(map[string][]string{GroupMaterial: {"Rock"}}, map[string]Bounds{
		MetricPGA: {Min: fp(10)},
	})
	st.Apply(map[string][]string{GroupConfidence: {"High"}}, nil)

	snap := st.Snapshot()
	if len(snap.Categorical[GroupMaterial]) != 0 {
		t.Error("previous material selection must be gone after re-apply")
	}
	if snap.Numeric[MetricPGA] != nil {
		t.Error("previous numeric range must be gone after re-apply")
	}
	if got := snap.Categorical[GroupConfidence]; len(got) != 1 || got[0] != "High" {
		t.Errorf("confidence = %v, want [High]", got)
	}
}
