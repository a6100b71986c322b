package flowstat

import "testing"

func TestInterestEqualityIncludesPath(t *testing.T) {
	a := LatencyTrace(StringLabel("req"), "a.trace")
	b := LatencyTrace(StringLabel("req"), "b.trace")
	if a == b {
		t.Fatal("interests with different paths must not compare equal")
	}

	c := LatencyTrace(StringLabel("req"), "a.trace")
	if a != c {
		t.Fatal("identical interests must compare equal")
	}
}

func TestStructureCategoryGroupsTraceAndWaterfall(t *testing.T) {
	latTrace := LatencyTrace(StringLabel("req"), "x")
	latWaterfall := LatencyWaterfall(StringLabel("req"), "y")
	if structureCategory(latTrace.Kind) != structureCategory(latWaterfall.Kind) {
		t.Fatal("LatencyTrace and LatencyWaterfall must share a structure category")
	}

	valTrace := ValueTrace(StringLabel("req"), "x")
	if structureCategory(latTrace.Kind) == structureCategory(valTrace.Kind) {
		t.Fatal("latency and value categories must differ")
	}
}

func TestInterestKindStringIsStable(t *testing.T) {
	cases := map[InterestKind]string{
		CountInterest:             "Count",
		GaugeInterest:             "Gauge",
		LatencyPercentileInterest: "LatencyPercentile",
		AllanDeviationInterest:    "AllanDeviation",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: got %q want %q", kind, got, want)
		}
	}
}
