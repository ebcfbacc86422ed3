package health

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSegmentLenAndID verifies length arithmetic and identifier format.
func TestSegmentLenAndID(t *testing.T) {
	t.Parallel()

	s := &Segment{
		Start:   128,
		End:     131,
		OnWrist: true,
	}

	require.Equal(t, 4, s.Len())
	require.Equal(t, "segment_128", s.ID())

	single := &Segment{Start: 0, End: 0}
	require.Equal(t, 1, single.Len())
	require.Equal(t, "segment_0", single.ID())
}

// TestRuleResultAnyViolated checks detection of violations in a rule map.
func TestRuleResultAnyViolated(t *testing.T) {
	t.Parallel()

	require.False(t, RuleResult(nil).AnyViolated())
	require.False(t, RuleResult{"a": false, "b": false}.AnyViolated())
	require.True(t, RuleResult{"a": false, "b": true}.AnyViolated())
}

// TestExplanationAnyViolated checks violation detection across both wear groups.
func TestExplanationAnyViolated(t *testing.T) {
	t.Parallel()

	e := NewExplanation()
	require.False(t, e.AnyViolated())

	e.WristOn["segment_0"] = RuleResult{"temperature_out_of_range": false}
	require.False(t, e.AnyViolated())

	e.WristOff["segment_3"] = RuleResult{"ppg_high_variance_off": true}
	require.True(t, e.AnyViolated())
}

// TestExplanationJSONShape ensures empty groups serialise as objects, not null.
func TestExplanationJSONShape(t *testing.T) {
	t.Parallel()

	v := Verdict{
		IsFaulty:    false,
		Explanation: NewExplanation(),
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"is_faulty":false,"explanation":{"wrist_on":{},"wrist_off":{}}}`, string(data))
}

// TestScanReportCounts tallies the three outcomes.
func TestScanReportCounts(t *testing.T) {
	t.Parallel()

	r := &ScanReport{
		Day: "2021-02-02",
		Devices: []DeviceReport{
			{Device: "device_001", Outcome: OutcomeHealthy},
			{Device: "device_002", Outcome: OutcomeFaulty},
			{Device: "device_003", Outcome: OutcomeFaulty},
			{Device: "device_004", Outcome: OutcomeUnable},
		},
	}

	healthy, faulty, unable := r.Counts()
	require.Equal(t, 1, healthy)
	require.Equal(t, 2, faulty)
	require.Equal(t, 1, unable)
}
