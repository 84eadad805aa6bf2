package inventory

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestSynthesizer(seed int64) *Synthesizer {
	return NewSynthesizer(seed).WithClock(func() time.Time { return fixedNow })
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestSynthesize_WasteWithinWindow(t *testing.T) {
	s := newTestSynthesizer(42)
	for _, days := range []any{float64(7), "7", 7} {
		for i := 0; i < 20; i++ {
			res, ok := s.Synthesize("/api/waste/identify", map[string]any{"days": days}).(WasteIdentifyResponse)
			require.True(t, ok)
			assert.True(t, res.Success)
			require.GreaterOrEqual(t, len(res.WasteItems), 1)
			require.LessOrEqual(t, len(res.WasteItems), 15)
			for _, it := range res.WasteItems {
				exp, err := time.Parse(time.RFC3339Nano, it.ExpiryDate)
				require.NoError(t, err)
				assert.False(t, exp.Before(fixedNow), "expiry %s before now", it.ExpiryDate)
				assert.False(t, exp.After(fixedNow.Add(7*24*time.Hour)), "expiry %s after window", it.ExpiryDate)
			}
		}
	}
}

func TestSynthesize_WasteDefaultWindow(t *testing.T) {
	s := newTestSynthesizer(7)
	for _, params := range []map[string]any{nil, {"days": "soon"}, {"days": -3}} {
		res := s.Synthesize("/api/waste/identify", params).(WasteIdentifyResponse)
		for _, it := range res.WasteItems {
			exp, err := time.Parse(time.RFC3339Nano, it.ExpiryDate)
			require.NoError(t, err)
			assert.False(t, exp.After(fixedNow.Add(DefaultWasteDays*24*time.Hour)))
		}
	}
}

func TestSynthesize_StableKeys(t *testing.T) {
	endpoints := []string{
		"/api/waste/identify", "/api/search", "/api/retrieve", "/api/placement",
		"/api/waste/return-plan", "/api/waste/complete-undocking", "/api/simulate/day",
		"/api/logs", "/api/import/items", "/api/import/containers", "/api/unknown",
	}
	a, b := newTestSynthesizer(1), newTestSynthesizer(99)
	for _, ep := range endpoints {
		t.Run(ep, func(t *testing.T) {
			first := keys(toMap(t, a.Synthesize(ep, nil)))
			for i := 0; i < 5; i++ {
				assert.Equal(t, first, keys(toMap(t, a.Synthesize(ep, nil))))
				assert.Equal(t, first, keys(toMap(t, b.Synthesize(ep, map[string]any{"days": 3}))))
			}
		})
	}
}

func TestSynthesize_SameSeedSameOutput(t *testing.T) {
	a := toMap(t, newTestSynthesizer(5).Synthesize("/api/search", map[string]any{"itemId": "001"}))
	b := toMap(t, newTestSynthesizer(5).Synthesize("/api/search", map[string]any{"itemId": "001"}))
	assert.Equal(t, a, b)
	assert.Equal(t, "001", a["item"].(map[string]any)["itemId"])
}

func TestSynthesize_GenericEnvelope(t *testing.T) {
	m := toMap(t, newTestSynthesizer(1).Synthesize("/api/something/else", nil))
	assert.Equal(t, true, m["success"])
	assert.NotEmpty(t, m["message"])
	assert.Len(t, m, 2)
}

func TestSynthesize_NormalizesEndpoint(t *testing.T) {
	s := newTestSynthesizer(3)
	_, ok := s.Synthesize("/api/waste/identify/?days=3", nil).(WasteIdentifyResponse)
	assert.True(t, ok)
	_, ok = s.Synthesize("api/logs", nil).(LogsResponse)
	assert.True(t, ok)
}

func TestSynthesize_Simulation(t *testing.T) {
	res := newTestSynthesizer(3).Synthesize("/api/simulate/day", map[string]any{"numOfDays": 2}).(SimulationResponse)
	assert.Equal(t, "2025-04-03T12:00:00Z", res.NewDate)
	assert.NotNil(t, res.Changes.ItemsUsed)
	assert.NotNil(t, res.Changes.ItemsExpired)
	assert.NotNil(t, res.Changes.ItemsDepletedToday)
}

func TestSynthesize_SimulationDaysClamped(t *testing.T) {
	capped := fixedNow.AddDate(0, 0, maxSimulateDays).Format(time.RFC3339)
	tests := []struct {
		name string
		days any
		want string
	}{
		{"huge number", 1e300, capped},
		{"infinity string", "Inf", capped},
		{"just over the cap", maxSimulateDays + 1, capped},
		{"not a number", "NaN", "2025-04-02T12:00:00Z"},
		{"negative", -5, "2025-04-02T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestSynthesizer(3).Synthesize("/api/simulate/day", map[string]any{"numOfDays": tt.days}).(SimulationResponse)
			assert.Equal(t, tt.want, res.NewDate)
		})
	}
}
