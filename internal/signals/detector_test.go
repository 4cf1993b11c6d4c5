package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/contracts"
	"github.com/wonny/billflow/backend/internal/simrand"
)

var fixedNow = func() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

// quiet: renewal draw lands mid-term, every trigger stays below threshold
var quiet = simrand.Fixed{Default: 0.5}

// loud fires all four for contract id 5
var loud = simrand.Fixed{
	Sequences: map[int64][]float64{simrand.Seed(5, simrand.OffsetRenewal): {0}},
	Default:   0.95,
}

func contract(idx int) contracts.Contract {
	c := contracts.Defaults()
	c.Index, c.ClientName = idx, "Initech"
	c.AnnualContractValue = 120000
	return c
}

func TestDetect_Quiet(t *testing.T) {
	assert.Empty(t, NewDetector(quiet, fixedNow).Detect(contract(5)))
}

func TestDetect_AllFour(t *testing.T) {
	got := NewDetector(loud, fixedNow).DetectAll(contracts.Portfolio{contract(5)})

	require.Len(t, got, 4)
	assert.Equal(t, []string{TypeRenewalRisk, TypeExpansionSignal, TypePaymentDelay, TypeEngagementDrop},
		[]string{got[0].SignalType, got[1].SignalType, got[2].SignalType, got[3].SignalType})

	renewal := got[0]
	assert.Equal(t, "38a3859b0de2", renewal.ID)
	assert.Equal(t, 0.9, renewal.Strength)
	assert.Equal(t, "2024-03-01T09:00:00Z", renewal.DetectedAt)
	assert.Equal(t, "Contract expires in 1 month(s) with no renewal discussion initiated", renewal.Description)
	assert.Equal(t, "Contract end date approaching (1 months)", renewal.Evidence[0])
	assert.Equal(t, "Client may shop alternatives; risk losing $120,000 ACV", renewal.IfIgnored)
}

func TestDetect_EnterpriseHasNoExpansion(t *testing.T) {
	c := contract(5)
	c.ClientTier = contracts.TierEnterprise
	for _, s := range NewDetector(loud, fixedNow).Detect(c) {
		assert.NotEqual(t, TypeExpansionSignal, s.SignalType)
	}
}

func TestDetect_RenewalWindow(t *testing.T) {
	tests := []struct {
		draw  float64
		fires bool
	}{
		{0, true},      // 1 month
		{0.1, true},    // 1 + int(2.4) = 3
		{0.125, false}, // 1 + int(3.0) = 4
	}
	for _, tt := range tests {
		src := simrand.Fixed{Sequences: map[int64][]float64{simrand.Seed(5, simrand.OffsetRenewal): {tt.draw}}, Default: 0.5}
		got := NewDetector(src, fixedNow).Detect(contract(5))
		assert.Equal(t, tt.fires, len(got) == 1, "draw %v", tt.draw)
	}
}

func TestDetect_StableIDsAndClock(t *testing.T) {
	d := NewDetector(loud, fixedNow)
	p := contracts.Portfolio{contract(5), contract(6)}
	assert.Equal(t, d.DetectAll(p), d.DetectAll(p))

	assert.NotNil(t, NewDetector(nil, nil).DetectAll(nil))
}

func TestBuildReport(t *testing.T) {
	got := NewDetector(loud, fixedNow).DetectAll(contracts.Portfolio{contract(5)})
	r := BuildReport(got)

	assert.Equal(t, 4, r.TotalSignals)
	assert.Equal(t, 1, r.CriticalSignals)
	assert.Len(t, r.ByType, 4)
	assert.Len(t, r.ByType[TypePaymentDelay], 1)
	assert.Equal(t, 3, CountAtLeast(got, 0.7))

	empty := BuildReport(nil)
	assert.NotNil(t, empty.AllSignals)
	assert.Zero(t, empty.TotalSignals)
}
