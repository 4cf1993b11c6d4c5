package signals

// CriticalStrength: 이 이상이면 critical signal
const CriticalStrength = 0.8

// Report is the signal view grouped by type
type Report struct {
	TotalSignals    int                 `json:"total_signals"`
	CriticalSignals int                 `json:"critical_signals"`
	ByType          map[string][]Signal `json:"by_type"`
	AllSignals      []Signal            `json:"all_signals"`
}

// CountAtLeast counts signals with strength >= min
func CountAtLeast(items []Signal, min float64) int {
	n := 0
	for _, s := range items {
		if s.Strength >= min {
			n++
		}
	}
	return n
}

// BuildReport groups an already sorted signal list
func BuildReport(items []Signal) Report {
	if items == nil {
		items = []Signal{}
	}
	r := Report{
		TotalSignals:    len(items),
		CriticalSignals: CountAtLeast(items, CriticalStrength),
		ByType:          map[string][]Signal{},
		AllSignals:      items,
	}
	for _, s := range items {
		r.ByType[s.SignalType] = append(r.ByType[s.SignalType], s)
	}
	return r
}
