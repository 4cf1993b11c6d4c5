package risk

// =============================================================================
// Severity & Level
// =============================================================================

// Flag severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Risk levels (same vocabulary as severities, derived from the overall score)
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// Flag categories
const (
	CategorySLA           = "sla"
	CategoryCompliance    = "compliance"
	CategoryFinancial     = "financial"
	CategoryTerms         = "terms"
	CategoryConcentration = "concentration"
)

// LevelFor maps an overall score to its risk level
// ⭐ SSOT: ≥70 critical, ≥50 high, ≥30 medium, else low
func LevelFor(score int) string {
	switch {
	case score >= 70:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 30:
		return LevelMedium
	default:
		return LevelLow
	}
}

// =============================================================================
// Result Types
// =============================================================================

// Flag 단일 리스크 플래그 (점수에만 합산, 독립 저장 안 함)
type Flag struct {
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	ImpactScore    int    `json:"impact_score"`
}

// Score is the risk assessment of one contract
type Score struct {
	ContractID   int      `json:"contract_id"`
	ClientName   string   `json:"client_name"`
	OverallScore int      `json:"overall_score"` // 0-100, clamp
	RiskLevel    string   `json:"risk_level"`
	Flags        []Flag   `json:"flags"`
	Strengths    []string `json:"strengths"`
	Summary      string   `json:"summary"`
}

// CountSeverity counts flags of one severity
func (s Score) CountSeverity(severity string) int {
	n := 0
	for _, f := range s.Flags {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// Distribution counts contracts per risk level
type Distribution struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Analysis is the portfolio-wide risk view
type Analysis struct {
	PortfolioAvgScore float64      `json:"portfolio_avg_score"` // 1 dp
	RiskDistribution  Distribution `json:"risk_distribution"`
	Contracts         []Score      `json:"contracts"` // score 내림차순
	TotalFlags        int          `json:"total_flags"`
	CriticalFlags     int          `json:"critical_flags"`
}
