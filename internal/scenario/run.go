package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownScenario 지원하지 않는 시나리오 타입
	ErrUnknownScenario = errors.New("unknown scenario type")
	// ErrInvalidParams 파라미터 타입/값 오류
	ErrInvalidParams = errors.New("invalid scenario parameters")
)

// Parameter defaults
const (
	DefaultTargetSLA     = 99.5
	DefaultMonths        = 12
	DefaultChurnRatePct  = 1.0
	DefaultGrowthRatePct = 2.0
)

// Params is the loosely typed parameter map of a transport request
type Params map[string]any

// Run dispatches a named scenario with its parameter map
func (e *Engine) Run(scenarioType string, params Params) (Result, error) {
	if params == nil {
		params = Params{}
	}

	switch scenarioType {
	case TypeRateChange:
		tier, err := params.optionalString("tier")
		if err != nil {
			return nil, err
		}
		model, err := params.optionalString("billing_model")
		if err != nil {
			return nil, err
		}
		pct, err := params.floatParam("rate_change_pct", 0)
		if err != nil {
			return nil, err
		}
		return e.RateChange(RateChangeParams{Tier: tier, BillingModel: model, RateChangePct: pct}), nil

	case TypeClientLoss:
		names, err := params.stringList("client_names")
		if err != nil {
			return nil, err
		}
		return e.ClientLoss(names), nil

	case TypeSLAStandardization:
		target, err := params.floatParam("target_sla", DefaultTargetSLA)
		if err != nil {
			return nil, err
		}
		return e.SLAStandardization(target), nil

	case TypeRevenueForecast:
		months, err := params.intParam("months", DefaultMonths)
		if err != nil {
			return nil, err
		}
		if months < 0 {
			return nil, invalidf("months must be >= 0, got %d", months)
		}
		churn, err := params.floatParam("churn_rate_pct", DefaultChurnRatePct)
		if err != nil {
			return nil, err
		}
		growth, err := params.floatParam("growth_rate_pct", DefaultGrowthRatePct)
		if err != nil {
			return nil, err
		}
		return e.Forecast(ForecastParams{Months: months, MonthlyChurnRate: churn, MonthlyGrowthRate: growth}), nil

	case TypeEarlyTermination:
		if _, ok := params["month"]; !ok {
			return nil, invalidf("month is required")
		}
		month, err := params.intParam("month", 0)
		if err != nil {
			return nil, err
		}
		if month < 0 {
			return nil, invalidf("month must be >= 0, got %d", month)
		}
		names, err := params.stringList("client_names")
		if err != nil {
			return nil, err
		}
		return e.EarlyTermination(names, month)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, scenarioType)
	}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

// =============================================================================
// Param coercion (JSON numbers arrive as float64)
// =============================================================================

func (p Params) floatParam(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, invalidf("%s: %v", key, err)
		}
		return f, nil
	default:
		return 0, invalidf("%s must be a number, got %T", key, v)
	}
}

func (p Params) intParam(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	if n, isInt := v.(int); isInt {
		return n, nil
	}
	f, err := p.floatParam(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, invalidf("%s must be a whole number, got %v", key, f)
	}
	return int(f), nil
}

// optionalString: 빈 문자열/null은 필터 없음
func (p Params) optionalString(key string) (*string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, isString := v.(string)
	if !isString {
		return nil, invalidf("%s must be a string, got %T", key, v)
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func (p Params) stringList(key string) ([]string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return []string{}, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, isString := item.(string)
			if !isString {
				return nil, invalidf("%s must contain strings, got %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalidf("%s must be a list of strings, got %T", key, v)
	}
}
