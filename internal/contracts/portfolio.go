package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/billflow/backend/pkg/money"
)

// ErrDuplicateID index가 포트폴리오 안에서 중복될 때
var ErrDuplicateID = errors.New("duplicate contract index")

// Portfolio is the ordered, read-only contract list of one snapshot.
// ⭐ SSOT: 모든 엔진은 같은 Portfolio 값을 공유하며 수정하지 않음
type Portfolio []Contract

// Store loads the full ordered contract list
type Store interface {
	Name() string
	Load(ctx context.Context) (Portfolio, error)
}

// Find returns the contract with the given index
func (p Portfolio) Find(id int) (Contract, bool) {
	for _, c := range p {
		if c.Index == id {
			return c, true
		}
	}
	return Contract{}, false
}

// TotalMonthlyRevenue sums our_monthly_revenue
func (p Portfolio) TotalMonthlyRevenue() float64 {
	values := make([]float64, len(p))
	for i, c := range p {
		values[i] = c.OurMonthlyRevenue
	}
	return money.Sum(values...)
}

// TotalACV sums annual_contract_value
func (p Portfolio) TotalACV() float64 {
	values := make([]float64, len(p))
	for i, c := range p {
		values[i] = c.AnnualContractValue
	}
	return money.Sum(values...)
}

// ByTier returns contracts of the given tier, in order
func (p Portfolio) ByTier(tier string) Portfolio {
	var out Portfolio
	for _, c := range p {
		if c.ClientTier == tier {
			out = append(out, c)
		}
	}
	return out
}

// ValidateUnique fails on the first repeated index
func (p Portfolio) ValidateUnique() error {
	seen := make(map[int]struct{}, len(p))
	for _, c := range p {
		if _, ok := seen[c.Index]; ok {
			return fmt.Errorf("%w: %d (%s)", ErrDuplicateID, c.Index, c.ClientName)
		}
		seen[c.Index] = struct{}{}
	}
	return nil
}
