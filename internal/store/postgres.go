package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/billflow/backend/internal/contracts"
)

// Schema creates billing.contracts. Nullable columns fall back to contracts.Defaults().
const Schema = `
CREATE SCHEMA IF NOT EXISTS billing;

CREATE TABLE IF NOT EXISTS billing.contracts (
	contract_id                  INTEGER PRIMARY KEY,
	client_name                  TEXT,
	contract_number              TEXT,
	client_tier                  TEXT,
	billing_model                TEXT,
	subscriber_count             INTEGER,
	avg_arpu                     DOUBLE PRECISION,
	monthly_minimum_transactions INTEGER,
	volume_discount_threshold    DOUBLE PRECISION,
	volume_discount_pct          DOUBLE PRECISION,
	client_monthly_revenue       DOUBLE PRECISION,
	revenue_share_pct            DOUBLE PRECISION,
	per_transaction_fee          DOUBLE PRECISION,
	monthly_platform_fee         DOUBLE PRECISION,
	our_monthly_revenue          DOUBLE PRECISION,
	annual_contract_value        DOUBLE PRECISION,
	total_contract_value         DOUBLE PRECISION,
	contract_length_months       INTEGER,
	early_termination_months     INTEGER,
	early_termination_fee        DOUBLE PRECISION,
	start_date                   TEXT,
	end_date                     TEXT,
	billing_accuracy_sla         DOUBLE PRECISION,
	platform_uptime_sla          DOUBLE PRECISION,
	support_response_hours       INTEGER,
	dispute_resolution_days      INTEGER,
	sla_credit_pct               DOUBLE PRECISION,
	payment_terms_days           INTEGER,
	remittance_frequency         TEXT,
	late_payment_pct             DOUBLE PRECISION,
	pci_compliant                BOOLEAN,
	soc2_certified               BOOLEAN,
	data_retention_months        INTEGER,
	city                         TEXT,
	state                        TEXT,
	phone                        TEXT,
	updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// columns in scan / insert order (contract_id first)
var columns = []string{
	"contract_id", "client_name", "contract_number", "client_tier", "billing_model",
	"subscriber_count", "avg_arpu", "monthly_minimum_transactions", "volume_discount_threshold", "volume_discount_pct",
	"client_monthly_revenue", "revenue_share_pct", "per_transaction_fee", "monthly_platform_fee",
	"our_monthly_revenue", "annual_contract_value", "total_contract_value",
	"contract_length_months", "early_termination_months", "early_termination_fee", "start_date", "end_date",
	"billing_accuracy_sla", "platform_uptime_sla", "support_response_hours", "dispute_resolution_days", "sla_credit_pct",
	"payment_terms_days", "remittance_frequency", "late_payment_pct",
	"pci_compliant", "soc2_certified", "data_retention_months",
	"city", "state", "phone",
}

// PostgresStore reads billing.contracts ordered by contract_id
// ⭐ SSOT: 계약 테이블 접근은 여기서만
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Name implements contracts.Store
func (s *PostgresStore) Name() string {
	return "postgres:billing.contracts"
}

// EnsureSchema creates the schema and table if they do not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Load implements contracts.Store
func (s *PostgresStore) Load(ctx context.Context) (contracts.Portfolio, error) {
	query := fmt.Sprintf(`SELECT %s FROM billing.contracts ORDER BY contract_id ASC`, strings.Join(columns, ", "))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	p := contracts.Portfolio{}
	for rows.Next() {
		var r row
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		p = append(p, r.contract())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveBatch upserts contracts by contract_id in one round trip
func (s *PostgresStore) SaveBatch(ctx context.Context, p contracts.Portfolio) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := p.ValidateUnique(); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, c := range p {
		batch.Queue(upsertQuery, values(c)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, c := range p {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert contract %d: %w", c.Index, err)
		}
	}
	return len(p), nil
}

var upsertQuery = buildUpsert()

func buildUpsert() string {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns))
	for i, col := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if i > 0 {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	updates = append(updates, "updated_at = NOW()")

	return fmt.Sprintf(`INSERT INTO billing.contracts (%s) VALUES (%s) ON CONFLICT (contract_id) DO UPDATE SET %s`,
		strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}

// values returns column values in columns order
func values(c contracts.Contract) []any {
	return []any{
		c.Index, c.ClientName, c.ContractNumber, c.ClientTier, c.BillingModel,
		c.SubscriberCount, c.AvgARPU, c.MonthlyMinimumTransactions, c.VolumeDiscountThreshold, c.VolumeDiscountPct,
		c.ClientMonthlyRevenue, c.RevenueSharePct, c.PerTransactionFee, c.MonthlyPlatformFee,
		c.OurMonthlyRevenue, c.AnnualContractValue, c.TotalContractValue,
		c.ContractLengthMonths, c.EarlyTerminationMonths, c.EarlyTerminationFee, c.StartDate, c.EndDate,
		c.BillingAccuracySLA, c.PlatformUptimeSLA, c.SupportResponseHours, c.DisputeResolutionDays, c.SLACreditPct,
		c.PaymentTermsDays, c.RemittanceFrequency, c.LatePaymentPct,
		c.PCICompliant, c.SOC2Certified, c.DataRetentionMonths,
		c.City, c.State, c.Phone,
	}
}

// row holds one nullable SELECT result; nil means "use the default"
type row struct {
	index                                        int
	clientName, contractNumber, tier, model      *string
	subscribers, minTxn                          *int
	arpu, discountThreshold, discountPct         *float64
	clientRevenue, revShare, txnFee, platformFee *float64
	ourRevenue, acv, tcv                         *float64
	length, etfMonths                            *int
	etfFee                                       *float64
	startDate, endDate                           *string
	billingSLA, uptimeSLA                        *float64
	supportHours, disputeDays                    *int
	slaCredit                                    *float64
	paymentTerms                                 *int
	remittance                                   *string
	lateFee                                      *float64
	pci, soc2                                    *bool
	retention                                    *int
	city, state, phone                           *string
}

func (r *row) dest() []any {
	return []any{
		&r.index, &r.clientName, &r.contractNumber, &r.tier, &r.model,
		&r.subscribers, &r.arpu, &r.minTxn, &r.discountThreshold, &r.discountPct,
		&r.clientRevenue, &r.revShare, &r.txnFee, &r.platformFee,
		&r.ourRevenue, &r.acv, &r.tcv,
		&r.length, &r.etfMonths, &r.etfFee, &r.startDate, &r.endDate,
		&r.billingSLA, &r.uptimeSLA, &r.supportHours, &r.disputeDays, &r.slaCredit,
		&r.paymentTerms, &r.remittance, &r.lateFee,
		&r.pci, &r.soc2, &r.retention,
		&r.city, &r.state, &r.phone,
	}
}

// contract applies non-null columns on top of Defaults()
func (r *row) contract() contracts.Contract {
	c := contracts.Defaults()
	c.Index = r.index

	set(&c.ClientName, r.clientName)
	set(&c.ContractNumber, r.contractNumber)
	set(&c.ClientTier, r.tier)
	set(&c.BillingModel, r.model)
	set(&c.SubscriberCount, r.subscribers)
	set(&c.AvgARPU, r.arpu)
	set(&c.MonthlyMinimumTransactions, r.minTxn)
	set(&c.VolumeDiscountThreshold, r.discountThreshold)
	set(&c.VolumeDiscountPct, r.discountPct)
	set(&c.ClientMonthlyRevenue, r.clientRevenue)
	set(&c.RevenueSharePct, r.revShare)
	set(&c.PerTransactionFee, r.txnFee)
	set(&c.MonthlyPlatformFee, r.platformFee)
	set(&c.OurMonthlyRevenue, r.ourRevenue)
	set(&c.AnnualContractValue, r.acv)
	set(&c.TotalContractValue, r.tcv)
	set(&c.ContractLengthMonths, r.length)
	set(&c.EarlyTerminationMonths, r.etfMonths)
	set(&c.EarlyTerminationFee, r.etfFee)
	set(&c.StartDate, r.startDate)
	set(&c.EndDate, r.endDate)
	set(&c.BillingAccuracySLA, r.billingSLA)
	set(&c.PlatformUptimeSLA, r.uptimeSLA)
	set(&c.SupportResponseHours, r.supportHours)
	set(&c.DisputeResolutionDays, r.disputeDays)
	set(&c.SLACreditPct, r.slaCredit)
	set(&c.PaymentTermsDays, r.paymentTerms)
	set(&c.RemittanceFrequency, r.remittance)
	set(&c.LatePaymentPct, r.lateFee)
	set(&c.PCICompliant, r.pci)
	set(&c.SOC2Certified, r.soc2)
	set(&c.DataRetentionMonths, r.retention)
	set(&c.City, r.city)
	set(&c.State, r.state)
	set(&c.Phone, r.phone)

	return c.Normalized()
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
