package ledger

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	ledgerMeter           = otel.Meter("finanzas/ledger")
	transactionsPosted, _ = ledgerMeter.Int64Counter("ledger.transactions.posted",
		metric.WithDescription("User-entered transactions posted"))
	recurringGenerated, _ = ledgerMeter.Int64Counter("ledger.recurring.generated",
		metric.WithDescription("Transactions generated from recurring rules"))
	recurringFailed, _ = ledgerMeter.Int64Counter("ledger.recurring.failed",
		metric.WithDescription("Recurring rules that failed to generate"))
	transfersExecuted, _ = ledgerMeter.Int64Counter("ledger.transfers.executed",
		metric.WithDescription("Transfers executed"))
)
