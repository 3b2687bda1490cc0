package events

// Ledger event types emitted by the reconciliation engines.
const (
	EventInvoicesGenerated    = "invoice.generated"
	EventInvoicePaid          = "invoice.paid"
	EventPaymentRecorded      = "payment.recorded"
	EventPaymentMatched       = "payment.matched"
	EventHistoryReconstructed = "history.reconstructed"
	EventSettlementCalculated = "settlement.calculated"
)
