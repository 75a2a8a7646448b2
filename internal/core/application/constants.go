package application

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
	DBPostgres = "postgres"

	// NativeAssetCode is the code of the ledger's native value unit.
	NativeAssetCode = "XLM"
	// DefaultCurrency is used when a request does not specify one.
	DefaultCurrency = "USD"

	simulatedDebitPrefix = "SIM-"
)

// FailureKind is the machine readable classification of a failed result.
type FailureKind string

const (
	KindNotFound          FailureKind = "NOT_FOUND"
	KindInvalidState      FailureKind = "INVALID_STATE"
	KindSettlementFailure FailureKind = "SETTLEMENT_FAILURE"
	KindValidationFailure FailureKind = "VALIDATION_FAILURE"
)
