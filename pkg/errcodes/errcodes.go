package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Deal discovery cycle.
	QuotaExceeded     failure.ErrorCode = "QuotaExceeded"     // Daily run budget spent, retry after reset
	FetchFailed       failure.ErrorCode = "FetchFailed"       // Scanner could not deliver candidates
	NormalizeFailed   failure.ErrorCode = "NormalizeFailed"   // Preprocessor rejected a deal description
	EstimationFailed  failure.ErrorCode = "EstimationFailed"  // No pricing source produced a value
	NotifyFailed      failure.ErrorCode = "NotifyFailed"      // Alert delivery failed (best effort)
	CycleInterrupted  failure.ErrorCode = "CycleInterrupted"  // Caller cancelled mid-cycle

	// Persistence.
	PersistenceIntegrity failure.ErrorCode = "PersistenceIntegrity" // Stored state failed verification
	PersistenceConflict  failure.ErrorCode = "PersistenceConflict"  // Compare-and-swap lost the race

	// Configuration.
	FatalConfiguration failure.ErrorCode = "FatalConfiguration" // Required credentials/config missing

	InvalidDeal      failure.ErrorCode = "InvalidDeal"      // Empty identifier or non-positive price
	InvalidThreshold failure.ErrorCode = "InvalidThreshold"
	InvalidKeepCount failure.ErrorCode = "InvalidKeepCount"
)
