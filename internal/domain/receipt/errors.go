package receipt

import "github.com/obra/backend/internal/domain/shared"

// Error codes surfaced by the receipt lifecycle
const (
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeInvalidDate            = "INVALID_DATE"
	CodeInvalidReceiptParams   = "INVALID_RECEIPT_PARAMS"
	CodeAlreadySigned          = "ALREADY_SIGNED"
	CodeInvalidSignatureParams = "INVALID_SIGNATURE_PARAMS"
	CodeHashComputationFailure = "HASH_COMPUTATION_FAILURE"
	CodeHashComputationTimeout = "HASH_COMPUTATION_TIMEOUT"
	CodeAlreadyCancelled       = "ALREADY_CANCELLED"
)

var (
	ErrInvalidAmount          = shared.NewDomainError(CodeInvalidAmount, "Amount is not a finite number")
	ErrInvalidDate            = shared.NewDomainError(CodeInvalidDate, "Date could not be parsed")
	ErrInvalidReceiptParams   = shared.NewDomainError(CodeInvalidReceiptParams, "Invalid receipt parameters")
	ErrAlreadySigned          = shared.NewDomainError(CodeAlreadySigned, "Receipt is already signed")
	ErrInvalidSignatureParams = shared.NewDomainError(CodeInvalidSignatureParams, "Invalid signature parameters")
	ErrHashComputationFailure = shared.NewDomainError(CodeHashComputationFailure, "Document hash could not be computed")
	ErrHashComputationTimeout = shared.NewDomainError(CodeHashComputationTimeout, "Document hash computation timed out")
	ErrAlreadyCancelled       = shared.NewDomainError(CodeAlreadyCancelled, "Receipt is already cancelled")
	ErrReceiptNotFound        = shared.NewDomainError("NOT_FOUND", "Receipt not found")
)
