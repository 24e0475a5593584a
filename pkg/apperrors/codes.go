package apperrors

// ErrorCode identifies a class of application error.
type ErrorCode string

// Cross-cutting, non-domain error codes.
const (
	// System and unknown failures
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business-logic codes
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeLimitExceeded    ErrorCode = "LIMIT_EXCEEDED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Authentication / authorization
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	// Ingest and inference
	CodeUnsupportedMedia      ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	CodeFileTooLarge          ErrorCode = "FILE_TOO_LARGE"
	CodeStorageLimitExceeded  ErrorCode = "STORAGE_LIMIT_EXCEEDED"
	CodeModelUnavailable      ErrorCode = "MODEL_UNAVAILABLE"
	CodeInferenceFailed       ErrorCode = "INFERENCE_FAILED"
	CodeExtractionFailed      ErrorCode = "EXTRACTION_FAILED"
	CodeKnowledgeBaseEmpty    ErrorCode = "KNOWLEDGE_BASE_EMPTY"
	CodeDocumentLimitExceeded ErrorCode = "DOCUMENT_LIMIT_EXCEEDED"
)
