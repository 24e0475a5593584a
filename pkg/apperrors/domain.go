package apperrors

import (
	"net/http"
)

// Factories and predefined values for domain errors shared across services.

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or malformed token",
	http.StatusUnauthorized,
)

var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Token has expired",
	http.StatusUnauthorized,
)

func ErrEmailAlreadyExists() *AppError {
	return New(CodeAlreadyExists, "auth", "User already exists with this email", http.StatusConflict)
}

func ErrWeakPassword(message string) *AppError {
	return New(CodeValidationFailed, "auth", message, http.StatusBadRequest)
}

// --- Ingest & files ---

// ErrUnsupportedMedia reports a payload whose sniffed type is outside the
// accepted set. detected is the MIME type derived from magic bytes.
func ErrUnsupportedMedia(detected string) *AppError {
	return New(
		CodeUnsupportedMedia,
		"ingest",
		"Unsupported file type: "+detected+". Please upload PDF, Word, CSV, text or markdown files.",
		http.StatusUnsupportedMediaType,
	)
}

func ErrFileTooLarge(message string) *AppError {
	return New(CodeFileTooLarge, "ingest", message, http.StatusBadRequest)
}

func ErrEmptyPayload() *AppError {
	return New(CodeValidationFailed, "ingest", "File is empty", http.StatusBadRequest)
}

func ErrUnsafeFile(reason string) *AppError {
	return New(CodeValidationFailed, "ingest", "Security check failed: "+reason, http.StatusBadRequest)
}

func ErrDocumentLimitExceeded(max int) *AppError {
	return New(
		CodeDocumentLimitExceeded,
		"ingest",
		"Document limit reached",
		http.StatusBadRequest,
	).WithDetails(map[string]int{"max_documents": max})
}

func ErrStorageLimitExceeded() *AppError {
	return New(CodeStorageLimitExceeded, "ingest", "Storage quota exceeded", http.StatusBadRequest)
}

func ErrExtractionFailed(err error) *AppError {
	return Wrap(err, CodeExtractionFailed, "ingest", "Unable to extract text from document", http.StatusUnprocessableEntity)
}

// --- Inference ---

// ErrModelUnavailable means the embedding runtime never reached Ready.
// Callers get a 503 and should retry after the process is restarted.
func ErrModelUnavailable(err error) *AppError {
	return Wrap(err, CodeModelUnavailable, "inference", "Model is not available", http.StatusServiceUnavailable)
}

// ErrInferenceFailed covers per-request model execution failures,
// including deadline overruns.
func ErrInferenceFailed(err error) *AppError {
	return Wrap(err, CodeInferenceFailed, "inference", "Inference failed", http.StatusInternalServerError)
}

func ErrAnswerGeneration(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "inference",
		"I'm having trouble generating a response right now. Please try again.",
		http.StatusBadGateway)
}

// --- Query ---

func ErrKnowledgeBaseEmpty() *AppError {
	return New(
		CodeKnowledgeBaseEmpty,
		"query",
		"I don't have a knowledge base yet. Please upload documents first.",
		http.StatusNotFound,
	)
}

// --- Rate limiting ---

func ErrRateLimited(message string) *AppError {
	return New(CodeRateLimited, "ratelimit", message, http.StatusTooManyRequests)
}
