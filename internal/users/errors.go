package users

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrNotFound indicates that no record carries the requested identifier.
	ErrNotFound = errors.New("users: record not found")
	// ErrFetchFailed indicates that the store could not be read.
	ErrFetchFailed = errors.New("users: fetch failed")
	// ErrInvalidFields indicates that record fields violate store bounds.
	ErrInvalidFields = errors.New("users: invalid fields")

	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingBaseURL    = errors.New("base url is required")
	errMissingRecordID   = errors.New("record identifier is required")
	noOpLogger           = zap.NewNop()
)

const (
	opMemoryStoreNew = "users.memory_store.new"
	opSQLiteStoreNew = "users.sqlite_store.new"
	opRemoteStoreNew = "users.remote_store.new"
	opList           = "users.list"
	opGet            = "users.get"
	opCreate         = "users.create"
	opUpdate         = "users.update"

	reasonNotFound      = "not_found"
	reasonInvalidFields = "invalid_fields"
	reasonCanceled      = "canceled"
	reasonIDFailed      = "id_generation_failed"
	reasonQueryFailed   = "query_failed"
	reasonInsertFailed  = "insert_failed"
	reasonUpdateFailed  = "update_failed"
	reasonTransport     = "transport_failed"
	reasonStatus        = "unexpected_status"
	reasonDecodeFailed  = "decode_failed"
	reasonMissingID     = "missing_record_id"
)

// ServiceError carries a stable code alongside the underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the operation.reason code.
func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

func fetchFailed(operation, reason string, cause error) error {
	return newServiceError(operation, reason, fmt.Errorf("%w: %v", ErrFetchFailed, cause))
}

func logError(logger *zap.Logger, operation, reason string, err error, fields ...zap.Field) {
	if logger == nil {
		logger = noOpLogger
	}
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	logger.Error("users store error", attrs...)
}
