package sales

import "errors"

var (
	// ErrInvalidDate is returned when a date cannot be parsed or does not exist.
	ErrInvalidDate = errors.New("sales: invalid date")
	// ErrInvalidAmount is returned for non-numeric or negative amounts.
	ErrInvalidAmount = errors.New("sales: invalid amount")
	// ErrInvalidType is returned for an unknown sale type.
	ErrInvalidType = errors.New("sales: invalid type")
	// ErrInvalidPeriod is returned for an unknown period selector.
	ErrInvalidPeriod = errors.New("sales: invalid period")
	// ErrEmptyID is returned when a record carries no id.
	ErrEmptyID = errors.New("sales: empty id")
	// ErrSaleNotFound is returned when no record matches an id.
	ErrSaleNotFound = errors.New("sales: not found")
	// ErrCorruptLedger is returned when stored data fails schema checks.
	ErrCorruptLedger = errors.New("sales: corrupt ledger")
	// ErrStorageUnavailable is returned by mutations when the slot cannot be read.
	ErrStorageUnavailable = errors.New("sales: storage unavailable")
	// ErrInvalidFile is returned when an import file is not a readable spreadsheet
	// in the exporter's format.
	ErrInvalidFile = errors.New("sales: invalid file")
	// ErrExportUnavailable is returned when a document cannot be generated.
	ErrExportUnavailable = errors.New("sales: export unavailable")
)
