package persist

type constError string

func (e constError) Error() string { return string(e) }

// Persistence errors.
const (
	// ErrItemNotFound is returned by a Store when the key has never been set.
	ErrItemNotFound = constError("item not found")

	// ErrInvalidKey is returned for empty storage keys.
	ErrInvalidKey = constError("storage key cannot be empty")

	// ErrImportRejected is returned when a document fails validation.
	ErrImportRejected = constError("import rejected")

	// ErrSaveFailed wraps store failures during Save.
	ErrSaveFailed = constError("save failed")
)
