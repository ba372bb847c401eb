package validation

// Reason is a stable machine-readable rejection code surfaced to API callers.
// These strings are part of the wire contract and must not change.
type Reason string

const (
	ReasonInvalidDirectory Reason = "INVALID_DIRECTORY"
	ReasonInvalidFilename  Reason = "INVALID_FILENAME"
	ReasonInvalidFileType  Reason = "INVALID_FILE_TYPE"
	ReasonContentMismatch  Reason = "CONTENT_MISMATCH"
	ReasonFileTooLarge     Reason = "FILE_TOO_LARGE"
	ReasonFileExists       Reason = "FILE_EXISTS"
	ReasonEmptyFile        Reason = "EMPTY_FILE"
)

// Error is a recoverable admission failure. These are expected user input
// problems: they are reported to the caller with their reason code and never
// logged as errors.
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

// Reject builds an admission rejection with the given reason code.
func Reject(reason Reason, msg string) error {
	return &Error{Reason: reason, Message: msg}
}
