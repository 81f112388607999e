package domain

import (
	"errors"
	"fmt"
)

// Kind classifies why an upgrade request was rejected.
type Kind string

// Rejection kinds. Every kind is terminal for the request.
const (
	KindMalformedInput            Kind = "MalformedInput"
	KindInvalidSignature          Kind = "InvalidSignature"
	KindReplayRejected            Kind = "ReplayRejected"
	KindOwnershipDenied           Kind = "OwnershipDenied"
	KindInsufficientStake         Kind = "InsufficientStake"
	KindInsufficientStakeDuration Kind = "InsufficientStakeDuration"
	KindOracleUnavailable         Kind = "OracleUnavailable"
	KindMetadataNotFound          Kind = "MetadataNotFound"
	KindDecodeError               Kind = "DecodeError"
	KindFetchError                Kind = "FetchError"
	KindWrongTier                 Kind = "WrongTier"
	KindIdentifierMismatch        Kind = "IdentifierMismatch"
	KindMissingAttribute          Kind = "MissingAttribute"
	KindUnrecognizedVariant       Kind = "UnrecognizedVariant"
	KindStorageUnavailable        Kind = "StorageUnavailable"
	KindHistoryExhausted          Kind = "HistoryExhausted"
)

// publicReasons are the only strings ever returned to a client.
var publicReasons = map[Kind]string{
	KindMalformedInput:            "Malformed request",
	KindInvalidSignature:          "Invalid signature",
	KindReplayRejected:            "Request expired",
	KindOwnershipDenied:           "Ownership fail",
	KindInsufficientStake:         "Insufficient staking amount",
	KindInsufficientStakeDuration: "Insufficient staking length",
	KindOracleUnavailable:         "Ledger unavailable",
	KindMetadataNotFound:          "Metadata not found",
	KindDecodeError:               "Metadata could not be decoded",
	KindFetchError:                "Metadata could not be fetched",
	KindWrongTier:                 "NFT is not Tier 2",
	KindIdentifierMismatch:        "NFT id mismatch",
	KindMissingAttribute:          "Body attribute not found",
	KindUnrecognizedVariant:       "Invalid body attribute",
	KindStorageUnavailable:        "Storage unavailable",
	KindHistoryExhausted:          "Stake history unavailable",
}

// PublicReason returns the client-safe description of a kind.
func (k Kind) PublicReason() string {
	if r, ok := publicReasons[k]; ok {
		return r
	}
	return "There was a problem."
}

// Error is a classified pipeline failure. Msg and Err are for logs only.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Errorf builds a classified error.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of err. Unclassified errors report ok=false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput            = &Error{Kind: KindMalformedInput}
	ErrInvalidSignature          = &Error{Kind: KindInvalidSignature}
	ErrReplayRejected            = &Error{Kind: KindReplayRejected}
	ErrOwnershipDenied           = &Error{Kind: KindOwnershipDenied}
	ErrInsufficientStake         = &Error{Kind: KindInsufficientStake}
	ErrInsufficientStakeDuration = &Error{Kind: KindInsufficientStakeDuration}
	ErrOracleUnavailable         = &Error{Kind: KindOracleUnavailable}
	ErrMetadataNotFound          = &Error{Kind: KindMetadataNotFound}
	ErrDecodeError               = &Error{Kind: KindDecodeError}
	ErrFetchError                = &Error{Kind: KindFetchError}
	ErrWrongTier                 = &Error{Kind: KindWrongTier}
	ErrIdentifierMismatch        = &Error{Kind: KindIdentifierMismatch}
	ErrMissingAttribute          = &Error{Kind: KindMissingAttribute}
	ErrUnrecognizedVariant       = &Error{Kind: KindUnrecognizedVariant}
	ErrStorageUnavailable        = &Error{Kind: KindStorageUnavailable}
	ErrHistoryExhausted          = &Error{Kind: KindHistoryExhausted}
)
