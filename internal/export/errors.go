package export

import (
	"context"
	"errors"
	"os"

	"resighting-export/internal/document"
	"resighting-export/internal/gateway"
	"resighting-export/internal/render"
)

// Kind is the coarse failure class of a run, used for exit messages, HTTP
// status codes and logs.
type Kind string

const (
	KindInvalidDateFormat  Kind = "invalid_date_format"
	KindStoreUnavailable   Kind = "store_unavailable"
	KindInvalidDestination Kind = "invalid_destination"
	KindAlreadyFinalized   Kind = "document_already_finalized"
	KindCancelled          Kind = "cancelled"
	KindIO                 Kind = "io"
	KindUnknown            Kind = "unknown"
)

// Classify maps a run error onto a Kind using sentinel errors only.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, gateway.ErrInvalidDateFormat):
		return KindInvalidDateFormat
	case errors.Is(err, gateway.ErrStoreUnavailable):
		return KindStoreUnavailable
	case errors.Is(err, document.ErrInvalidDestination):
		return KindInvalidDestination
	case errors.Is(err, document.ErrDocumentAlreadyFinalized):
		return KindAlreadyFinalized
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return KindIO
	}
	return KindUnknown
}

// UserMessage returns remediation text for err suitable for a person at a
// terminal or form.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindInvalidDateFormat:
		return "Could not read the dates. Enter both dates as month/day/year (for example 6/21/2023), with the start date on or before the end date."
	case KindStoreUnavailable:
		return "Could not reach the resightings database. Check the network connection and credentials, then try again."
	case KindInvalidDestination:
		return "The destination must be an Excel file ending in .xlsx."
	case KindAlreadyFinalized:
		return "This export document was already saved and cannot be written again."
	case KindCancelled:
		return "The export was cancelled. No file was written."
	case KindIO:
		return "Could not write the Excel file. Check that the destination folder exists and is writable."
	case "":
		return ""
	default:
		return "The export failed: " + err.Error()
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, render.ErrMalformedTimestamp):
		return FailureMalformedTimestamp
	case errors.Is(err, render.ErrImageDecode):
		return FailureImageDecode
	default:
		return FailureRender
	}
}
