package scanning

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrorKind discriminates analysis failures
type ErrorKind int

const (
	// KindGeneral is any failure not covered by a more specific kind
	KindGeneral ErrorKind = iota
	// KindCredits means the analysis service refused for lack of credits
	KindCredits
	// KindTimeout means the analysis did not finish in time
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindCredits:
		return "credits"
	case KindTimeout:
		return "timeout"
	default:
		return "general"
	}
}

// AnalysisError is returned by every Analyzer
type AnalysisError struct {
	Kind    ErrorKind
	Status  int // upstream HTTP status, 0 when there was no response
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an analysis failure. Errors that are not
// *AnalysisError are general, except deadline expiry which is a timeout.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindGeneral
}

func creditsError(status int, err error) *AnalysisError {
	return &AnalysisError{Kind: KindCredits, Status: status, Message: "API credits have been depleted", Err: err}
}

func timeoutError(err error) *AnalysisError {
	return &AnalysisError{Kind: KindTimeout, Message: "Document processing timed out", Err: err}
}

func generalError(status int, message string, err error) *AnalysisError {
	if message == "" {
		message = "An error occurred"
	}
	return &AnalysisError{Kind: KindGeneral, Status: status, Message: message, Err: err}
}

// asAnalysisError classifies a provider failure. Quota errors from Google
// APIs count as depleted credits.
func asAnalysisError(message string, err error) error {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return timeoutError(err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests || gerr.Code == http.StatusPaymentRequired {
			return creditsError(gerr.Code, err)
		}
		return generalError(gerr.Code, message, err)
	}
	return generalError(0, message, err)
}
