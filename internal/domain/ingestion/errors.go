package ingestion

import "github.com/caixo/backend/internal/domain/shared"

// Terminal pipeline failures. These mean the inbound message itself cannot
// be processed; retrying the same input would fail the same way, so the
// pipeline notifies the sender once and stops. Transport-level failures are
// returned as plain errors and stay retryable.
var (
	ErrClassificationFailed = shared.NewDomainError("CLASSIFICATION_FAILED", "Could not extract financial data from the message")
	ErrTranscriptionFailed  = shared.NewDomainError("TRANSCRIPTION_FAILED", "Could not transcribe the audio message")
)
