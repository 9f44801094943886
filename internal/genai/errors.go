package genai

import "errors"

// ErrEmptyQuestion reports a blank question. It is a caller error and is
// never retried.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ErrQuotaExhausted reports that every attempt failed on upstream rate or
// quota limits. Callers surface it as a retry-later condition.
var ErrQuotaExhausted = errors.New("generation quota exhausted")

// ErrGenerationFailed reports a non-quota failure after all retries.
var ErrGenerationFailed = errors.New("generation failed")

// QuotaRemediation is the user-facing message attached to quota exhaustion.
const QuotaRemediation = "API quota limit reached. The free tier has strict rate limits. Please wait 60 seconds and try again, or upgrade your API key."
