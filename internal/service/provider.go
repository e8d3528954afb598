package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

// CreditReport is a bureau pull result. The system works without one; a
// pull only refines the manually supplied credit range.
type CreditReport struct {
	Range    models.CreditRange `json:"range"`
	Bureau   string             `json:"bureau"`
	PulledAt time.Time          `json:"pulled_at"`
}

// DocumentValidation is the result of validating one uploaded document.
type DocumentValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ClientPII is the minimal identity payload a bureau pull needs.
type ClientPII struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CreditReportProvider is the pluggable bureau boundary.
type CreditReportProvider interface {
	PullReport(ctx context.Context, pii ClientPII) (*CreditReport, error)
}

// DocumentValidator is the pluggable document-validation boundary.
type DocumentValidator interface {
	Validate(ctx context.Context, documentURL, documentType string) (*DocumentValidation, error)
}

// StaticCreditReportProvider returns a fixed tier. Used in tests and in
// deployments without a bureau integration.
type StaticCreditReportProvider struct {
	Range models.CreditRange
}

// PullReport returns the configured tier.
func (p *StaticCreditReportProvider) PullReport(_ context.Context, _ ClientPII) (*CreditReport, error) {
	return &CreditReport{Range: p.Range, Bureau: "static", PulledAt: time.Now().UTC()}, nil
}

// AcceptAllDocumentValidator approves every document.
type AcceptAllDocumentValidator struct{}

// Validate approves the document.
func (v *AcceptAllDocumentValidator) Validate(_ context.Context, _, _ string) (*DocumentValidation, error) {
	return &DocumentValidation{Valid: true}, nil
}

// TimeoutCreditReportProvider bounds a provider call with a deadline. A
// timeout or provider error fails closed as PROVIDER_UNAVAILABLE and is
// never read as a negative credit signal.
type TimeoutCreditReportProvider struct {
	inner   CreditReportProvider
	timeout time.Duration
	logger  *zap.Logger
}

// NewTimeoutCreditReportProvider wraps a provider with a call deadline.
func NewTimeoutCreditReportProvider(inner CreditReportProvider, timeout time.Duration, logger *zap.Logger) *TimeoutCreditReportProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeoutCreditReportProvider{inner: inner, timeout: timeout, logger: logger}
}

// PullReport delegates with a deadline.
func (p *TimeoutCreditReportProvider) PullReport(ctx context.Context, pii ClientPII) (*CreditReport, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		report *CreditReport
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		report, err := p.inner.PullReport(ctx, pii)
		ch <- result{report: report, err: err}
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("credit report pull timed out")
		return nil, appErrors.Clone(appErrors.ErrProviderUnavailable, "credit report provider timed out")
	case res := <-ch:
		if res.err != nil {
			p.logger.Warn("credit report pull failed", zap.Error(res.err))
			return nil, appErrors.Wrap(res.err, appErrors.ErrProviderUnavailable.Code, appErrors.ErrProviderUnavailable.Status, "credit report provider failed")
		}
		return res.report, nil
	}
}

// TimeoutDocumentValidator bounds validator calls the same way.
type TimeoutDocumentValidator struct {
	inner   DocumentValidator
	timeout time.Duration
	logger  *zap.Logger
}

// NewTimeoutDocumentValidator wraps a validator with a call deadline.
func NewTimeoutDocumentValidator(inner DocumentValidator, timeout time.Duration, logger *zap.Logger) *TimeoutDocumentValidator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeoutDocumentValidator{inner: inner, timeout: timeout, logger: logger}
}

// Validate delegates with a deadline.
func (v *TimeoutDocumentValidator) Validate(ctx context.Context, documentURL, documentType string) (*DocumentValidation, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	type result struct {
		validation *DocumentValidation
		err        error
	}
	ch := make(chan result, 1)
	go func() {
		validation, err := v.inner.Validate(ctx, documentURL, documentType)
		ch <- result{validation: validation, err: err}
	}()

	select {
	case <-ctx.Done():
		v.logger.Warn("document validation timed out", zap.String("type", documentType))
		return nil, appErrors.Clone(appErrors.ErrProviderUnavailable, "document validator timed out")
	case res := <-ch:
		if res.err != nil {
			v.logger.Warn("document validation failed", zap.String("type", documentType), zap.Error(res.err))
			return nil, appErrors.Wrap(res.err, appErrors.ErrProviderUnavailable.Code, appErrors.ErrProviderUnavailable.Status, "document validator failed")
		}
		return res.validation, nil
	}
}
