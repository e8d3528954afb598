package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type slowCreditProvider struct {
	delay time.Duration
}

func (p *slowCreditProvider) PullReport(ctx context.Context, _ ClientPII) (*CreditReport, error) {
	select {
	case <-time.After(p.delay):
		return &CreditReport{Range: models.CreditGood, Bureau: "slow"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type failingCreditProvider struct{}

func (p *failingCreditProvider) PullReport(context.Context, ClientPII) (*CreditReport, error) {
	return nil, errors.New("bureau handshake failed")
}

type slowDocumentValidator struct {
	delay time.Duration
}

func (v *slowDocumentValidator) Validate(ctx context.Context, _, _ string) (*DocumentValidation, error) {
	select {
	case <-time.After(v.delay):
		return &DocumentValidation{Valid: true}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestTimeoutCreditProviderDelegates(t *testing.T) {
	provider := NewTimeoutCreditReportProvider(&StaticCreditReportProvider{Range: models.CreditFair}, time.Second, nil)

	report, err := provider.PullReport(context.Background(), ClientPII{FirstName: "Ana", LastName: "Reyes"})
	require.NoError(t, err)
	assert.Equal(t, models.CreditFair, report.Range)
}

func TestTimeoutCreditProviderFailsClosedOnTimeout(t *testing.T) {
	provider := NewTimeoutCreditReportProvider(&slowCreditProvider{delay: 500 * time.Millisecond}, 10*time.Millisecond, nil)

	report, err := provider.PullReport(context.Background(), ClientPII{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, appErrors.Is(err, appErrors.ErrProviderUnavailable))
}

func TestTimeoutCreditProviderFailsClosedOnError(t *testing.T) {
	provider := NewTimeoutCreditReportProvider(&failingCreditProvider{}, time.Second, nil)

	report, err := provider.PullReport(context.Background(), ClientPII{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, appErrors.Is(err, appErrors.ErrProviderUnavailable))
}

func TestTimeoutDocumentValidatorTimesOut(t *testing.T) {
	validator := NewTimeoutDocumentValidator(&slowDocumentValidator{delay: 500 * time.Millisecond}, 10*time.Millisecond, nil)

	verdict, err := validator.Validate(context.Background(), "https://files.example/doc.pdf", "proof_of_income")
	require.Error(t, err)
	assert.Nil(t, verdict)
	assert.True(t, appErrors.Is(err, appErrors.ErrProviderUnavailable))
}

func TestTimeoutDocumentValidatorDelegates(t *testing.T) {
	validator := NewTimeoutDocumentValidator(&AcceptAllDocumentValidator{}, time.Second, nil)

	verdict, err := validator.Validate(context.Background(), "https://files.example/doc.pdf", "proof_of_income")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
}
