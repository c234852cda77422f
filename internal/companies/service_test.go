package companies

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/pkg/workflows"
)

// stubRepository keeps a single company in memory and mimics the
// all-or-nothing semantics of the transactional Transition, including the
// row lock that serializes concurrent transitions.
type stubRepository struct {
	mu            sync.Mutex
	company       *Company
	histories     []*StatusHistory
	alerts        []*alerts.Alert
	transitionErr error
	afterRead     func()
}

func (r *stubRepository) Create(ctx context.Context, company *Company, initial *StatusHistory) error {
	company.ID = uuid.New()
	initial.CompanyID = company.ID
	r.company = company
	r.histories = append(r.histories, initial)
	return nil
}

func (r *stubRepository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	if r.company == nil || r.company.ID != id {
		return nil, ErrCompanyNotFound
	}
	copied := *r.company
	if r.afterRead != nil {
		r.afterRead()
	}
	return &copied, nil
}

func (r *stubRepository) GetByName(ctx context.Context, name string) (*Company, error) {
	if r.company == nil || r.company.Name != name {
		return nil, ErrCompanyNotFound
	}
	copied := *r.company
	return &copied, nil
}

func (r *stubRepository) List(ctx context.Context, filter Filter) ([]*Company, error) {
	if r.company == nil {
		return nil, nil
	}
	return []*Company{r.company}, nil
}

func (r *stubRepository) Update(ctx context.Context, company *Company) error {
	// Profile fields only; status columns stay whatever Transition last wrote.
	updated := *company
	updated.CurrentStatus = r.company.CurrentStatus
	updated.StatusChangedAt = r.company.StatusChangedAt
	r.company = &updated
	return nil
}

func (r *stubRepository) ListHistory(ctx context.Context, companyID uuid.UUID) ([]*StatusHistory, error) {
	return r.histories, nil
}

func (r *stubRepository) ListStale(ctx context.Context, statuses []workflows.StatusCode, before time.Time) ([]*Company, error) {
	return nil, nil
}

func (r *stubRepository) Transition(ctx context.Context, companyID uuid.UUID, fn TransitionFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.transitionErr != nil {
		return r.transitionErr
	}
	if r.company == nil || r.company.ID != companyID {
		return ErrCompanyNotFound
	}

	snapshot := *r.company
	history, alert, err := fn(r.company)
	if err != nil {
		// Rollback: the aborted closure must leave no trace.
		*r.company = snapshot
		return err
	}
	history.CompanyID = r.company.ID
	r.histories = append(r.histories, history)
	if alert != nil {
		r.alerts = append(r.alerts, alert)
	}
	return nil
}

type recordingNotifier struct {
	statusChanges []*TransitionResult
	alerts        []*alerts.Alert
}

func (n *recordingNotifier) NotifyStatusChanged(company *Company, result *TransitionResult) {
	n.statusChanges = append(n.statusChanges, result)
}

func (n *recordingNotifier) NotifyAlert(alert *alerts.Alert) {
	n.alerts = append(n.alerts, alert)
}

func newTestCompany(repo *stubRepository, status workflows.StatusCode) *Company {
	company := &Company{
		ID:              uuid.New(),
		Name:            "Sakura Seisakusho",
		CurrentStatus:   status,
		StatusChangedAt: time.Now().Add(-24 * time.Hour),
	}
	repo.company = company
	return company
}

func TestCreateCompanyWritesNullFromHistory(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)

	company, err := service.CreateCompany(context.Background(), CreateCompanyRequest{Name: "Yamada Kogyo"})

	assert.NoError(t, err)
	assert.Equal(t, workflows.StatusUntouched, company.CurrentStatus)
	assert.Len(t, repo.histories, 1)
	assert.Nil(t, repo.histories[0].FromStatus)
	assert.Equal(t, workflows.StatusUntouched, repo.histories[0].ToStatus)
}

func TestCreateCompanyRejectsUnknownInitialStatus(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)

	_, err := service.CreateCompany(context.Background(), CreateCompanyRequest{
		Name:          "Yamada Kogyo",
		InitialStatus: "77",
	})

	var unknown *workflows.UnknownStatusError
	assert.ErrorAs(t, err, &unknown)
	assert.Empty(t, repo.histories)
}

func TestChangeStatusLegalTransition(t *testing.T) {
	repo := &stubRepository{}
	notifier := &recordingNotifier{}
	service := NewCompanyService(repo, notifier)
	company := newTestCompany(repo, workflows.StatusUntouched)
	operator := uuid.New()

	result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusAppointmentSecured,
		Reason:    "first call succeeded",
		ChangedBy: &operator,
	})

	assert.NoError(t, err)
	assert.Nil(t, rejection)
	assert.Equal(t, workflows.StatusUntouched, result.PreviousStatus)
	assert.Equal(t, workflows.StatusAppointmentSecured, result.NewStatus)
	assert.Equal(t, workflows.StatusAppointmentSecured, repo.company.CurrentStatus)
	assert.Equal(t, result.ChangedAt, repo.company.StatusChangedAt)

	// Exactly one history row, matching the committed state.
	assert.Len(t, repo.histories, 1)
	history := repo.histories[0]
	assert.Equal(t, company.ID, history.CompanyID)
	assert.Equal(t, workflows.StatusUntouched, *history.FromStatus)
	assert.Equal(t, workflows.StatusAppointmentSecured, history.ToStatus)
	assert.Equal(t, &operator, history.ChangedBy)
	assert.Equal(t, "first call succeeded", history.ChangeReason)

	// Ordinary transition: no alert.
	assert.Empty(t, repo.alerts)
	assert.Nil(t, result.Alert)
	assert.Len(t, notifier.statusChanges, 1)
	assert.Empty(t, notifier.alerts)
}

func TestChangeStatusIllegalTransitionIsNoOp(t *testing.T) {
	repo := &stubRepository{}
	notifier := &recordingNotifier{}
	service := NewCompanyService(repo, notifier)
	company := newTestCompany(repo, workflows.StatusUntouched)
	before := *repo.company

	result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusInvoicePreparation,
	})

	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NotNil(t, rejection)
	assert.Equal(t, workflows.RejectionIllegalTransition, rejection.Code)
	assert.Equal(t, workflows.StatusUntouched, rejection.CurrentStatus)
	assert.Equal(t, workflows.StatusInvoicePreparation, rejection.RequestedStatus)
	assert.ElementsMatch(t, []workflows.StatusCode{workflows.StatusAppointmentSecured, workflows.StatusDeclined}, rejection.AllowedStatuses)

	// Rejection leaves the company, history, and alerts untouched.
	assert.Equal(t, before, *repo.company)
	assert.Empty(t, repo.histories)
	assert.Empty(t, repo.alerts)
	assert.Empty(t, notifier.statusChanges)
}

func TestChangeStatusIntoHoldRaisesMediumAlert(t *testing.T) {
	repo := &stubRepository{}
	notifier := &recordingNotifier{}
	service := NewCompanyService(repo, notifier)
	company := newTestCompany(repo, workflows.StatusAwaitingJudgment)

	result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusOnHold,
		Reason:    "company asked to pause",
	})

	assert.NoError(t, err)
	assert.Nil(t, rejection)
	assert.Len(t, repo.histories, 1)
	assert.Len(t, repo.alerts, 1)

	alert := repo.alerts[0]
	assert.Equal(t, alerts.TypeStatusHold, alert.Type)
	assert.Equal(t, alerts.SeverityMedium, alert.Severity)
	assert.Equal(t, company.ID, alert.CompanyID)
	assert.Equal(t, alert, result.Alert)
	assert.Len(t, notifier.alerts, 1)
}

func TestChangeStatusRenewalCycle(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusRenewalPending)

	result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusUntouched,
		Reason:    "renewing from scratch next fiscal year",
	})

	assert.NoError(t, err)
	assert.Nil(t, rejection)
	assert.Equal(t, workflows.StatusRenewalPending, result.PreviousStatus)
	assert.Equal(t, workflows.StatusUntouched, repo.company.CurrentStatus)
}

func TestChangeStatusConcurrentCallsOneWins(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusUntouched)

	type outcome struct {
		result    *TransitionResult
		rejection *workflows.Rejection
		err       error
	}

	// Two operators race the same 01 -> 02 transition. The row lock admits
	// one at a time; the loser is re-validated against the committed status.
	outcomes := make(chan outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
				NewStatus: workflows.StatusAppointmentSecured,
				Reason:    "first call succeeded",
			})
			outcomes <- outcome{result, rejection, err}
		}()
	}
	wg.Wait()
	close(outcomes)

	var wins, losses int
	for o := range outcomes {
		assert.NoError(t, o.err)
		if o.rejection != nil {
			losses++
			assert.Equal(t, workflows.RejectionIllegalTransition, o.rejection.Code)
			assert.Equal(t, workflows.StatusAppointmentSecured, o.rejection.CurrentStatus)
			continue
		}
		wins++
		assert.Equal(t, workflows.StatusUntouched, o.result.PreviousStatus)
		assert.Equal(t, workflows.StatusAppointmentSecured, o.result.NewStatus)
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, workflows.StatusAppointmentSecured, repo.company.CurrentStatus)
	assert.Len(t, repo.histories, 1)
}

func TestUpdateCompanyDoesNotRevertConcurrentTransition(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusUntouched)

	// A transition commits between the profile update's read and its save.
	repo.afterRead = func() {
		repo.afterRead = nil
		_, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
			NewStatus: workflows.StatusAppointmentSecured,
		})
		assert.NoError(t, err)
		assert.Nil(t, rejection)
	}

	contact := "Tanaka"
	updated, err := service.UpdateCompany(context.Background(), company.ID, UpdateCompanyRequest{
		ContactName: &contact,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Tanaka", updated.ContactName)

	// The stale save must not claw the status back.
	assert.Equal(t, workflows.StatusAppointmentSecured, repo.company.CurrentStatus)
	assert.Equal(t, "Tanaka", repo.company.ContactName)
	assert.Len(t, repo.histories, 1)
	assert.Equal(t, workflows.StatusAppointmentSecured, repo.histories[0].ToStatus)
}

func TestChangeStatusUnknownCodeRejectedEvenWithForce(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusUntouched)

	_, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: "77",
		Force:     true,
	})

	assert.NoError(t, err)
	assert.NotNil(t, rejection)
	assert.Equal(t, workflows.RejectionInvalidStatusCode, rejection.Code)
	assert.Empty(t, repo.histories)
}

func TestChangeStatusForceBypassesRuleTable(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusUntouched)

	result, rejection, err := service.ChangeStatus(context.Background(), company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusInvoicePreparation,
		Reason:    "administrative correction",
		Force:     true,
	})

	assert.NoError(t, err)
	assert.Nil(t, rejection)
	assert.Equal(t, workflows.StatusInvoicePreparation, result.NewStatus)
	assert.Len(t, repo.histories, 1)
	assert.JSONEq(t, `{"force": true}`, string(repo.histories[0].Metadata))
}

func TestChangeStatusStorageFailureSurfacesError(t *testing.T) {
	repo := &stubRepository{transitionErr: errors.New("connection refused")}
	notifier := &recordingNotifier{}
	service := NewCompanyService(repo, notifier)
	newTestCompany(repo, workflows.StatusUntouched)

	result, rejection, err := service.ChangeStatus(context.Background(), repo.company.ID, ChangeStatusRequest{
		NewStatus: workflows.StatusAppointmentSecured,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Nil(t, rejection)
	assert.Empty(t, notifier.statusChanges)
}

func TestChangeStatusCompanyNotFound(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)

	_, _, err := service.ChangeStatus(context.Background(), uuid.New(), ChangeStatusRequest{
		NewStatus: workflows.StatusAppointmentSecured,
	})

	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyStatusView(t *testing.T) {
	repo := &stubRepository{}
	service := NewCompanyService(repo, nil)
	company := newTestCompany(repo, workflows.StatusUntouched)

	view, err := service.CompanyStatus(context.Background(), company.ID)

	assert.NoError(t, err)
	assert.Equal(t, workflows.StatusUntouched, view.CurrentStatus.Code)
	assert.Len(t, view.Catalog, 26)

	var allowedCodes []workflows.StatusCode
	for _, info := range view.AllowedStatuses {
		allowedCodes = append(allowedCodes, info.Code)
	}
	assert.ElementsMatch(t, []workflows.StatusCode{workflows.StatusAppointmentSecured, workflows.StatusDeclined}, allowedCodes)
}
