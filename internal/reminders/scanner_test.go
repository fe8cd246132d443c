package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/survey"
)

type mockInstanceSource struct {
	mock.Mock
}

func (m *mockInstanceSource) FindOverdue(ctx context.Context, asOf time.Time) ([]survey.Instance, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]survey.Instance), args.Error(1)
}

type recordingAudit struct {
	entries []changelog.Entry
}

func (r *recordingAudit) Append(_ context.Context, entry changelog.Entry) {
	r.entries = append(r.entries, entry)
}

func overdueInstance(due time.Time) survey.Instance {
	return survey.Instance{
		ID:          uuid.New(),
		SurveyRunID: uuid.New(),
		Status:      survey.StatusInProgress,
		DueDate:     &due,
	}
}

func TestScanOnceFlagsOverdueInstances(t *testing.T) {
	source := new(mockInstanceSource)
	audit := &recordingAudit{}
	scanner := NewScanner(source, audit, zap.NewNop())

	late := overdueInstance(time.Now().AddDate(0, 0, -3))
	source.On("FindOverdue", mock.Anything, mock.Anything).Return([]survey.Instance{late}, nil)

	err := scanner.ScanOnce(context.Background())

	assert.NoError(t, err)
	assert.Len(t, audit.entries, 1)
	assert.Equal(t, late.ID, audit.entries[0].ParentID)
	assert.Contains(t, audit.entries[0].Message, "overdue")
}

// An instance flagged on one scan must not be flagged again on the next.
func TestScanOnceFlagsEachInstanceOnce(t *testing.T) {
	source := new(mockInstanceSource)
	audit := &recordingAudit{}
	scanner := NewScanner(source, audit, zap.NewNop())

	late := overdueInstance(time.Now().AddDate(0, 0, -1))
	source.On("FindOverdue", mock.Anything, mock.Anything).Return([]survey.Instance{late}, nil)

	assert.NoError(t, scanner.ScanOnce(context.Background()))
	assert.NoError(t, scanner.ScanOnce(context.Background()))

	assert.Len(t, audit.entries, 1)
}

// Stop must not hold the scanner lock while draining the scheduler: a scan
// that fired just before Stop still needs the lock to record its timestamp,
// and shutdown would hang forever waiting on it.
func TestStartStopCyclesWithInFlightScans(t *testing.T) {
	source := new(mockInstanceSource)
	source.On("FindOverdue", mock.Anything, mock.Anything).Return([]survey.Instance{}, nil)
	scanner := NewScanner(source, &recordingAudit{}, zap.NewNop())

	for i := 0; i < 50; i++ {
		assert.NoError(t, scanner.Start("@every 1ms"))

		stopped := make(chan struct{})
		go func() {
			scanner.Stop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Fatalf("Stop hung on cycle %d with a scan in flight", i)
		}
	}
}

func TestScanOnceNoOverdueInstances(t *testing.T) {
	source := new(mockInstanceSource)
	audit := &recordingAudit{}
	scanner := NewScanner(source, audit, zap.NewNop())

	source.On("FindOverdue", mock.Anything, mock.Anything).Return([]survey.Instance{}, nil)

	assert.NoError(t, scanner.ScanOnce(context.Background()))
	assert.Empty(t, audit.entries)
}
