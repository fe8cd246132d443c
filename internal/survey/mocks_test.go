package survey

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/person"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/question"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetInstance(ctx context.Context, id uuid.UUID) (*Instance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Instance), args.Error(1)
}

func (m *MockRepository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Run), args.Error(1)
}

func (m *MockRepository) FindForRecipient(ctx context.Context, personID uuid.UUID) ([]Instance, error) {
	args := m.Called(ctx, personID)
	return args.Get(0).([]Instance), args.Error(1)
}

func (m *MockRepository) FindForRun(ctx context.Context, runID uuid.UUID) ([]Instance, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).([]Instance), args.Error(1)
}

func (m *MockRepository) FindPreviousVersions(ctx context.Context, instanceID uuid.UUID) ([]Instance, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).([]Instance), args.Error(1)
}

func (m *MockRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]Instance, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]Instance), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status InstanceStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MarkApproved(ctx context.Context, id uuid.UUID, actor string) (int64, error) {
	args := m.Called(ctx, id, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ClearApproved(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, actor string) (int64, error) {
	args := m.Called(ctx, id, actor)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) UpdateDueDate(ctx context.Context, id uuid.UUID, dueDate time.Time) (int64, error) {
	args := m.Called(ctx, id, dueDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreatePreviousVersion(ctx context.Context, inst *Instance) (uuid.UUID, error) {
	args := m.Called(ctx, inst)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) IsRecipient(ctx context.Context, personID, instanceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, personID, instanceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) IsOwner(ctx context.Context, personID, instanceID uuid.UUID) (bool, error) {
	args := m.Called(ctx, personID, instanceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListRecipients(ctx context.Context, instanceID uuid.UUID) ([]Recipient, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).([]Recipient), args.Error(1)
}

func (m *MockRepository) ListOwners(ctx context.Context, instanceID uuid.UUID) ([]Owner, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).([]Owner), args.Error(1)
}

func (m *MockRepository) CreateRecipient(ctx context.Context, recipient *Recipient) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockRepository) DeleteRecipient(ctx context.Context, recipientID uuid.UUID) (bool, error) {
	args := m.Called(ctx, recipientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetRecipientPersonID(ctx context.Context, recipientID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]QuestionResponse, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).([]QuestionResponse), args.Error(1)
}

func (m *MockResponseRepository) Save(ctx context.Context, response *QuestionResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockPersonDirectory is a mock implementation of PersonDirectory
type MockPersonDirectory struct {
	mock.Mock
}

func (m *MockPersonDirectory) GetActiveByEmail(ctx context.Context, email string) (*person.Person, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*person.Person), args.Error(1)
}

func (m *MockPersonDirectory) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*person.Person), args.Error(1)
}

// MockRoleChecker is a mock implementation of RoleChecker
type MockRoleChecker struct {
	mock.Mock
}

func (m *MockRoleChecker) HasRole(ctx context.Context, userName string, roleName string) (bool, error) {
	args := m.Called(ctx, userName, roleName)
	return args.Bool(0), args.Error(1)
}

// MockQuestionCatalog is a mock implementation of QuestionCatalog
type MockQuestionCatalog struct {
	mock.Mock
}

func (m *MockQuestionCatalog) FindForInstance(ctx context.Context, instanceID uuid.UUID) ([]question.Question, error) {
	args := m.Called(ctx, instanceID)
	return args.Get(0).([]question.Question), args.Error(1)
}

// MockAuditLog records appended entries for inspection
type MockAuditLog struct {
	Entries []changelog.Entry
}

func (m *MockAuditLog) Append(_ context.Context, entry changelog.Entry) {
	m.Entries = append(m.Entries, entry)
}
