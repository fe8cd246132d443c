package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/person"
)

// Service is the workflow orchestrator. It sequences permission evaluation,
// the state machine, versioning and reconciliation per request, and is the
// only component that talks to the storage collaborators. The engine itself
// is stateless; every decision is a pure computation over the loaded row and
// the capability snapshot.
type Service struct {
	repo       Repository
	responses  ResponseRepository
	persons    PersonDirectory
	questions  QuestionCatalog
	audit      AuditLog
	evaluator  *PermissionEvaluator
	machine    *StateMachine
	versioning *VersioningCoordinator
	reconciler *ResponseReconciler
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	responses ResponseRepository,
	persons PersonDirectory,
	roles RoleChecker,
	questions QuestionCatalog,
	audit AuditLog,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		responses:  responses,
		persons:    persons,
		questions:  questions,
		audit:      audit,
		evaluator:  NewPermissionEvaluator(repo, persons, roles),
		machine:    NewStateMachine(),
		versioning: NewVersioningCoordinator(repo, logger),
		reconciler: NewResponseReconciler(questions, responses, logger),
		logger:     logger,
	}
}

// =====================================================
// Reads
// =====================================================

func (s *Service) GetByID(ctx context.Context, instanceID uuid.UUID) (*Instance, error) {
	return s.getInstance(ctx, instanceID)
}

func (s *Service) FindForRecipient(ctx context.Context, userName string) ([]Instance, error) {
	actor, err := s.resolvePerson(ctx, userName)
	if err != nil {
		return nil, err
	}
	return s.repo.FindForRecipient(ctx, actor.ID)
}

func (s *Service) FindForRun(ctx context.Context, runID uuid.UUID) ([]Instance, error) {
	return s.repo.FindForRun(ctx, runID)
}

func (s *Service) FindResponses(ctx context.Context, instanceID uuid.UUID) ([]QuestionResponse, error) {
	return s.responses.FindForInstance(ctx, instanceID)
}

func (s *Service) FindRecipients(ctx context.Context, instanceID uuid.UUID) ([]Recipient, error) {
	return s.repo.ListRecipients(ctx, instanceID)
}

func (s *Service) FindOwners(ctx context.Context, instanceID uuid.UUID) ([]Owner, error) {
	return s.repo.ListOwners(ctx, instanceID)
}

func (s *Service) FindPreviousVersions(ctx context.Context, instanceID uuid.UUID) ([]Instance, error) {
	return s.repo.FindPreviousVersions(ctx, instanceID)
}

// GetPermissions computes a fresh capability snapshot for the user over the
// instance. Never cached across requests.
func (s *Service) GetPermissions(ctx context.Context, userName string, instanceID uuid.UUID) (Permissions, error) {
	inst, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return Permissions{}, err
	}
	perms, _, err := s.evaluator.Evaluate(ctx, userName, inst)
	return perms, err
}

// FindPossibleActions returns every action the user could currently take on
// the instance. A frozen prior version has no possible actions.
func (s *Service) FindPossibleActions(ctx context.Context, userName string, instanceID uuid.UUID) ([]Action, error) {
	inst, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.IsLatest() {
		return []Action{}, nil
	}
	perms, _, err := s.evaluator.Evaluate(ctx, userName, inst)
	if err != nil {
		return nil, err
	}
	return s.machine.NextPossibleActions(inst.Status, perms, inst), nil
}

// =====================================================
// Lifecycle
// =====================================================

// UpdateStatus drives one lifecycle transition. Sequencing: immutability
// precondition, capability snapshot, state machine, action-specific
// persistence, then the COMPLETED side effects and the audit entry. The
// latter two run only when this request was the one that applied the change.
func (s *Service) UpdateStatus(ctx context.Context, userName string, instanceID uuid.UUID, cmd StatusChangeCommand) (*StatusChangeResult, error) {
	inst, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.IsLatest() {
		return nil, fmt.Errorf("instance %s: %w", instanceID, ErrImmutableVersion)
	}

	perms, _, err := s.evaluator.Evaluate(ctx, userName, inst)
	if err != nil {
		return nil, err
	}

	newStatus, err := s.machine.Process(inst.Status, cmd.Action, perms, inst)
	if err != nil {
		return nil, err
	}

	var rows int64
	switch cmd.Action {
	case ActionApproving:
		rows, err = s.repo.MarkApproved(ctx, instanceID, userName)
	case ActionReopening:
		// Explicit composite: versioning effect first, then the generic
		// status effect on the live instance.
		if _, err = s.versioning.FreezeCurrentVersion(ctx, inst); err != nil {
			return nil, err
		}
		rows, err = s.repo.UpdateStatus(ctx, instanceID, newStatus)
	default:
		rows, err = s.repo.UpdateStatus(ctx, instanceID, newStatus)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to persist status %s on instance %s: %w", newStatus, instanceID, err)
	}

	applied := rows > 0
	if applied {
		if newStatus == StatusCompleted {
			if _, err := s.repo.MarkSubmitted(ctx, instanceID, userName); err != nil {
				return nil, fmt.Errorf("failed to mark instance %s submitted: %w", instanceID, err)
			}
			if _, err := s.reconciler.Reconcile(ctx, instanceID); err != nil {
				return nil, err
			}
		}

		message := fmt.Sprintf("Survey Instance: status changed to %s with action %s", newStatus, cmd.Action)
		if cmd.Reason != nil && *cmd.Reason != "" {
			message += fmt.Sprintf(", [Reason]: %s", *cmd.Reason)
		}
		s.audit.Append(ctx, changelog.Entry{
			Operation:  changelog.OperationUpdate,
			UserID:     userName,
			ParentKind: changelog.KindSurveyInstance,
			ParentID:   instanceID,
			Message:    message,
		})
	} else {
		// Another writer already applied this transition; converge silently.
		s.logger.Debug("Status change was a no-op",
			zap.String("instance_id", instanceID.String()),
			zap.String("action", string(cmd.Action)))
	}

	return &StatusChangeResult{NewStatus: newStatus, Applied: applied}, nil
}

// SaveResponse stores one answer. It is not a transition: the status is left
// untouched and the guard is recipient membership plus an editable status.
func (s *Service) SaveResponse(ctx context.Context, userName string, instanceID uuid.UUID, req SaveResponseRequest) (*QuestionResponse, error) {
	inst, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.IsLatest() {
		return nil, fmt.Errorf("instance %s: %w", instanceID, ErrImmutableVersion)
	}

	actor, err := s.checkIsRecipient(ctx, userName, instanceID)
	if err != nil {
		return nil, err
	}

	switch inst.Status {
	case StatusNotStarted, StatusInProgress, StatusRejected:
		// editable
	default:
		return nil, fmt.Errorf("responses cannot be saved while status is %s: %w", inst.Status, ErrIllegalTransition)
	}

	response := &QuestionResponse{
		ID:               uuid.New(),
		SurveyInstanceID: instanceID,
		QuestionID:       req.QuestionID,
		PersonID:         actor.ID,
		StringResponse:   req.StringResponse,
		NumberResponse:   req.NumberResponse,
		BooleanResponse:  req.BooleanResponse,
		Comment:          req.Comment,
		LastUpdatedAt:    time.Now(),
	}
	if err := s.responses.Save(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response for instance %s: %w", instanceID, err)
	}
	return response, nil
}

// UpdateDueDate is a meta edit: owner-or-admin gated, audited.
func (s *Service) UpdateDueDate(ctx context.Context, userName string, instanceID uuid.UUID, newDueDate time.Time) (int64, error) {
	if _, err := s.checkIsOwnerOrAdmin(ctx, userName, instanceID); err != nil {
		return 0, err
	}

	rows, err := s.repo.UpdateDueDate(ctx, instanceID, newDueDate)
	if err != nil {
		return 0, fmt.Errorf("failed to update due date on instance %s: %w", instanceID, err)
	}

	s.audit.Append(ctx, changelog.Entry{
		Operation:  changelog.OperationUpdate,
		UserID:     userName,
		ParentKind: changelog.KindSurveyInstance,
		ParentID:   instanceID,
		Message:    fmt.Sprintf("Survey Instance: due date changed to %s", newDueDate.Format("2006-01-02")),
	})

	return rows, nil
}

// =====================================================
// Recipient administration
// =====================================================

func (s *Service) AddRecipient(ctx context.Context, userName string, cmd RecipientCreateCommand) (*Recipient, error) {
	if _, err := s.checkIsOwnerOrAdmin(ctx, userName, cmd.SurveyInstanceID); err != nil {
		return nil, err
	}

	recipient := &Recipient{
		ID:               uuid.New(),
		SurveyInstanceID: cmd.SurveyInstanceID,
		PersonID:         cmd.PersonID,
	}
	if err := s.repo.CreateRecipient(ctx, recipient); err != nil {
		return nil, fmt.Errorf("failed to add recipient to instance %s: %w", cmd.SurveyInstanceID, err)
	}

	s.logRecipientChange(ctx, userName, cmd.SurveyInstanceID, cmd.PersonID,
		changelog.OperationAdd, "Survey Instance: Added %s as a recipient")

	return recipient, nil
}

func (s *Service) UpdateRecipient(ctx context.Context, userName string, cmd RecipientUpdateCommand) (bool, error) {
	if _, err := s.checkIsOwnerOrAdmin(ctx, userName, cmd.SurveyInstanceID); err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteRecipient(ctx, cmd.InstanceRecipientID)
	if err != nil {
		return false, err
	}
	recipient := &Recipient{
		ID:               uuid.New(),
		SurveyInstanceID: cmd.SurveyInstanceID,
		PersonID:         cmd.PersonID,
	}
	if err := s.repo.CreateRecipient(ctx, recipient); err != nil {
		return false, fmt.Errorf("failed to replace recipient on instance %s: %w", cmd.SurveyInstanceID, err)
	}

	s.logRecipientChange(ctx, userName, cmd.SurveyInstanceID, cmd.PersonID,
		changelog.OperationUpdate, "Survey Instance: Set %s as a recipient")

	return deleted, nil
}

func (s *Service) DeleteRecipient(ctx context.Context, userName string, instanceID, recipientID uuid.UUID) (bool, error) {
	if _, err := s.checkIsOwnerOrAdmin(ctx, userName, instanceID); err != nil {
		return false, err
	}

	personID, err := s.repo.GetRecipientPersonID(ctx, recipientID)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteRecipient(ctx, recipientID)
	if err != nil {
		return false, err
	}
	if deleted && personID != uuid.Nil {
		s.logRecipientChange(ctx, userName, instanceID, personID,
			changelog.OperationRemove, "Survey Instance: Removed %s as a recipient")
	}

	return deleted, nil
}

// ReportQuestionProblem files an audit entry against a question still in the
// instance's applicable set; reports false when the question is not there.
func (s *Service) ReportQuestionProblem(ctx context.Context, instanceID, questionID uuid.UUID, message, userName string) (bool, error) {
	available, err := s.questions.FindForInstance(ctx, instanceID)
	if err != nil {
		return false, err
	}

	for _, q := range available {
		if q.ID == questionID {
			childKind := changelog.KindSurveyQuestion
			s.audit.Append(ctx, changelog.Entry{
				Operation:  changelog.OperationUpdate,
				UserID:     userName,
				ParentKind: changelog.KindSurveyInstance,
				ParentID:   instanceID,
				ChildKind:  &childKind,
				Message:    fmt.Sprintf("Question [%s]: %s", q.QuestionText, message),
			})
			return true, nil
		}
	}
	return false, nil
}

// =====================================================
// Internal helpers
// =====================================================

func (s *Service) getInstance(ctx context.Context, instanceID uuid.UUID) (*Instance, error) {
	inst, err := s.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instance %s: %w", instanceID, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("survey instance %s: %w", instanceID, ErrNotFound)
	}
	return inst, nil
}

func (s *Service) resolvePerson(ctx context.Context, userName string) (*person.Person, error) {
	actor, err := s.persons.GetActiveByEmail(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve person %s: %w", userName, err)
	}
	if actor == nil {
		return nil, fmt.Errorf("person %s: %w", userName, ErrNotFound)
	}
	return actor, nil
}

func (s *Service) checkIsRecipient(ctx context.Context, userName string, instanceID uuid.UUID) (*person.Person, error) {
	actor, err := s.resolvePerson(ctx, userName)
	if err != nil {
		return nil, err
	}
	isRecipient, err := s.repo.IsRecipient(ctx, actor.ID, instanceID)
	if err != nil {
		return nil, err
	}
	if !isRecipient {
		return nil, fmt.Errorf("%s is not a recipient of instance %s: %w", userName, instanceID, ErrPermissionDenied)
	}
	return actor, nil
}

func (s *Service) checkIsOwnerOrAdmin(ctx context.Context, userName string, instanceID uuid.UUID) (*person.Person, error) {
	inst, err := s.getInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	perms, actor, err := s.evaluator.Evaluate(ctx, userName, inst)
	if err != nil {
		return nil, err
	}
	if !(perms.IsAdmin || perms.IsOwner || perms.HasOwnerRole) {
		return nil, fmt.Errorf("%s may not administer instance %s: %w", userName, instanceID, ErrPermissionDenied)
	}
	return actor, nil
}

func (s *Service) logRecipientChange(ctx context.Context, userName string, instanceID, personID uuid.UUID, op changelog.Operation, format string) {
	recipient, err := s.persons.GetByID(ctx, personID)
	if err != nil || recipient == nil {
		s.logger.Warn("Could not resolve recipient for audit entry",
			zap.String("person_id", personID.String()),
			zap.Error(err))
		return
	}

	childKind := changelog.KindPerson
	s.audit.Append(ctx, changelog.Entry{
		Operation:  op,
		UserID:     userName,
		ParentKind: changelog.KindSurveyInstance,
		ParentID:   instanceID,
		ChildKind:  &childKind,
		Message:    fmt.Sprintf(format, recipient.DisplayName),
	})
}
