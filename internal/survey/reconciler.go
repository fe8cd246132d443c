package survey

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseReconciler prunes stored responses whose question has been retired
// from the instance's applicable question set. The catalog can drift between
// issue and completion; completion is the checkpoint where the stored answer
// set is brought back in line so downstream consumers never see orphans.
type ResponseReconciler struct {
	questions QuestionCatalog
	responses ResponseRepository
	logger    *zap.Logger
}

func NewResponseReconciler(questions QuestionCatalog, responses ResponseRepository, logger *zap.Logger) *ResponseReconciler {
	return &ResponseReconciler{
		questions: questions,
		responses: responses,
		logger:    logger,
	}
}

// Reconcile deletes exactly the orphaned responses and reports how many rows
// went. Zero deletions is the common case and not an error; running twice
// deletes nothing the second time.
func (r *ResponseReconciler) Reconcile(ctx context.Context, instanceID uuid.UUID) (int64, error) {
	available, err := r.questions.FindForInstance(ctx, instanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load questions for instance %s: %w", instanceID, err)
	}

	stored, err := r.responses.FindForInstance(ctx, instanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load responses for instance %s: %w", instanceID, err)
	}

	availableIDs := make(map[uuid.UUID]bool, len(available))
	for _, q := range available {
		availableIDs[q.ID] = true
	}

	var orphaned []uuid.UUID
	for _, resp := range stored {
		if !availableIDs[resp.QuestionID] {
			orphaned = append(orphaned, resp.ID)
		}
	}

	if len(orphaned) == 0 {
		return 0, nil
	}

	deleted, err := r.responses.DeleteByIDs(ctx, orphaned)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned responses for instance %s: %w", instanceID, err)
	}

	r.logger.Info("Reconciled survey responses",
		zap.String("instance_id", instanceID.String()),
		zap.Int64("deleted", deleted))

	return deleted, nil
}
