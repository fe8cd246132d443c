package survey

import "fmt"

// guard decides whether a capability snapshot may take a given action.
type guard func(p Permissions, inst *Instance) bool

func participant(p Permissions, _ *Instance) bool {
	return p.IsParticipant
}

func ownerOrAdmin(p Permissions, _ *Instance) bool {
	return p.IsAdmin || p.IsOwner || p.HasOwnerRole
}

// transition is a single allowed edge in the lifecycle state machine.
type transition struct {
	from   InstanceStatus
	action Action
	to     InstanceStatus
}

// StateMachine enforces survey instance status transitions. Every legal move
// is a row in an explicit table and every action carries a declared guard;
// nothing is inferred implicitly, which is what lets NextPossibleActions
// share the exact same data with Process.
type StateMachine struct {
	guards      map[Action]guard
	transitions []transition
}

// NewStateMachine creates a state machine with the full lifecycle table.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		guards: map[Action]guard{
			ActionSaving:      participant,
			ActionSubmitting:  participant,
			ActionApproving:   ownerOrAdmin,
			ActionRejecting:   ownerOrAdmin,
			ActionWithdrawing: ownerOrAdmin,
			ActionReopening:   ownerOrAdmin,
		},
		transitions: []transition{
			{StatusNotStarted, ActionSaving, StatusInProgress},
			{StatusNotStarted, ActionSubmitting, StatusCompleted},
			{StatusNotStarted, ActionWithdrawing, StatusWithdrawn},

			{StatusInProgress, ActionSaving, StatusInProgress},
			{StatusInProgress, ActionSubmitting, StatusCompleted},
			{StatusInProgress, ActionWithdrawing, StatusWithdrawn},

			{StatusCompleted, ActionApproving, StatusApproved},
			{StatusCompleted, ActionRejecting, StatusRejected},

			{StatusApproved, ActionReopening, StatusInProgress},

			{StatusRejected, ActionSaving, StatusInProgress},
			{StatusRejected, ActionSubmitting, StatusCompleted},
			{StatusRejected, ActionWithdrawing, StatusWithdrawn},
			{StatusRejected, ActionReopening, StatusInProgress},

			{StatusWithdrawn, ActionReopening, StatusInProgress},
		},
	}
}

// Process resolves the next status for an action taken from the current
// status. It is a pure function of its inputs. The action's guard is checked
// first: a snapshot lacking the required capability fails with
// ErrPermissionDenied even when the action would also be out of place here.
// Otherwise, an action with no table row for (status, action) fails with
// ErrIllegalTransition.
func (m *StateMachine) Process(current InstanceStatus, action Action, p Permissions, inst *Instance) (InstanceStatus, error) {
	g, known := m.guards[action]
	if !known {
		return "", fmt.Errorf("unknown action %s: %w", action, ErrIllegalTransition)
	}
	if !g(p, inst) {
		return "", fmt.Errorf("action %s from status %s: %w", action, current, ErrPermissionDenied)
	}
	for _, t := range m.transitions {
		if t.from == current && t.action == action {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("action %s is not valid from status %s: %w", action, current, ErrIllegalTransition)
}

// NextPossibleActions returns every action Process would accept from the
// current status under the given snapshot. Driven off the same table and
// guards, so the two can never disagree.
func (m *StateMachine) NextPossibleActions(current InstanceStatus, p Permissions, inst *Instance) []Action {
	seen := make(map[Action]bool)
	actions := make([]Action, 0, 4)
	for _, t := range m.transitions {
		if t.from != current || seen[t.action] {
			continue
		}
		if m.guards[t.action](p, inst) {
			seen[t.action] = true
			actions = append(actions, t.action)
		}
	}
	return actions
}
