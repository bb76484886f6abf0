package workflow

import (
	"errors"
	"testing"

	"github.com/jvolk/stockroom/internal/model"
)

func TestCanTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    model.Status
		to      model.Status
		role    string
		allowed bool
	}{
		{"head approves pending", model.StatusPendingDeptApproval, model.StatusDeptApproved, model.RoleHead, true},
		{"head rejects pending", model.StatusPendingDeptApproval, model.StatusDeptRejected, model.RoleHead, true},
		{"admin approves dept-approved", model.StatusDeptApproved, model.StatusAdminApproved, model.RoleAdmin, true},
		{"admin rejects dept-approved", model.StatusDeptApproved, model.StatusAdminRejected, model.RoleAdmin, true},
		{"store packs admin-approved", model.StatusAdminApproved, model.StatusPacking, model.RoleStore, true},
		{"store dispatches packing", model.StatusPacking, model.StatusDispatched, model.RoleStore, true},
		{"store delivers dispatched", model.StatusDispatched, model.StatusDelivered, model.RoleStore, true},

		{"admin cannot do first-stage approval", model.StatusPendingDeptApproval, model.StatusDeptApproved, model.RoleAdmin, false},
		{"head cannot do second-stage approval", model.StatusDeptApproved, model.StatusAdminApproved, model.RoleHead, false},
		{"store cannot approve", model.StatusDeptApproved, model.StatusAdminApproved, model.RoleStore, false},
		{"employee cannot transition at all", model.StatusPendingDeptApproval, model.StatusDeptApproved, model.RoleEmployee, false},
		{"no skipping to admin approval", model.StatusPendingDeptApproval, model.StatusAdminApproved, model.RoleAdmin, false},
		{"no skipping to delivered", model.StatusPacking, model.StatusDelivered, model.RoleStore, false},
		{"no backwards move", model.StatusPacking, model.StatusAdminApproved, model.RoleStore, false},
		{"delivered is terminal", model.StatusDelivered, model.StatusPacking, model.RoleStore, false},
		{"dept rejection is terminal", model.StatusDeptRejected, model.StatusDeptApproved, model.RoleHead, false},
		{"admin rejection is terminal", model.StatusAdminRejected, model.StatusAdminApproved, model.RoleAdmin, false},
		{"unknown target status", model.StatusPendingDeptApproval, "Shipped", model.RoleHead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.role)
			if tt.allowed && err != nil {
				t.Errorf("expected transition to be allowed, got %v", err)
			}
			if !tt.allowed {
				var transitionErr *model.IllegalTransitionError
				if !errors.As(err, &transitionErr) {
					t.Errorf("expected IllegalTransitionError, got %v", err)
				}
			}
		})
	}
}
