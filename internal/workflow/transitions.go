package workflow

import "github.com/jvolk/stockroom/internal/model"

// transitions maps every legal edge of the request lifecycle to the role
// that may perform it:
//
//	Pending Department Approval → Department Approved / Department Rejected (head)
//	Department Approved         → Admin Approved / Admin Rejected          (admin)
//	Admin Approved              → Packing                                  (store)
//	Packing                     → Dispatched                               (store)
//	Dispatched                  → Delivered                                (store)
//
// Department Rejected, Admin Rejected, and Delivered are terminal. The legacy
// system applied any requested status unconditionally and relied on each
// role's screen only showing valid buttons; here the table is enforced before
// any write.
var transitions = map[model.Status]map[model.Status]string{
	model.StatusPendingDeptApproval: {
		model.StatusDeptApproved: model.RoleHead,
		model.StatusDeptRejected: model.RoleHead,
	},
	model.StatusDeptApproved: {
		model.StatusAdminApproved: model.RoleAdmin,
		model.StatusAdminRejected: model.RoleAdmin,
	},
	model.StatusAdminApproved: {
		model.StatusPacking: model.RoleStore,
	},
	model.StatusPacking: {
		model.StatusDispatched: model.RoleStore,
	},
	model.StatusDispatched: {
		model.StatusDelivered: model.RoleStore,
	},
}

// CanTransition reports whether role may move a request from current to next.
// It is a pure function over the transition table; department ownership and
// delivery preconditions are checked by the engine, which knows the request.
func CanTransition(current, next model.Status, role string) error {
	if !next.Valid() {
		return &model.IllegalTransitionError{From: current, To: next, Role: role, Reason: "unknown status"}
	}
	if current.Terminal() {
		return &model.IllegalTransitionError{From: current, To: next, Role: role, Reason: "status is terminal"}
	}

	requiredRole, ok := transitions[current][next]
	if !ok {
		return &model.IllegalTransitionError{From: current, To: next, Role: role}
	}
	if role != requiredRole {
		return &model.IllegalTransitionError{From: current, To: next, Role: role, Reason: "not permitted for this role"}
	}
	return nil
}
