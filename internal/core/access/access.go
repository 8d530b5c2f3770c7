// Package access implements the operator registry: a root-owned set of
// principals allowed to perform privileged writes elsewhere in the system.
package access

import (
	"errors"
	"fmt"

	"github.com/hbkwon/voucherd/internal/core/state"
	"github.com/hbkwon/voucherd/internal/core/types"
	"github.com/hbkwon/voucherd/internal/events"
)

var (
	// ErrUnauthorized is returned when a caller lacks the privilege an
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")
)

// Controller owns the operator set. The root owner is fixed at construction
// and is implicitly privileged without being enumerated in the set.
type Controller struct {
	root types.AccountID
}

// NewController creates a controller with the given root owner.
func NewController(root types.AccountID) *Controller {
	return &Controller{root: root}
}

// Root returns the root owner.
func (c *Controller) Root() types.AccountID {
	return c.root
}

// AddOperator adds an operator. Root-only; adding an existing operator
// succeeds without a state change.
func (c *Controller) AddOperator(v state.View, caller, operator types.AccountID) (events.Event, error) {
	if caller != c.root {
		return nil, fmt.Errorf("add operator: %w: caller is not the root owner", ErrUnauthorized)
	}
	if err := state.PutMarker(v, state.OperatorKey(operator)); err != nil {
		return nil, err
	}
	return events.OperatorAdded{Operator: operator}, nil
}

// RemoveOperator removes an operator. Root-only; removing a non-operator
// succeeds without a state change.
func (c *Controller) RemoveOperator(v state.View, caller, operator types.AccountID) (events.Event, error) {
	if caller != c.root {
		return nil, fmt.Errorf("remove operator: %w: caller is not the root owner", ErrUnauthorized)
	}
	if err := v.Delete(state.OperatorKey(operator)); err != nil {
		return nil, err
	}
	return events.OperatorRemoved{Operator: operator}, nil
}

// IsOperator reports membership of the operator set. The root owner is not
// a member unless explicitly added.
func (c *Controller) IsOperator(r state.Reader, account types.AccountID) (bool, error) {
	return r.Has(state.OperatorKey(account))
}

// RequireOperator returns ErrUnauthorized unless the caller is the root
// owner or an enumerated operator.
func (c *Controller) RequireOperator(r state.Reader, caller types.AccountID) error {
	if caller == c.root {
		return nil
	}
	ok, err := c.IsOperator(r, caller)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: caller is not an operator", ErrUnauthorized)
	}
	return nil
}
