// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pricing

import (
	"fmt"

	"github.com/pkg/errors"
)

// ViolationKind classifies a broken contract.
type ViolationKind int

const (
	// RangeViolation position outside the range required by the operation.
	RangeViolation ViolationKind = iota + 1
	// DuplicateIndex index inserted while already present in the pool.
	DuplicateIndex
	// PhaseOrder operation called in the wrong phase.
	PhaseOrder
	// Degenerate pool size or boundary outside its admissible range.
	Degenerate
	// Misconfigured pool constructed with inconsistent options.
	Misconfigured
)

func (k ViolationKind) String() string {
	switch k {
	case RangeViolation:
		return "range violation"
	case DuplicateIndex:
		return "duplicate index"
	case PhaseOrder:
		return "phase order"
	case Degenerate:
		return "degenerate size"
	case Misconfigured:
		return "misconfigured"
	}
	return fmt.Sprintf("ViolationKind(%d)", int(k))
}

// ContractViolation reports a misuse of the Pool or a Strategy.
// It is raised with panic and signals a bug in the caller, it is never
// returned as an ordinary error.
type ContractViolation struct {
	Op     string
	Kind   ViolationKind
	Detail string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("pricing: %s: %s: %s", v.Op, v.Kind, v.Detail)
}

// violate aborts the current computation with a ContractViolation.
func violate(op string, kind ViolationKind, format string, args ...any) {
	panic(&ContractViolation{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// AsContractViolation extracts the ContractViolation from a recovered value
// or a (possibly wrapped) error.
func AsContractViolation(r any) (*ContractViolation, bool) {
	err, ok := r.(error)
	if !ok {
		return nil, false
	}
	var cv *ContractViolation
	if errors.As(err, &cv) {
		return cv, true
	}
	return nil, false
}
