package sessions

import "context"

type ActorKind string

const (
	KindPatient ActorKind = "patient"
	KindStaff   ActorKind = "staff"
)

// Actor identifies who a session belongs to. Exactly one of the two scopes
// is populated; Kind is the discriminant.
type Actor struct {
	Kind ActorKind `json:"kind"`

	// Patient scope.
	PatientID int64 `json:"patient_id,omitempty"`

	// Staff scope.
	StaffID  int64  `json:"staff_id,omitempty"`
	Role     string `json:"role,omitempty"`
	BranchID int64  `json:"branch_id,omitempty"`
}

func PatientActor(patientID int64) Actor {
	return Actor{Kind: KindPatient, PatientID: patientID}
}

func StaffActor(staffID int64, role string, branchID int64) Actor {
	return Actor{Kind: KindStaff, StaffID: staffID, Role: role, BranchID: branchID}
}

func (a Actor) IsPatient() bool { return a.Kind == KindPatient }
func (a Actor) IsStaff() bool   { return a.Kind == KindStaff }

type ctxKey int

const ctxKeyActor ctxKey = iota

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKeyActor).(Actor)
	return a, ok
}
