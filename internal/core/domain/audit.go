package domain

import "time"

// ChangeAction names what happened to a client's allocation set.
type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
)

// AllocationChange is an audit record of a persisted client submission.
type AllocationChange struct {
	ClientID string
	Action   ChangeAction
	Name     string
	Status   Status
	AssetIDs []string
	Actor    string
	At       time.Time
}
