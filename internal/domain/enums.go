package domain

// AuditOperation is the kind of mutation wrapped by the transaction log.
type AuditOperation string

const (
	AuditOperationCreate AuditOperation = "create"
	AuditOperationUpdate AuditOperation = "update"
	AuditOperationDelete AuditOperation = "delete"
	AuditOperationOther  AuditOperation = "other"
)

func (o AuditOperation) String() string { return string(o) }

func (o AuditOperation) IsValid() bool {
	switch o {
	case AuditOperationCreate, AuditOperationUpdate, AuditOperationDelete, AuditOperationOther:
		return true
	}
	return false
}

// AuditStatus is the lifecycle state of an audit record.
//
//	pending -> committed -> verified
//	pending -> rolled_back
type AuditStatus string

const (
	AuditStatusPending    AuditStatus = "pending"
	AuditStatusCommitted  AuditStatus = "committed"
	AuditStatusRolledBack AuditStatus = "rolled_back"
	AuditStatusVerified   AuditStatus = "verified"
)

func (s AuditStatus) String() string { return string(s) }

func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusPending, AuditStatusCommitted, AuditStatusRolledBack, AuditStatusVerified:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s AuditStatus) CanTransitionTo(next AuditStatus) bool {
	switch s {
	case AuditStatusPending:
		return next == AuditStatusCommitted || next == AuditStatusRolledBack
	case AuditStatusCommitted:
		return next == AuditStatusVerified
	}
	return false
}

// ChangelogAction is the kind of event recorded in the changelog.
type ChangelogAction string

const (
	ChangelogActionCreate ChangelogAction = "create"
	ChangelogActionUpdate ChangelogAction = "update"
	ChangelogActionDelete ChangelogAction = "delete"
)

func (a ChangelogAction) String() string { return string(a) }

func (a ChangelogAction) IsValid() bool {
	switch a {
	case ChangelogActionCreate, ChangelogActionUpdate, ChangelogActionDelete:
		return true
	}
	return false
}

// Entity types managed by the application. Stored as plain text so that
// new types do not need a schema change.
const (
	EntityTypeGame          = "game"
	EntityTypeMaterial      = "material"
	EntityTypeBox           = "box"
	EntityTypeCategory      = "category"
	EntityTypeTag           = "tag"
	EntityTypeGroup         = "group"
	EntityTypeCalendarEvent = "calendar_event"
	EntityTypeUser          = "user"
)

// MigrationStatus is the outcome of applying or reverting one migration.
type MigrationStatus string

const (
	MigrationStatusSuccess MigrationStatus = "success"
	MigrationStatusError   MigrationStatus = "error"
)

// MigrationState tells whether a registered migration has been applied.
type MigrationState string

const (
	MigrationStateExecuted MigrationState = "executed"
	MigrationStatePending  MigrationState = "pending"
)
