package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type AuditAction string

const (
	AuditActionInsert AuditAction = "insert"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type RecordIDKind string

const (
	RecordIDNumeric  RecordIDKind = "numeric"
	RecordIDExternal RecordIDKind = "external"
)

// RecordID identifies the audited row. Surrogate keys are numeric, catalog
// identifiers (books) are strings, so the type is a tagged union rather than
// a coerced single type.
type RecordID struct {
	Kind     RecordIDKind
	Numeric  uint
	External string
}

func NumericID(id uint) RecordID {
	return RecordID{Kind: RecordIDNumeric, Numeric: id}
}

func ExternalID(id string) RecordID {
	return RecordID{Kind: RecordIDExternal, External: id}
}

func (r RecordID) String() string {
	if r.Kind == RecordIDExternal {
		return r.External
	}
	return strconv.FormatUint(uint64(r.Numeric), 10)
}

// Value stores the tag alongside the identifier so round-tripping through
// the database preserves the variant.
func (r RecordID) Value() (driver.Value, error) {
	switch r.Kind {
	case RecordIDNumeric:
		return fmt.Sprintf("n:%d", r.Numeric), nil
	case RecordIDExternal:
		return "x:" + r.External, nil
	}
	return nil, fmt.Errorf("record id has no kind")
}

func (r *RecordID) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into RecordID", src)
	}

	tag, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return fmt.Errorf("malformed record id %q", raw)
	}
	switch tag {
	case "n":
		n, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return fmt.Errorf("malformed numeric record id %q: %w", raw, err)
		}
		*r = NumericID(uint(n))
	case "x":
		*r = ExternalID(rest)
	default:
		return fmt.Errorf("unknown record id tag %q", tag)
	}
	return nil
}

func (r RecordID) MarshalJSON() ([]byte, error) {
	if r.Kind == RecordIDNumeric {
		return json.Marshal(r.Numeric)
	}
	return json.Marshal(r.External)
}

// AuditLogEntry is an append-only record of a single mutation against a
// tracked table. Entries are never updated or deleted by application logic.
type AuditLogEntry struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TargetTable string      `gorm:"column:table_name;index;size:64" json:"table_name"`
	RecordID    RecordID    `gorm:"index;type:varchar(300)" json:"record_id"`
	Action      AuditAction `gorm:"index;size:10" json:"action"`
	OldValues   *string     `gorm:"type:text" json:"old_values,omitempty"`
	NewValues   *string     `gorm:"type:text" json:"new_values,omitempty"`
	ActorID     *uint       `gorm:"index" json:"actor_id,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditLogEntry) TableName() string {
	return "audit_log"
}
