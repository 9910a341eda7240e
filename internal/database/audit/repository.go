// Package audit provides read access to the append-only audit log and the
// transactional append used by mutation wrappers.
package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/literattus/literattus/internal/database"
	"github.com/literattus/literattus/internal/entities"
)

// Append writes an audit entry inside the caller's transaction. A failed
// append surfaces as ErrAuditWrite so the caller rolls back the paired
// data mutation with it.
func Append(tx *gorm.DB, entry *entities.AuditLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("%w: %v", database.ErrAuditWrite, err)
	}
	return nil
}

// Filter narrows audit-log queries. Zero values mean "no restriction".
type Filter struct {
	TableName string
	RecordID  *entities.RecordID
	Action    entities.AuditAction
	Since     time.Time
	Until     time.Time
	Before    time.Time // strict upper bound, matches the PruneBefore predicate
	Ascending bool
	Limit     int
	Offset    int
}

// Repository handles audit-log reads. The log is never updated or deleted
// through this repository.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves audit entries matching the filter along with the total
// match count, ordered by creation time.
func (r *Repository) List(f Filter) ([]entities.AuditLogEntry, int64, error) {
	query := r.db.Model(&entities.AuditLogEntry{})

	if f.TableName != "" {
		query = query.Where("table_name = ?", f.TableName)
	}
	if f.RecordID != nil {
		query = query.Where("record_id = ?", *f.RecordID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if !f.Since.IsZero() {
		query = query.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		query = query.Where("created_at <= ?", f.Until)
	}
	if !f.Before.IsZero() {
		query = query.Where("created_at < ?", f.Before)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if f.Ascending {
		order = "created_at ASC, id ASC"
	}
	query = query.Order(order)

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var logEntries []entities.AuditLogEntry
	err := query.Find(&logEntries).Error
	return logEntries, total, err
}

// History returns the full mutation history of a single record in ascending
// commit order, reproducing its exact sequence of state transitions.
func (r *Repository) History(tableName string, recordID entities.RecordID) ([]entities.AuditLogEntry, error) {
	logEntries, _, err := r.List(Filter{
		TableName: tableName,
		RecordID:  &recordID,
		Ascending: true,
	})
	return logEntries, err
}

// GetByID retrieves a single audit entry.
func (r *Repository) GetByID(id uint) (*entities.AuditLogEntry, error) {
	var entry entities.AuditLogEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &entry, nil
}

// PruneBefore removes entries created before the cutoff and returns the
// number deleted. Intended for the background retention task only; the
// caller fixes the cutoff so an archive pass over the same entries sees
// exactly the set that gets deleted.
func (r *Repository) PruneBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditLogEntry{})
	if res.Error != nil {
		return 0, database.TranslateError(res.Error)
	}
	return res.RowsAffected, nil
}
