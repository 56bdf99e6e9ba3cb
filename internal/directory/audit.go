package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Audit actions.
const (
	ActionUpdate = "update"
	ActionAppend = "append"
)

// AuditEntry is one recorded save. The sheet itself keeps no history, so
// this local trail is the only record of who changed which row when.
type AuditEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	SessionID string    `json:"session_id"`
	RowIndex  int       `json:"row_index"`
	Action    string    `json:"action"`
	Columns   string    `json:"columns"`
}

// NewAuditEntry builds an entry for a completed save.
func NewAuditEntry(sessionID string, rowIndex int, action string, columns []string) AuditEntry {
	return AuditEntry{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		SessionID: sessionID,
		RowIndex:  rowIndex,
		Action:    action,
		Columns:   strings.Join(columns, ","),
	}
}

// AuditLog persists audit entries in a local SQLite file.
type AuditLog struct {
	db *gorm.DB
}

// OpenAuditLog opens (and migrates) the audit database at path.
func OpenAuditLog(path string) (*AuditLog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	if err := db.AutoMigrate(&AuditEntry{}); err != nil {
		return nil, fmt.Errorf("migrate audit log: %w", err)
	}
	return &AuditLog{db: db}, nil
}

// Record appends an entry to the trail.
func (a *AuditLog) Record(ctx context.Context, e AuditEntry) error {
	if err := a.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := a.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("read audit entries: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (a *AuditLog) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
