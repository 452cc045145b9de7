package syncstate

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Checkpoint stores the last delta cursor observed for a dataset kind.
type Checkpoint struct {
	// Dataset is the dataset kind the cursor belongs to (users, groups, ...).
	Dataset string `gorm:"primaryKey;size:128"`
	// Cursor is the opaque delta token to resume from.
	Cursor string `gorm:"type:text"`
	// UpdatedAt is when the cursor was last advanced.
	UpdatedAt time.Time
}

// TableName sets the checkpoint table name.
func (Checkpoint) TableName() string { return "sync_checkpoints" }

// Store persists delta cursors between sync passes.
type Store struct {
	db *gorm.DB
}

// NewStore creates a checkpoint store on top of an established connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the checkpoint table when it does not exist yet.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Checkpoint{})
}

// Save upserts the cursor for a dataset.
func (s *Store) Save(ctx context.Context, dataset, cursor string) error {
	cp := Checkpoint{Dataset: dataset, Cursor: cursor, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dataset"}},
		DoUpdates: clause.AssignmentColumns([]string{"cursor", "updated_at"}),
	}).Create(&cp).Error
}

// Get returns the stored cursor for a dataset, or the empty string when no
// checkpoint exists yet.
func (s *Store) Get(ctx context.Context, dataset string) (string, error) {
	var cp Checkpoint
	err := s.db.WithContext(ctx).First(&cp, "dataset = ?", dataset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cp.Cursor, nil
}
