package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/finblog-client/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:191"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

// SQLite stores values in a local SQLite file through gorm.
type SQLite struct {
	client *db.Client
}

// NewSQLite migrates the key/value table and returns the backend.
func NewSQLite(ctx context.Context, client *db.Client) (*SQLite, error) {
	if err := client.DB(ctx).AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv table: %w", err)
	}
	return &SQLite{client: client}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var row entry
	err := s.client.DB(ctx).Where("storage_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	row := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.client.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.client.DB(ctx).Where("storage_key = ?", key).Delete(&entry{}).Error
}

func (s *SQLite) Close() error {
	return s.client.Close()
}
