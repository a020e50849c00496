package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KVEntryModel struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (KVEntryModel) TableName() string { return "kv_entries" }

type GormKV struct{ db *gorm.DB }

func NewGormKV(db *gorm.DB) *GormKV { return &GormKV{db: db} }

// Migrate 建表（配合 cfg.DB.AutoMigrate）
func (r *GormKV) Migrate() error { return r.db.AutoMigrate(&KVEntryModel{}) }

func (r *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var e KVEntryModel
	// 用结构体条件，列名按方言自动加引号（key 在 MySQL 是保留字）
	err := r.db.WithContext(ctx).Where(&KVEntryModel{Key: key}).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return e.Value, true, nil
}

func (r *GormKV) Set(ctx context.Context, key, value string) error {
	e := KVEntryModel{Key: key, Value: value}
	// upsert：整值覆盖，最后一次写入为准
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (r *GormKV) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Where(&KVEntryModel{Key: key}).Delete(&KVEntryModel{}).Error; err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}
