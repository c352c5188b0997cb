// Package adapters はwatchlistフィーチャーの設定値ストア実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockwatch/internal/feature/watchlist/usecase"
)

const (
	keyStocksInitialized = "stocks_initialized"
	keyDisplayMode       = "display_mode"
)

// PreferenceModel は preferences テーブル（キー・値）の1行です。
type PreferenceModel struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:255;not null"`
}

func (PreferenceModel) TableName() string {
	return "preferences"
}

// WatchedSymbolModel は watched_symbols テーブルの1行（監視中の1銘柄）です。
type WatchedSymbolModel struct {
	Symbol string `gorm:"primaryKey;size:32"`
}

func (WatchedSymbolModel) TableName() string {
	return "watched_symbols"
}

type preferenceGorm struct {
	db *gorm.DB
}

var _ usecase.PreferenceRepository = (*preferenceGorm)(nil)

// NewPreferenceGorm は指定されたDB接続でpreferenceGormを生成します。
func NewPreferenceGorm(db *gorm.DB) *preferenceGorm {
	return &preferenceGorm{db: db}
}

func (r *preferenceGorm) LoadSymbols(ctx context.Context) ([]string, bool, error) {
	initialized, err := r.get(ctx, r.db, keyStocksInitialized)
	if err != nil {
		return nil, false, err
	}

	var rows []WatchedSymbolModel
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&rows).Error; err != nil {
		return nil, false, err
	}
	out := make([]string, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.Symbol)
	}
	return out, initialized == "true", nil
}

// SaveSymbols はセットの置き換えと初期化フラグの設定を1トランザクションで行います。
func (r *preferenceGorm) SaveSymbols(ctx context.Context, symbols []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&WatchedSymbolModel{}).Error; err != nil {
			return err
		}
		if len(symbols) > 0 {
			rows := make([]WatchedSymbolModel, 0, len(symbols))
			for _, s := range symbols {
				rows = append(rows, WatchedSymbolModel{Symbol: s})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}
		return r.set(tx, keyStocksInitialized, "true")
	})
}

func (r *preferenceGorm) LoadDisplayMode(ctx context.Context) (string, error) {
	return r.get(ctx, r.db, keyDisplayMode)
}

func (r *preferenceGorm) SaveDisplayMode(ctx context.Context, mode string) error {
	return r.set(r.db.WithContext(ctx), keyDisplayMode, mode)
}

// get は未設定のキーに対して "" を返します。
func (r *preferenceGorm) get(ctx context.Context, db *gorm.DB, key string) (string, error) {
	var m PreferenceModel
	// 未設定は通常の状態なのでTakeのrecord not foundを出さない
	res := db.WithContext(ctx).Where(&PreferenceModel{Key: key}).Limit(1).Find(&m)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", nil
	}
	return m.Value, nil
}

func (r *preferenceGorm) set(db *gorm.DB, key, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&PreferenceModel{Key: key, Value: value}).Error
}
