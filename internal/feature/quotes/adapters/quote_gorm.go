// Package adapters はquotesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/quotes/usecase"
)

type quoteGorm struct {
	db *gorm.DB
}

var _ usecase.QuoteRepository = (*quoteGorm)(nil)

// NewQuoteRepository は指定されたDB接続でquoteGormリポジトリを生成します。
func NewQuoteRepository(db *gorm.DB) *quoteGorm {
	return &quoteGorm{db: db}
}

// QuoteModel は quotes テーブルの1行（1銘柄）です。
type QuoteModel struct {
	Symbol           string  `gorm:"primaryKey;size:32"`
	Price            float64 `gorm:"not null"`
	PercentageChange float64 `gorm:"not null"`
	AbsoluteChange   float64 `gorm:"not null"`
	History          string  `gorm:"type:text;not null;default:''"`
	UpdatedAt        time.Time
}

func (QuoteModel) TableName() string {
	return "quotes"
}

func toModel(e entity.Quote) QuoteModel {
	return QuoteModel{
		Symbol:           e.Symbol,
		Price:            e.Price,
		PercentageChange: e.PercentageChange,
		AbsoluteChange:   e.AbsoluteChange,
		History:          e.History,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toEntity(m QuoteModel) entity.Quote {
	return entity.Quote{
		Symbol:           m.Symbol,
		Price:            m.Price,
		AbsoluteChange:   m.AbsoluteChange,
		PercentageChange: m.PercentageChange,
		History:          m.History,
		UpdatedAt:        m.UpdatedAt,
	}
}

// UpsertBatch は全行を1つのINSERT ... ON CONFLICTで書き込みます。
func (r *quoteGorm) UpsertBatch(ctx context.Context, quotes []entity.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	ms := make([]QuoteModel, 0, len(quotes))
	for _, q := range quotes {
		ms = append(ms, toModel(q))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "percentage_change", "absolute_change", "history", "updated_at"}),
	}).Create(&ms).Error
}

// FindAll は全銘柄の行をsymbol昇順で返します。
func (r *quoteGorm) FindAll(ctx context.Context) ([]entity.Quote, error) {
	var rows []QuoteModel
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Quote, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// FindBySymbol は1銘柄の行を返します。存在しない場合はErrQuoteNotFoundを返します。
func (r *quoteGorm) FindBySymbol(ctx context.Context, symbol string) (entity.Quote, error) {
	var m QuoteModel
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Limit(1).Find(&m)
	if res.Error != nil {
		return entity.Quote{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entity.Quote{}, entity.ErrQuoteNotFound
	}
	return toEntity(m), nil
}

// Exists は銘柄の行が存在するかを返します。
func (r *quoteGorm) Exists(ctx context.Context, symbol string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).Where("symbol = ?", symbol).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteBySymbols は指定された銘柄の行を削除します。
func (r *quoteGorm) DeleteBySymbols(ctx context.Context, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("symbol IN ?", symbols).Delete(&QuoteModel{}).Error
}
