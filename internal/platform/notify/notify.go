// Package notify はデータ更新通知（com.stockwatch.ACTION_DATA_UPDATED）の配信を提供します。
// 通知はアクション名だけで、ペイロードはありません。
package notify

import (
	"context"
	"errors"
)

// ActionDataUpdated は保存済みの株価が変わったことを表すアクション名です。
const ActionDataUpdated = "com.stockwatch.ACTION_DATA_UPDATED"

// Notifier はデータ更新を通知します。
type Notifier interface {
	NotifyDataUpdated(ctx context.Context) error
}

// Multi は複数のNotifierへ順に通知します。失敗しても残りへの通知は続けます。
type Multi []Notifier

func (m Multi) NotifyDataUpdated(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyDataUpdated(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
