// Package scheduler はリフレッシュジョブの定期実行と即時実行を管理します。
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// PeriodicJobID は定期同期ジョブのIDです。
	PeriodicJobID = 1
	// OneOffJobID はネットワーク復帰待ちの単発同期ジョブのIDです。
	OneOffJobID = 2
)

// JobFunc は1回分の同期です。エラーを返すとバックオフ後に再試行されます。
type JobFunc func(ctx context.Context) error

// ConnectivityChecker はネットワークに接続できるかを返します。
type ConnectivityChecker interface {
	Connected(ctx context.Context) bool
}

// Config はスケジューラの間隔設定です。
type Config struct {
	Period         time.Duration // 定期実行の間隔
	InitialBackoff time.Duration // 失敗後の最初の待ち時間。以後2倍ずつ、Periodを上限に伸ばす
}

type registration struct {
	cancel context.CancelFunc
}

// Scheduler はジョブIDごとに1つの登録を持ちます。同じIDで登録し直すと前の登録は取り消されます。
type Scheduler struct {
	job     JobFunc
	checker ConnectivityChecker
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	jobs map[int]*registration
}

// New はSchedulerを生成します。Stopを呼ぶまでジョブは動き続けます。
func New(job JobFunc, checker ConnectivityChecker, cfg Config) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		job:     job,
		checker: checker,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[int]*registration),
	}
}

// Initialize は定期ジョブを登録し、同期を1回すぐに要求します。
func (s *Scheduler) Initialize(ctx context.Context) {
	s.register(PeriodicJobID, s.runPeriodic)
	s.SyncImmediately(ctx)
}

// SyncImmediately は接続できればすぐにジョブを実行し、できなければ
// 接続が戻るまでバックオフで待つ単発ジョブを登録します。
func (s *Scheduler) SyncImmediately(ctx context.Context) {
	if s.checker.Connected(ctx) {
		s.mu.Lock()
		s.spawn(func() {
			if err := s.job(s.ctx); err != nil {
				slog.Warn("immediate sync failed", "error", err)
			}
		})
		s.mu.Unlock()
		return
	}

	slog.Info("network unavailable, scheduling one-off sync")
	s.register(OneOffJobID, func(ctx context.Context) {
		s.runWithBackoff(ctx, s.checker.Connected)
	})
}

// Stop は全ジョブを取り消し、終了を待ちます。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// spawn はmuを保持した状態で呼び出します。Stop後は何もしません。
func (s *Scheduler) spawn(fn func()) {
	if s.ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Scheduler) register(id int, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if prev, ok := s.jobs[id]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	reg := &registration{cancel: cancel}
	s.jobs[id] = reg

	s.spawn(func() {
		defer cancel()
		fn(ctx)

		s.mu.Lock()
		if s.jobs[id] == reg {
			delete(s.jobs, id)
		}
		s.mu.Unlock()
	})
}

func (s *Scheduler) runPeriodic(ctx context.Context) {
	for {
		if !sleep(ctx, s.cfg.Period) {
			return
		}
		s.runWithBackoff(ctx, nil)
	}
}

// runWithBackoff は成功するまでジョブを繰り返します。readyがfalseの間は実行しません。
func (s *Scheduler) runWithBackoff(ctx context.Context, ready func(context.Context) bool) bool {
	delay := s.cfg.InitialBackoff
	for {
		if ready == nil || ready(ctx) {
			err := s.job(ctx)
			if err == nil {
				return true
			}
			slog.Warn("sync failed, backing off", "error", err, "retry_in", delay)
		}
		if !sleep(ctx, delay) {
			return false
		}
		delay = min(delay*2, s.cfg.Period)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
