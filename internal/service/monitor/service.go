// Package monitor 등록된 소스들의 상품 카탈로그를 주기적으로 수집하여
// 이전 스냅샷과 비교하고, 신규 등록/판매 종료 상품을 알림으로 발송하는 서비스입니다.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/service"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/catalog"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/fetcher"
	"github.com/darkkaiser/catalog-notifier/pkg/concurrency"
	"github.com/darkkaiser/catalog-notifier/pkg/cronx"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/robfig/cron/v3"
)

const component = "monitor"

// defaultTickInterval 주기 기반 소스의 수집 시각을 확인하는 드라이버 루프의 주기입니다.
const defaultTickInterval = 1 * time.Second

// Monitor 소스 수집 사이클을 구동하는 서비스 구현체입니다.
//
// 주기(interval) 기반 소스는 1초 단위의 단일 드라이버 루프가 수집 시각을
// 확인하여 실행하고, Cron 표현식 기반 소스는 Cron 엔진이 실행합니다.
// 동일 소스의 사이클은 서로 겹치지 않으며, 이전 사이클이 실행 중이면 건너뜁니다.
type Monitor struct {
	cfg *config.AppConfig

	notificationSender contract.NotificationSender

	fetcher fetcher.Fetcher

	sources []*source

	// sourceMu 소스별 사이클 중복 실행을 방지하는 락
	sourceMu *concurrency.KeyedMutex

	cron *cron.Cron

	clock        Clock
	tickInterval time.Duration

	running   bool
	runningMu sync.Mutex
}

var (
	_ service.Service               = (*Monitor)(nil)
	_ contract.SourceStatusProvider = (*Monitor)(nil)
)

// New Monitor 서비스를 생성합니다.
func New(cfg *config.AppConfig, notificationSender contract.NotificationSender) (*Monitor, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "Monitor 서비스 생성에 필요한 설정 객체가 nil입니다")
	}
	if notificationSender == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "Monitor 서비스 생성에 필요한 NotificationSender 객체가 nil입니다")
	}

	sources := make([]*source, 0, len(cfg.Monitor.Sources))
	for _, sourceCfg := range cfg.Monitor.Sources {
		s, err := newSource(sourceCfg, cfg.Monitor.DefaultInterval)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	return &Monitor{
		cfg:                cfg,
		notificationSender: notificationSender,

		fetcher: fetcher.NewFromConfig(fetcher.Config{
			MaxRetries:     cfg.HTTPRetry.MaxRetries,
			MinRetryDelay:  cfg.HTTPRetry.RetryDelayDuration(),
			RequestTimeout: cfg.HTTPRetry.RequestTimeoutDuration(),
		}),

		sources:  sources,
		sourceMu: concurrency.NewKeyedMutex(),

		clock:        systemClock{},
		tickInterval: defaultTickInterval,
	}, nil
}

// Start Monitor 서비스를 시작합니다.
//
// 주기 기반 소스는 시작 직후 첫 사이클이 실행되도록 예약되며,
// Cron 기반 소스는 Cron 엔진에 등록되어 지정된 시각에 실행됩니다.
func (m *Monitor) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	m.runningMu.Lock()
	defer m.runningMu.Unlock()

	applog.WithComponent(component).Debug("Monitor 서비스 시작중...")

	if m.running {
		defer serviceStopWG.Done()
		return apperrors.New(apperrors.Conflict, "Monitor 서비스가 이미 시작되었습니다")
	}

	cronLogger := cron.VerbosePrintfLogger(applog.StandardLogger())
	m.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		),
	)

	// Cron 기반 소스 등록
	for _, s := range m.sources {
		if s.cronSpec == "" {
			continue
		}

		src := s
		if _, err := m.cron.AddFunc(src.cronSpec, func() {
			m.runCycle(serviceStopCtx, src)
		}); err != nil {
			defer serviceStopWG.Done()
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 Cron 작업 등록에 실패했습니다", src.cfg.ID))
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"source_id": src.cfg.ID,
			"time_spec": src.cronSpec,
		}).Debug("Cron 기반 소스가 등록되었습니다")
	}
	m.cron.Start()

	// 주기 기반 소스는 시작 직후 첫 사이클을 수행
	now := m.clock.Now()
	for _, s := range m.sources {
		if s.cronSpec == "" {
			s.nextRunAt.Store(now.UnixNano())
		}
	}

	go m.run(serviceStopCtx, serviceStopWG)

	m.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"source_count": len(m.sources),
	}).Info("Monitor 서비스 시작됨")

	return nil
}

// run 주기 기반 소스의 수집 시각을 확인하는 드라이버 루프입니다.
// 서비스 종료 신호를 받으면 실행 중인 사이클이 모두 끝날 때까지 대기한 후 반환합니다.
func (m *Monitor) run(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	var cycleWG sync.WaitGroup

	for {
		select {
		case <-serviceStopCtx.Done():
			applog.WithComponent(component).Debug("Monitor 서비스 중지중...")

			m.stop()
			cycleWG.Wait()

			m.runningMu.Lock()
			m.running = false
			m.runningMu.Unlock()

			applog.WithComponent(component).Info("Monitor 서비스 중지됨")

			return

		case <-ticker.C:
			now := m.clock.Now()

			for _, s := range m.sources {
				if !s.due(now) {
					continue
				}
				s.scheduleNext(now)

				src := s
				cycleWG.Add(1)
				go func() {
					defer cycleWG.Done()
					m.runCycle(serviceStopCtx, src)
				}()
			}
		}
	}
}

// SourceStatuses 등록된 모든 소스의 현재 수집 상태를 설정 순서대로 반환합니다.
func (m *Monitor) SourceStatuses() []contract.SourceStatus {
	statuses := make([]contract.SourceStatus, 0, len(m.sources))

	for _, s := range m.sources {
		m.sourceMu.Lock(s.cfg.ID)
		sourceStatus := s.status()
		m.sourceMu.Unlock(s.cfg.ID)

		statuses = append(statuses, sourceStatus)
	}

	return statuses
}

// stop Cron 엔진을 중지하고 실행 중인 Cron 작업이 끝날 때까지 대기합니다.
func (m *Monitor) stop() {
	if m.cron == nil {
		return
	}

	cronStopCtx := m.cron.Stop()
	<-cronStopCtx.Done()
}

// runCycle 소스 하나의 수집 사이클을 수행합니다.
//
// 사이클은 수집, 스냅샷 비교, 스냅샷 저장, 변경 알림 발송 순으로 진행됩니다.
// 수집에 실패하면 빈 스냅샷으로 처리되며, 이 빈 스냅샷도 그대로 저장됩니다.
// 따라서 수집 실패 시 전체 상품이 종료된 것으로 감지되고, 이후 수집이 복구되면
// 전체 상품이 신규 등록된 것으로 다시 감지됩니다.
func (m *Monitor) runCycle(ctx context.Context, s *source) CycleOutcome {
	outcome := CycleOutcome{SourceID: s.cfg.ID}

	if !m.sourceMu.TryLock(s.cfg.ID) {
		applog.WithComponentAndFields(component, applog.Fields{
			"source_id": s.cfg.ID,
		}).Warn("이전 수집 사이클이 아직 실행 중이므로 이번 사이클을 건너뜁니다")

		outcome.Skipped = true
		return outcome
	}
	defer m.sourceMu.Unlock(s.cfg.ID)

	defer func() {
		lastCycle := outcome
		s.lastCycle = &lastCycle
		s.lastCycleAt = m.clock.Now()
	}()

	outcome.Fetch = m.fetchSnapshot(ctx, s)

	snapshot := catalog.Snapshot{}
	if outcome.Fetch.Succeeded {
		snapshot = outcome.Fetch.snapshot
	}

	// 첫 사이클은 기준 스냅샷 저장만 수행하고 알림은 발송하지 않음
	if s.state == stateUnseen {
		s.snapshot = snapshot
		s.state = stateBaselined

		applog.WithComponentAndFields(component, applog.Fields{
			"source_id":     s.cfg.ID,
			"product_count": len(snapshot),
		}).Info("기준 스냅샷이 저장되었습니다. 다음 사이클부터 변경 감지를 시작합니다")

		outcome.Baselined = true
		return outcome
	}

	changes := catalog.Diff(s.snapshot, snapshot)

	// 수집 성공/실패와 무관하게 이번 사이클의 스냅샷으로 항상 덮어씀
	s.snapshot = snapshot

	outcome.Added = len(changes.Added)
	outcome.Removed = len(changes.Removed)

	if changes.Empty() {
		applog.WithComponentAndFields(component, applog.Fields{
			"source_id":     s.cfg.ID,
			"product_count": len(snapshot),
		}).Debug("상품 카탈로그의 변경사항이 없습니다")

		return outcome
	}

	outcome.Notify = m.notifyChanges(s, changes)

	applog.WithComponentAndFields(component, applog.Fields{
		"source_id":     s.cfg.ID,
		"added":         outcome.Added,
		"removed":       outcome.Removed,
		"notify_failed": outcome.Notify.Failed,
	}).Info("상품 카탈로그의 변경사항 알림이 발송되었습니다")

	return outcome
}

// fetchSnapshot 소스 타입에 맞는 방식으로 카탈로그 스냅샷을 수집합니다.
// 수집 실패는 에러 로그로 기록되며 호출자에게는 실패 결과로 전달됩니다.
func (m *Monitor) fetchSnapshot(ctx context.Context, s *source) FetchOutcome {
	started := m.clock.Now()

	var snapshot catalog.Snapshot
	var err error

	switch s.cfg.SourceType() {
	case config.SourceTypeHTML:
		snapshot, err = catalog.FetchHTMLSnapshot(ctx, m.fetcher, s.cfg.URL, s.htmlSettings)
	default:
		snapshot, err = catalog.FetchJSONSnapshot(ctx, m.fetcher, s.cfg.URL)
	}

	elapsed := m.clock.Now().Sub(started)

	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"source_id": s.cfg.ID,
			"url":       s.cfg.URL,
			"elapsed":   elapsed,
		}).WithError(err).Error("상품 카탈로그 수집이 실패하였습니다. 빈 스냅샷으로 처리합니다")

		return FetchOutcome{Elapsed: elapsed, Err: err}
	}

	return FetchOutcome{
		Succeeded:    true,
		ProductCount: len(snapshot),
		Elapsed:      elapsed,
		snapshot:     snapshot,
	}
}

// notifyChanges 변경된 상품별로 알림 메시지를 생성하여 발송합니다.
//
// 신규 등록 상품을 먼저, 판매 종료 상품을 나중에 발송하며 각 목록은 상품명
// 순으로 정렬되어 있습니다. 개별 메시지의 발송 실패는 기록만 하고 나머지
// 메시지의 발송은 계속 진행합니다.
func (m *Monitor) notifyChanges(s *source, changes catalog.ChangeSet) NotifyOutcome {
	var outcome NotifyOutcome

	send := func(message string) {
		outcome.Requested++

		if err := m.notificationSender.NotifyWithTitle(s.notifierID(), s.title(), message, false); err != nil {
			outcome.Failed++

			applog.WithComponentAndFields(component, applog.Fields{
				"source_id":   s.cfg.ID,
				"notifier_id": s.cfg.DefaultNotifierID,
			}).WithError(err).Error("변경 알림 발송 요청이 실패하였습니다")
		}
	}

	for _, p := range changes.Added {
		send(catalog.RenderAdded(s.cfg.Domain, p, false))
	}
	for _, p := range changes.Removed {
		send(catalog.RenderRemoved(s.cfg.Domain, p, false))
	}

	return outcome
}
