package monitor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor/catalog"
	"github.com/darkkaiser/catalog-notifier/pkg/maputil"
	"github.com/iancoleman/strcase"
)

// sourceState 소스의 수집 상태입니다.
type sourceState int

const (
	// stateUnseen 아직 한 번도 수집에 성공/실패한 적이 없는 초기 상태
	stateUnseen sourceState = iota

	// stateBaselined 첫 사이클에서 기준 스냅샷을 저장한 이후의 상태.
	// 이 상태부터 스냅샷 비교 및 변경 알림 발송이 수행됩니다.
	stateBaselined
)

// source 감시 대상 소스 하나의 설정과 수집 상태를 관리합니다.
// 상태 변경은 소스별 락을 획득한 사이클 내부에서만 이루어집니다.
type source struct {
	cfg config.SourceConfig

	// interval 주기 기반 소스의 수집 주기 (Cron 소스는 사용하지 않음)
	interval time.Duration

	// cronSpec Cron 기반 소스의 실행 시각 표현식 (주기 기반 소스는 빈 값)
	cronSpec string

	// htmlSettings HTML 소스의 셀렉터 설정 (JSON 소스는 nil)
	htmlSettings *catalog.HTMLSettings

	state    sourceState
	snapshot catalog.Snapshot

	// lastCycle 마지막으로 완료된 사이클의 결과 (아직 사이클을 수행하지 않았으면 nil)
	lastCycle   *CycleOutcome
	lastCycleAt time.Time

	// nextRunAt 주기 기반 소스의 다음 수집 예정 시각 (UnixNano).
	// 드라이버 루프와 상태 조회에서 동시에 접근하므로 원자적으로 읽고 씁니다.
	nextRunAt atomic.Int64
}

// newSource 소스 설정을 해석하여 수집 가능한 source 객체를 생성합니다.
func newSource(cfg config.SourceConfig, defaultInterval string) (*source, error) {
	s := &source{
		cfg:      cfg,
		snapshot: catalog.Snapshot{},
	}

	if cfg.Scheduler.Runnable {
		s.cronSpec = cfg.Scheduler.TimeSpec
	} else {
		interval, err := cfg.PollInterval(defaultInterval)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 수집 주기 해석에 실패했습니다", cfg.ID))
		}
		s.interval = interval
	}

	if cfg.SourceType() == config.SourceTypeHTML {
		settings, err := maputil.Decode[catalog.HTMLSettings](cfg.Settings)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 settings 해석에 실패했습니다", cfg.ID))
		}
		if err := settings.Validate(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("Source['%s']의 settings가 유효하지 않습니다", cfg.ID))
		}
		s.htmlSettings = settings
	}

	return s, nil
}

// title 알림 제목으로 사용할 소스의 표시 이름을 반환합니다.
// 제목이 설정되지 않은 소스는 ID를 CamelCase로 정규화하여 사용합니다.
func (s *source) title() string {
	if s.cfg.Title != "" {
		return s.cfg.Title
	}
	return strcase.ToCamel(s.cfg.ID)
}

// notifierID 이 소스의 변경 알림을 발송할 Notifier 식별자를 반환합니다.
// 빈 값이면 알림 서비스의 기본 Notifier가 사용됩니다.
func (s *source) notifierID() contract.NotifierID {
	return contract.NotifierID(s.cfg.DefaultNotifierID)
}

// due 주기 기반 소스의 수집 시각이 도래했는지 확인합니다.
// Cron 기반 소스는 Cron 엔진이 실행을 관리하므로 항상 false를 반환합니다.
func (s *source) due(now time.Time) bool {
	return s.cronSpec == "" && now.UnixNano() >= s.nextRunAt.Load()
}

// scheduleNext 다음 수집 예정 시각을 현재 시각 기준으로 재설정합니다.
func (s *source) scheduleNext(now time.Time) {
	s.nextRunAt.Store(now.Add(s.interval).UnixNano())
}

// status 소스의 현재 수집 상태 요약을 생성합니다.
// 사이클이 변경하는 필드를 읽으므로 소스별 락을 획득한 상태에서 호출해야 합니다.
func (s *source) status() contract.SourceStatus {
	sourceStatus := contract.SourceStatus{
		ID:           s.cfg.ID,
		Title:        s.title(),
		State:        contract.SourceStateUnseen,
		ProductCount: len(s.snapshot),
	}

	if s.state == stateBaselined {
		sourceStatus.State = contract.SourceStateBaselined
	}

	if s.lastCycle != nil {
		sourceStatus.FetchSucceeded = s.lastCycle.Fetch.Succeeded
		sourceStatus.Added = s.lastCycle.Added
		sourceStatus.Removed = s.lastCycle.Removed
		sourceStatus.LastCycleAt = s.lastCycleAt
	}

	if s.cronSpec == "" {
		if nanos := s.nextRunAt.Load(); nanos > 0 {
			sourceStatus.NextRunAt = time.Unix(0, nanos)
		}
	}

	return sourceStatus
}
