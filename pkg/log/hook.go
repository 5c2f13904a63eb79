package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hook 로그 레벨에 따라 로그를 여러 Writer로 분배하는 logrus Hook 구현체입니다.
//
// 라우팅 정책:
//   - Error 이상: Critical + Main
//   - Info ~ Warn: Main
//   - Debug 이하: Verbose (Main에는 기록하지 않음)
//   - Console: 설정된 경우 레벨 필터링 없이 전부 출력
type hook struct {
	mainWriter     io.Writer // 운영 상태와 에러를 기록하는 메인 채널 (INFO / WARN / ERROR / FATAL / PANIC)
	criticalWriter io.Writer // 치명적 장애를 격리 보존하는 채널 (ERROR / FATAL / PANIC)
	verboseWriter  io.Writer // 디버깅 정보를 기록하는 채널 (DEBUG / TRACE)
	consoleWriter  io.Writer // 모든 레벨의 로그를 실시간으로 출력하는 표준 출력

	formatter Formatter

	mu sync.RWMutex // 로그 기록(Read Lock)과 종료 처리(Write Lock) 간의 동시성 제어

	closed bool // true일 경우 모든 로그 기록 요청을 거부
}

// Levels 이 Hook이 수신할 로그 레벨의 집합을 반환합니다.
func (h *hook) Levels() []Level {
	return AllLevels
}

// Fire 수신한 로그 이벤트를 레벨 기반 라우팅 정책에 따라 각 Writer로 분배합니다.
func (h *hook) Fire(entry *Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return nil
	}

	// 포맷팅은 한 번만 수행하여 재사용한다.
	msg, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	var firstErr error

	// 콘솔 출력 실패는 전체 로깅 시스템의 가용성에 영향을 주지 않도록 에러를 전파하지 않는다.
	if h.consoleWriter != nil {
		if _, err := h.consoleWriter.Write(msg); err != nil {
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] 표준 출력(Console) 쓰기 실패: %v\n", err)
		}
	}

	// Critical 기록이 실패하더라도 메인 로그 기록은 반드시 수행되어야 하므로 에러를 유예한다.
	if entry.Level <= ErrorLevel {
		if h.criticalWriter != nil {
			if _, err := h.criticalWriter.Write(msg); err != nil {
				firstErr = err
				fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Critical 로그 파일 쓰기 실패: %v\n", err)
			}
		}
	}

	// 상세 로그(Debug/Trace)는 메인 로그에 남기지 않고 여기서 종료한다.
	if entry.Level >= DebugLevel {
		if h.verboseWriter != nil {
			if _, err := h.verboseWriter.Write(msg); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-WARN] Verbose 로그 파일 쓰기 실패: %v\n", err)
			}
		}

		return firstErr
	}

	if h.mainWriter != nil {
		if _, err := h.mainWriter.Write(msg); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(os.Stderr, "[LOG-SYSTEM-FAILURE] Main 로그 파일 쓰기 실패: %v\n", err)
		}
	}

	return firstErr
}

// Close Hook을 종료 상태로 전환하여 더 이상의 로그 기록을 차단합니다.
func (h *hook) Close() error {
	// Write Lock을 획득하여 현재 실행 중인 모든 로깅 작업이 완료될 때까지 대기한다.
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	return nil
}
