package service

import (
	"context"
	"sync"
)

// Service 백그라운드에서 실행되는 서비스의 공통 생명주기 인터페이스입니다.
type Service interface {
	// Start 서비스를 시작합니다.
	//
	// 파라미터:
	//   - serviceStopCtx: 서비스 종료 신호를 받기 위한 Context
	//   - serviceStopWG: 서비스 종료 완료를 알리기 위한 WaitGroup
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}
