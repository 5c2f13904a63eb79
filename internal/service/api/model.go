package api

import "github.com/darkkaiser/catalog-notifier/internal/service/contract"

// NotificationRequest 알림 메시지 게시 요청 모델
type NotificationRequest struct {
	// 애플리케이션 ID
	ApplicationID string `json:"application_id" form:"application_id" query:"application_id" validate:"required"`
	// 알림 메시지 내용 (최대 4096자)
	Message string `json:"message" form:"message" query:"message" validate:"required,min=1,max=4096"`
	// 에러 발생 여부 (true인 경우 에러 알림으로 표시됨)
	ErrorOccurred bool `json:"error_occurred" form:"error_occurred" query:"error_occurred"`
}

// SuccessResponse 성공 응답 모델
type SuccessResponse struct {
	// 결과 코드 (0: 성공)
	ResultCode int `json:"result_code"`
}

// ErrorResponse 에러 응답 모델
type ErrorResponse struct {
	// 에러 메시지
	Message string `json:"message"`
}

// HealthResponse 서버 상태 응답 모델
type HealthResponse struct {
	Status string `json:"status"`
	// Uptime 서버 기동 후 경과 시간(초)
	Uptime int64 `json:"uptime"`
}

// SourcesResponse 감시 대상 소스들의 수집 상태 응답 모델
type SourcesResponse struct {
	Sources []contract.SourceStatus `json:"sources"`
}
