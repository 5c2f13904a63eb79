package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/darkkaiser/catalog-notifier/internal/pkg/errors"
	"github.com/darkkaiser/catalog-notifier/internal/pkg/mark"
	"github.com/darkkaiser/catalog-notifier/internal/service/contract"
	"github.com/darkkaiser/catalog-notifier/pkg/strutil"
)

// payload 웹훅 엔드포인트로 전송되는 요청 본문입니다.
type payload struct {
	Content string `json:"content"`
}

// buildMessage 알림의 제목과 오류 여부를 반영한 발송용 메시지를 생성합니다.
func buildMessage(notification contract.Notification) string {
	message := notification.Message

	if notification.Title != "" {
		message = fmt.Sprintf("[%s]\n%s", notification.Title, message)
	}
	if notification.ErrorOccurred {
		message = mark.Alert.WithSpace() + message
	}

	return message
}

// splitMessage 메시지를 웹훅 요청 하나에 담을 수 있는 길이로 분할합니다.
// 분할된 조각들을 순서대로 이어붙이면 원본 메시지가 복원됩니다.
func splitMessage(message string) []string {
	return strutil.ChunkString(message, maxMessageLength)
}

// post 메시지 조각 하나를 웹훅 엔드포인트로 전송합니다.
func (n *webhookNotifier) post(ctx context.Context, chunk string) error {
	body, err := json.Marshal(payload{Content: chunk})
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "웹훅 요청 본문 생성에 실패했습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "웹훅 요청 생성에 실패했습니다")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "웹훅 요청 전송에 실패했습니다")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apperrors.New(apperrors.Unavailable, fmt.Sprintf("웹훅 엔드포인트가 실패 응답을 반환했습니다 (status: %s)", resp.Status))
	}

	return nil
}
