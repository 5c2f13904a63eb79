package api

import (
	"io"

	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Logger Echo의 Logger 인터페이스를 구현하는 Logrus 어댑터입니다.
//
// Echo는 자체 Logger 인터페이스(github.com/labstack/gommon/log.Logger)를 정의하고
// 있으며, 이 인터페이스의 모든 메서드를 구현해야 Echo와 통합할 수 있습니다.
// 아래의 메서드들은 대부분 Logrus의 해당 메서드로 단순 위임하는 보일러플레이트 코드입니다.
type Logger struct {
	*applog.Logger
}

var _ echo.Logger = Logger{}

// Output 현재 출력 Writer를 반환합니다.
func (l Logger) Output() io.Writer {
	return l.Out
}

func (l Logger) SetOutput(w io.Writer) {
	l.Logger.SetOutput(w)
}

func (l Logger) Prefix() string {
	return ""
}

func (l Logger) SetPrefix(string) {
	// Echo의 Prefix 기능은 사용하지 않음
}

// Level Logrus의 로그 레벨을 Echo의 로그 레벨로 변환합니다.
func (l Logger) Level() log.Lvl {
	switch l.Logger.Level {
	case applog.DebugLevel:
		return log.DEBUG
	case applog.InfoLevel:
		return log.INFO
	case applog.WarnLevel:
		return log.WARN
	case applog.ErrorLevel:
		return log.ERROR
	}
	return log.OFF
}

// SetLevel Echo의 로그 레벨을 Logrus의 로그 레벨로 변환하여 설정합니다.
func (l Logger) SetLevel(lvl log.Lvl) {
	switch lvl {
	case log.DEBUG:
		l.Logger.SetLevel(applog.DebugLevel)
	case log.INFO:
		l.Logger.SetLevel(applog.InfoLevel)
	case log.WARN:
		l.Logger.SetLevel(applog.WarnLevel)
	case log.ERROR:
		l.Logger.SetLevel(applog.ErrorLevel)
	}
}

func (l Logger) SetHeader(string) {
	// Echo의 Header 기능은 사용하지 않음
}

func (l Logger) Printj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Print()
}

func (l Logger) Debugj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Debug()
}

func (l Logger) Infoj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Info()
}

func (l Logger) Warnj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Warn()
}

func (l Logger) Errorj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Error()
}

func (l Logger) Fatalj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Fatal()
}

func (l Logger) Panicj(j log.JSON) {
	l.WithFields(applog.Fields(j)).Panic()
}
