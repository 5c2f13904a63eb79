package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/darkkaiser/catalog-notifier/internal/config"
	"github.com/darkkaiser/catalog-notifier/internal/pkg/version"
	"github.com/darkkaiser/catalog-notifier/internal/service"
	"github.com/darkkaiser/catalog-notifier/internal/service/api"
	"github.com/darkkaiser/catalog-notifier/internal/service/monitor"
	"github.com/darkkaiser/catalog-notifier/internal/service/notification"
	applog "github.com/darkkaiser/catalog-notifier/pkg/log"
	log "github.com/sirupsen/logrus"
)

// 빌드 정보 변수 (Dockerfile의 ldflags로 주입됨)
var (
	Version     = "dev"     // Git 커밋 해시
	BuildDate   = "unknown" // 빌드 날짜
	BuildNumber = "0"       // 빌드 번호
)

const (
	banner = `
  ____      _        _               _   _       _   _  __ _
 / ___|__ _| |_ __ _| | ___   __ _  | \ | | ___ | |_(_)/ _(_) ___ _ __
| |   / _' | __/ _' | |/ _ \ / _' | |  \| |/ _ \| __| | |_| |/ _ \ '__|
| |__| (_| | || (_| | | (_) | (_| | | |\  | (_) | |_| |  _| |  __/ |
 \____\__,_|\__\__,_|_|\___/ \__, | |_| \_|\___/ \__|_|_| |_|\___|_|
                             |___/                          %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentConfig(config.AppName)
	} else {
		logOpts = applog.NewProductionConfig(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, Version)

	// 빌드 정보 설정 (전역 싱글톤 등록)
	buildInfo := version.Info{
		Version:     Version,
		BuildDate:   BuildDate,
		BuildNumber: BuildNumber,
		GoVersion:   runtime.Version(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
	}
	version.Set(buildInfo)

	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 권장 설정 준수 여부를 진단하고 경고를 출력한다.
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 서비스를 생성하고 초기화한다.
	notificationService := notification.NewService(appConfig)

	monitorService, err := monitor.New(appConfig, notificationService)
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("Monitor 서비스 생성 실패")
		log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
	}

	apiService := api.NewService(appConfig, notificationService, notificationService, monitorService, buildInfo)

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다. (알림 채널이 먼저 준비되어야 하므로 Notification 서비스부터 시작)
	services := []service.Service{notificationService, monitorService, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponent("main").WithError(err).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}
