// Package version 애플리케이션의 빌드 및 버저닝 정보를 관리하는 패키지입니다.
//
// 빌드 시점에 링커 플래그(-ldflags)로 주입된 메타데이터와
// 실행 시점의 환경 정보(Go 버전, OS, 아키텍처)를 통합하여 제공합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

const (
	unknown = "unknown"
	none    = "none"
)

// globalBuildInfo 전역 빌드 정보 (Atomic Value를 사용하여 Thread-Safe 보장)
var globalBuildInfo atomic.Value

// readBuildInfo 테스트에서 교체(Mocking) 가능하도록 변수로 선언합니다.
var readBuildInfo = debug.ReadBuildInfo

// 다음 변수들은 컴파일 시점에 링커 플래그(ldflags)를 통해 주입됩니다.
// 애플리케이션 로직에서는 직접 접근하지 말고 Get() 함수를 통해 접근해야 합니다.
var (
	appVersion    = "" // 애플리케이션 버전 (예: v1.0.1-15-gf25b8bf)
	gitCommitHash = "" // Git 커밋 해시
	gitTreeState  = "" // Git 작업 트리의 변경 상태 (clean 또는 dirty)
	buildDate     = "" // 빌드 수행 시간
	buildNumber   = "" // CI/CD 파이프라인 빌드 번호
)

func init() {
	bi := Info{
		Version:     strings.TrimSpace(appVersion),
		Commit:      strings.TrimSpace(gitCommitHash),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
	}

	if strings.ToLower(strings.TrimSpace(gitTreeState)) == "dirty" {
		bi.DirtyBuild = true
	}

	set(enrichBuildInfo(bi))
}

// Info 애플리케이션의 빌드 정보를 담고 있습니다.
// 주로 /version API 엔드포인트나 로그 출력에 사용됩니다.
type Info struct {
	Version     string `json:"version"`      // 애플리케이션의 버전
	Commit      string `json:"commit"`       // Git 커밋 해시
	BuildDate   string `json:"build_date"`   // 빌드 날짜 (ISO 8601 형식 권장)
	BuildNumber string `json:"build_number"` // CI/CD 빌드 번호
	GoVersion   string `json:"go_version"`   // 빌드에 사용된 Go 컴파일러 버전
	OS          string `json:"os"`           // 실행 중인 운영체제
	Arch        string `json:"arch"`         // 실행 중인 시스템 아키텍처
	DirtyBuild  bool   `json:"dirty_build"`  // 빌드 시점에 소스 변경사항이 있었는지 여부
}

// String 로그 출력용 요약 문자열을 반환합니다.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" && i.Commit != unknown {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		s = fmt.Sprintf("%s (%s)", s, commit)
	}
	if i.DirtyBuild {
		s += "-dirty"
	}
	return s
}

// Get 애플리케이션의 빌드 정보를 반환합니다.
func Get() Info {
	bi := globalBuildInfo.Load()
	if bi == nil {
		return Info{
			Version:     unknown,
			Commit:      unknown,
			BuildDate:   unknown,
			BuildNumber: "0",
		}
	}
	return bi.(Info)
}

// set 애플리케이션의 빌드 정보를 설정합니다.
func set(bi Info) {
	globalBuildInfo.Store(bi)
}

// Set 외부(main)에서 빌드 정보를 주입합니다.
func Set(bi Info) {
	set(enrichBuildInfo(bi))
}

// enrichBuildInfo 초기화되지 않은 빌드 정보에 런타임 환경 값(Go 버전, OS, Arch)을 채워 넣습니다.
//
// 버전 정보가 누락된 경우 실행 파일의 디버그 메타데이터(debug.ReadBuildInfo)를 분석하여
// VCS 리비전이나 수정 상태(Dirty) 등의 정보를 보강합니다.
func enrichBuildInfo(bi Info) Info {
	if bi.GoVersion == "" {
		bi.GoVersion = runtime.Version()
	}
	if bi.OS == "" {
		bi.OS = runtime.GOOS
	}
	if bi.Arch == "" {
		bi.Arch = runtime.GOARCH
	}

	// ldflags 주입이 누락된 개발 환경(go run 등)에서도 최소한의 버전 정보를 확보한다.
	if val, ok := readBuildInfo(); ok {
		for _, setting := range val.Settings {
			switch setting.Key {
			case "vcs.revision":
				if bi.Commit == "" || bi.Commit == unknown || bi.Commit == none {
					bi.Commit = setting.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" || bi.BuildDate == unknown {
					bi.BuildDate = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" {
					bi.DirtyBuild = true
				}
			}
		}
		if bi.Version == "" && val.Main.Version != "(devel)" {
			bi.Version = val.Main.Version
		}
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" || bi.Commit == none {
		bi.Commit = unknown
	}

	return bi
}

// Version 애플리케이션의 버전 문자열을 반환합니다.
func Version() string {
	return Get().Version
}
