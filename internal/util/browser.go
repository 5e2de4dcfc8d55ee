package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommand 운영체제별 기본 브라우저 실행 명령
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// cmd /c start 보다 rundll32 가 구버전 Windows 에서도 안정적
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenBrowser 기본 브라우저로 url 열기
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// OpenBrowserWithFallback 기본 방식이 실패하면 대체 브라우저를 차례로 시도
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}

	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", url).Start()
	case "linux":
		browsers := []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
		for _, browser := range browsers {
			if err := exec.Command(browser, url).Start(); err == nil {
				return nil
			}
		}
	}

	return err
}

// FindAvailablePort startPort 부터 limit 개 포트 중 바로 열 수 있는 첫 번째
func FindAvailablePort(startPort, limit int) (int, error) {
	for port := startPort; port < startPort+limit && port <= 65535; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no available port in %d..%d", startPort, startPort+limit-1)
}
