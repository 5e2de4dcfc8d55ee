package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var nonDigitPattern = regexp.MustCompile(`[^\d]`)

// NormalizeText 셀 문자열 정리
// 맥에서 저장된 NFD 한글을 NFC 로 합치고 전각 영숫자(Ｏ, １２)를 반각으로 접은 뒤 앞뒤 공백을 제거한다.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = width.Fold.String(text)
	return strings.TrimSpace(text)
}

// onlyDigits 숫자 이외 문자를 모두 제거
func onlyDigits(text string) string {
	return nonDigitPattern.ReplaceAllString(text, "")
}
