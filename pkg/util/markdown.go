package util

import (
	"regexp"
	"strings"
)

var markdownFenceRe = regexp.MustCompile("(?s)^\\s*```(?:markdown|md)?\\s*\\n(.*?)\\n?\\s*```\\s*$")

// StripMarkdownFence 去掉模型输出最外层的 ```markdown 代码块包裹
// 只有整段输出都被包裹时才剥离,正文内部的代码块保持原样
func StripMarkdownFence(text string) string {
	matches := markdownFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}
