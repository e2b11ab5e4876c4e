// Package errors 定义带错误码的结构化错误,接口层据此生成统一的响应体。
// 错误码按业务域分段,见下方常量分组。
package errors

import (
	"errors"
	"fmt"
)

const (
	// 通用与请求参数 (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// 媒体处理 (1100-1199)
	CodeMediaProcessing = 1100
	CodeMediaProbe      = 1101
	CodeFrameExtract    = 1102
	CodeSheetCompose    = 1103
	CodeImageEncode     = 1104
	CodeVideoNotFound   = 1105

	// 笔记生成 (1200-1299)
	CodeSummarizeFailed   = 1200
	CodeEmptyCompletion   = 1201
	CodeVisionUnsupported = 1202
	CodeLLMQuotaExceeded  = 1203

	// 源获取 (1300-1399)
	CodeFetchFailed    = 1300
	CodeUnsupportedURL = 1301

	// 存储 (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502

	// 模型服务商 (1600-1699)
	CodeProviderNotFound = 1600
	CodeProviderDisabled = 1601
)

// AppError 业务错误:码 + 双语消息,Detail 供接口返回补充上下文,
// Cause 保留底层错误用于日志与 errors.Is/As 链。
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 在底层错误上挂业务码。
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// WrapWithDetail 同 Wrap,另带给调用方看的细节信息。
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Detail: detail, Cause: cause}
}

// asAppError 在错误链上找最近的 AppError。
func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is 判断错误链上是否有指定业务码的 AppError。
func Is(err error, code int) bool {
	appErr, ok := asAppError(err)
	return ok && appErr.Code == code
}

// GetCode 取业务码,非 AppError 一律视为 CodeUnknown。
func GetCode(err error) int {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage 取对外消息,非 AppError 退回原始错误文本。
func GetMessage(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// 预置错误目录,覆盖面比当前调用点更宽,新路径直接取用即可。
var (
	ErrInvalidParams = New(CodeInvalidParams, "参数错误 Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "资源不存在 Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "未授权 Unauthorized")

	// 媒体处理
	ErrMediaProcessing = New(CodeMediaProcessing, "视频处理失败 Media processing failed")
	ErrMediaProbe      = New(CodeMediaProbe, "视频探测失败 Media probe failed")
	ErrFrameExtract    = New(CodeFrameExtract, "视频截图失败 Frame extraction failed")
	ErrSheetCompose    = New(CodeSheetCompose, "拼图生成失败 Contact sheet composition failed")
	ErrImageEncode     = New(CodeImageEncode, "图片编码失败 Image encoding failed")
	ErrVideoNotFound   = New(CodeVideoNotFound, "视频文件不存在 Video file not found")

	// 笔记生成
	ErrSummarizeFailed   = New(CodeSummarizeFailed, "笔记生成失败 Summarization failed")
	ErrEmptyCompletion   = New(CodeEmptyCompletion, "模型未返回内容 Empty completion returned")
	ErrVisionUnsupported = New(CodeVisionUnsupported, "模型不支持图片输入 Vision input unsupported")
	ErrLLMQuotaExceeded  = New(CodeLLMQuotaExceeded, "LLM配额耗尽 LLM quota exceeded")

	// 源获取
	ErrFetchFailed    = New(CodeFetchFailed, "视频获取失败 Source fetch failed")
	ErrUnsupportedURL = New(CodeUnsupportedURL, "不支持的链接 Unsupported URL")

	// 存储
	ErrDBError      = New(CodeDBError, "数据库错误 Database error")
	ErrFileNotFound = New(CodeFileNotFound, "文件不存在 File not found")

	// 模型服务商
	ErrProviderNotFound = New(CodeProviderNotFound, "模型服务商不存在 Provider not found")
	ErrProviderDisabled = New(CodeProviderDisabled, "模型服务商已禁用 Provider disabled")
)
