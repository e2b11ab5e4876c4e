// Package response 定义统一的 JSON 应答信封:{error, msg, detail, data}。
// error 为 0 表示成功;业务失败同样返回 HTTP 200,由信封里的码区分。
package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

const successMsg = "成功 Success"

type Response struct {
	Error  int32  `json:"error"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data"`
}

// Success 以成功信封返回 data。
func Success(c *gin.Context, data any) {
	c.JSON(200, Response{Msg: successMsg, Data: data})
}

// ErrorResponse 把 err 转成错误信封返回。
func ErrorResponse(c *gin.Context, err error) {
	c.JSON(200, FromError(err))
}

// FromError 把任意 error 转成信封:AppError 取出码、消息和细节,
// 其余错误归到未知码。
func FromError(err error) Response {
	if err == nil {
		return Response{Msg: successMsg}
	}

	res := Response{
		Error: int32(apperrors.GetCode(err)),
		Msg:   apperrors.GetMessage(err),
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		res.Detail = appErr.Detail
	}
	return res
}
