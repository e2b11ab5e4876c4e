// Package log 提供全局 zap 日志器:JSON 文件日志加控制台摘要双写。
package log

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Acclerate/BiliNote/internal/appdirs"
)

const logFileName = "app.log"

// Logger 在 InitLogger 之后可用;测试里可直接替换成 zap.NewNop()。
var Logger *zap.Logger

var appDirsResolver = appdirs.Resolve

// InitLogger 构建双写日志器:文件核心记录 Debug 及以上的 JSON 行,
// 控制台核心只输出 Info 及以上。日志目录不可用属于部署错误,直接 panic。
func InitLogger() {
	logDir, err := ResolveLogDir()
	if err != nil {
		panic("无法解析日志目录: " + err.Error())
	}
	if err = os.MkdirAll(logDir, 0o755); err != nil {
		panic("无法创建日志目录: " + err.Error())
	}

	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		panic("无法打开日志文件: " + err.Error())
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zap.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), zap.InfoLevel),
	)

	Logger = zap.New(core, zap.AddCaller())
}

// ResolveLogDir 通过 appdirs 取日志目录,未配置时落到当前目录。
func ResolveLogDir() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	if logDir := strings.TrimSpace(dirs.LogDir); logDir != "" {
		return logDir, nil
	}
	return ".", nil
}

func GetLogger() *zap.Logger {
	return Logger
}
