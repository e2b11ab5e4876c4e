// Package fetcher 负责把直链指向的远程视频源下载到本地,供笔记任务处理。
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

const (
	defaultTimeout  = 10 * time.Minute
	defaultMaxBytes = int64(2) << 30
)

type Fetcher struct {
	client   *resty.Client
	maxBytes int64
}

func New(proxyAddr string) *Fetcher {
	client := resty.New().SetTimeout(defaultTimeout)
	if proxyAddr != "" {
		client.SetProxy(proxyAddr)
	}
	return &Fetcher{
		client:   client,
		maxBytes: defaultMaxBytes,
	}
}

// FetchToDir 下载 rawUrl 指向的文件到 destDir,返回本地路径。
// 文件名取链接路径的最后一段,已存在同名文件时加随机前缀避免覆盖。
func (f *Fetcher) FetchToDir(ctx context.Context, rawUrl, destDir string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawUrl))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnsupportedURL, "不支持的链接 Unsupported URL", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", apperrors.New(apperrors.CodeUnsupportedURL, "不支持的链接 Unsupported URL: "+parsed.Scheme)
	}

	if err = os.MkdirAll(destDir, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFetchFailed, "视频获取失败 Source fetch failed", err)
	}

	outputPath := filepath.Join(destDir, downloadFileName(parsed))
	if _, statErr := os.Stat(outputPath); statErr == nil {
		outputPath = filepath.Join(destDir, uuid.NewString()[:8]+"_"+filepath.Base(outputPath))
	}

	log.GetLogger().Info("开始下载视频源", zap.String("url", rawUrl), zap.String("output", outputPath))
	resp, err := f.client.R().
		SetContext(ctx).
		SetOutput(outputPath).
		Get(rawUrl)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeFetchFailed, "视频获取失败 Source fetch failed", err)
	}
	if resp.IsError() {
		_ = os.Remove(outputPath)
		return "", apperrors.New(apperrors.CodeFetchFailed, fmt.Sprintf("视频获取失败 Source fetch failed: status %d", resp.StatusCode()))
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "video/") && !strings.HasPrefix(contentType, "application/octet-stream") {
		log.GetLogger().Warn("下载内容类型异常,继续处理", zap.String("url", rawUrl), zap.String("content type", contentType))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeFetchFailed, "视频获取失败 Source fetch failed", err)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		_ = os.Remove(outputPath)
		return "", apperrors.New(apperrors.CodeFetchFailed, fmt.Sprintf("视频文件过大 Source file too large: %d bytes", info.Size()))
	}

	log.GetLogger().Info("视频源下载完成", zap.String("output", outputPath), zap.Int64("bytes", info.Size()))
	return outputPath, nil
}

func downloadFileName(parsed *url.URL) string {
	base := sanitizeFileName(filepath.Base(parsed.Path))
	if base == "" || base == "." || base == "/" {
		return "download_" + uuid.NewString()[:8] + ".mp4"
	}
	return base
}

// sanitizeFileName 替换会干扰 ffmpeg 命令行的字符。
func sanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '=', '?', '&', '#', '%', ' ':
			return '_'
		}
		return r
	}, name)
	return strings.Trim(cleaned, "_")
}
