package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
	"github.com/Acclerate/BiliNote/pkg/util"
)

// maxAttachedImages 单次请求可附带的图片上限,超出部分从尾部截断
const maxAttachedImages = 20

// Summarizer 把转写片段与网格图组装成多模态请求并调用模型生成笔记。
// 首次请求失败且被判定为模型不支持图片输入时,自动改纯文本重试一次,
// 重试结果(无论成败)即为最终结果。
type Summarizer struct {
	completer      types.ChatCompleter
	model          string
	temperature    float32
	maxTokens      int
	visionKeywords []string
}

func NewSummarizer(completer types.ChatCompleter, model string) *Summarizer {
	return &Summarizer{
		completer:      completer,
		model:          model,
		temperature:    config.Conf.Llm.Temperature,
		maxTokens:      config.Conf.Llm.MaxTokens,
		visionKeywords: config.Conf.Llm.VisionErrorKeywords,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, src types.SummarizeSource) (string, error) {
	segments, err := types.NormalizeSegments(src.Segments)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidParams, "转写片段不合法 Invalid transcript segments", err)
	}

	images := src.ImageURLs
	if len(images) > maxAttachedImages {
		log.GetLogger().Warn("附带图片超出上限,从尾部截断",
			zap.Int("got", len(images)),
			zap.Int("max", maxAttachedImages))
		images = images[:maxAttachedImages]
	}

	req := types.ChatRequest{
		Model:       s.model,
		Prompt:      buildNotePrompt(src, segments),
		ImageURLs:   images,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}
	log.GetLogger().Info("发送笔记生成请求",
		zap.String("model", req.Model),
		zap.Int("segments", len(segments)),
		zap.Int("images", len(images)))

	result, err := s.completer.ChatCompletion(ctx, req)
	if err == nil {
		return result, nil
	}

	if len(images) > 0 && IsVisionUnsupported(err, s.visionKeywords) {
		log.GetLogger().Warn("模型不支持图片输入,去掉图片后重试一次",
			zap.String("model", req.Model),
			zap.Error(err))
		// 取消发生在重试开始前时直接中止,不再发起回退请求
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		req.ImageURLs = nil
		result, retryErr := s.completer.ChatCompletion(ctx, req)
		if retryErr != nil {
			s.logFailure(retryErr, len(segments), 0)
			return "", apperrors.Wrap(apperrors.CodeSummarizeFailed, "笔记生成失败 Summarization failed", retryErr)
		}
		return result, nil
	}

	s.logFailure(err, len(segments), len(images))
	return "", apperrors.Wrap(apperrors.CodeSummarizeFailed, "笔记生成失败 Summarization failed", err)
}

func (s *Summarizer) logFailure(err error, segmentCount, imageCount int) {
	log.GetLogger().Error("笔记生成失败",
		zap.String("model", s.model),
		zap.Int("segments", segmentCount),
		zap.Int("images", imageCount),
		zap.Error(err))
}

// IsVisionUnsupported 判断模型返回的错误是否指向"不支持图片输入"。
// 对错误文本做大小写不敏感的关键词子串匹配;上游错误形态五花八门,
// 这里只能尽力识别,关键词列表随配置下发。
func IsVisionUnsupported(err error, keywords []string) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

// buildNotePrompt 组装提示词:基础模板 + 标签/格式/风格等指令 + 按
// "MM:SS - 文本" 逐行排布的字幕。
func buildNotePrompt(src types.SummarizeSource, segments []types.TranscriptSegment) string {
	segmentLines := lo.Map(segments, func(seg types.TranscriptSegment, _ int) string {
		return fmt.Sprintf("%s - %s", util.FormatClock(seg.Start), strings.TrimSpace(seg.Text))
	})

	var directives []string
	if len(src.Tags) > 0 {
		directives = append(directives, "视频标签："+strings.Join(src.Tags, "、"))
	}
	if len(src.Formats) > 0 {
		directives = append(directives, "笔记格式要求："+strings.Join(src.Formats, "、"))
	}
	if src.Style != "" {
		directives = append(directives, "笔记风格："+src.Style)
	}
	if src.Extras != "" {
		directives = append(directives, "补充要求："+src.Extras)
	}
	if src.Screenshot {
		directives = append(directives, types.ScreenshotDirective)
	}
	if src.Link {
		directives = append(directives, types.LinkDirective)
	}

	directiveBlock := ""
	if len(directives) > 0 {
		directiveBlock = strings.Join(directives, "\n") + "\n"
	}
	return fmt.Sprintf(types.NoteBasePrompt, src.Title, directiveBlock, strings.Join(segmentLines, "\n"))
}
