package openai

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Acclerate/BiliNote/internal/types"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// ChatCompletion 发送单条用户消息并返回首个 choice 的正文(去除首尾空白)。
// 带图片时消息内容为一个文本块加若干 image_url 块,渲染精度固定为 auto。
func (c *Client) ChatCompletion(ctx context.Context, req types.ChatRequest) (string, error) {
	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.ImageURLs) > 0 {
		parts := make([]openai.ChatMessagePart, 0, len(req.ImageURLs)+1)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		})
		for _, imageUrl := range req.ImageURLs {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imageUrl,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
		message.MultiContent = parts
	} else {
		message.Content = req.Prompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeEmptyCompletion, "模型未返回内容 Empty completion returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
