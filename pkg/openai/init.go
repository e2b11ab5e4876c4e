package openai

import (
	"net/http"
	"net/url"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Acclerate/BiliNote/log"
)

type Client struct {
	client *openai.Client
}

func NewClient(baseUrl, apiKey, proxyAddr string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	// 总是配置自定义 HTTP Client 以设置代理
	transport := &http.Transport{}
	if proxyAddr != "" {
		proxyUrl, err := url.Parse(proxyAddr)
		if err != nil {
			log.GetLogger().Warn("代理地址不合法,忽略代理配置", zap.String("proxy", proxyAddr), zap.Error(err))
		} else {
			transport.Proxy = http.ProxyURL(proxyUrl)
		}
	}

	cfg.HTTPClient = &http.Client{
		Transport: transport,
		// 不设置超时,带多张图的笔记请求可能运行很久,由调用方用 context 控制
	}

	client := openai.NewClientWithConfig(cfg)
	return &Client{client: client}
}
