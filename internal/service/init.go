package service

import (
	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/storage"
	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"
	"github.com/Acclerate/BiliNote/pkg/fetcher"
	"github.com/Acclerate/BiliNote/pkg/openai"

	"go.uber.org/zap"
)

type Service struct {
	ChatCompleter types.ChatCompleter
	Fetcher       *fetcher.Fetcher
	// Submitter 任务投递入口,由启动层按运行模式注入(进程内 runner 或 Redis 队列)
	Submitter types.TaskSubmitter
}

func NewService() *Service {
	chatCompleter := openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, config.Conf.App.Proxy)
	log.GetLogger().Info("当前选择的模型服务",
		zap.String("base_url", config.Conf.Llm.BaseUrl),
		zap.String("model", config.Conf.Llm.Model))

	return &Service{
		ChatCompleter: chatCompleter,
		Fetcher:       fetcher.New(config.Conf.App.Proxy),
	}
}

// completerForTask 解析任务应使用的模型服务。指定了 providerId 且与默认配置
// 不同源时按存储的服务商参数新建客户端,否则复用默认客户端。
func (s *Service) completerForTask(providerId string) (types.ChatCompleter, string, error) {
	baseUrl, apiKey, model, err := storage.ResolveProviderEndpoint(
		providerId,
		config.Conf.Llm.BaseUrl,
		config.Conf.Llm.ApiKey,
		config.Conf.Llm.Model,
	)
	if err != nil {
		return nil, "", err
	}

	if baseUrl == config.Conf.Llm.BaseUrl && apiKey == config.Conf.Llm.ApiKey {
		return s.ChatCompleter, model, nil
	}
	return openai.NewClient(baseUrl, apiKey, config.Conf.App.Proxy), model, nil
}
