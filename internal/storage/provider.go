package storage

import (
	"errors"
	"strings"

	"github.com/Acclerate/BiliNote/internal/types"
	"github.com/Acclerate/BiliNote/log"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SaveProvider(provider *types.Provider) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(provider).Error
}

func GetProvider(id string) (*types.Provider, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var provider types.Provider
	if err := DB.Where("id = ?", id).First(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func ListProviders() ([]types.Provider, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var providers []types.Provider
	if err := DB.Order("create_time asc").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func DeleteProvider(id string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("id = ?", id).Delete(&types.Provider{}).Error
}

// SeedDefaultProviders 初始化内置服务商，已存在则跳过
// Idempotent: existing rows (including user edits) are left untouched.
func SeedDefaultProviders() error {
	if DB == nil {
		return errors.New("database not initialized")
	}

	defaults := []types.Provider{
		{Id: "openai", Name: "OpenAI", BaseUrl: "https://api.openai.com/v1", Model: "gpt-4o", Enabled: true},
		{Id: "deepseek", Name: "DeepSeek", BaseUrl: "https://api.deepseek.com/v1", Model: "deepseek-chat", Enabled: false},
		{Id: "qwen", Name: "通义千问", BaseUrl: "https://dashscope.aliyuncs.com/compatible-mode/v1", Model: "qwen-vl-max", Enabled: false},
	}

	seeded := 0
	for i := range defaults {
		p := defaults[i]
		var existing types.Provider
		err := DB.Where("id = ?", p.Id).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err = DB.Create(&p).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		log.GetLogger().Info("内置服务商初始化完成 Default providers seeded", zap.Int("count", seeded))
	}
	return nil
}

// ResolveProviderEndpoint 解析任务应使用的服务商连接参数。
// providerId 为空时回退到配置文件中的 [llm] 设置。
func ResolveProviderEndpoint(providerId, fallbackBaseUrl, fallbackApiKey, fallbackModel string) (baseUrl, apiKey, model string, err error) {
	if strings.TrimSpace(providerId) == "" {
		return fallbackBaseUrl, fallbackApiKey, fallbackModel, nil
	}

	provider, err := GetProvider(providerId)
	if err != nil {
		return "", "", "", err
	}
	if !provider.Enabled {
		return "", "", "", errors.New("provider disabled: " + providerId)
	}

	model = provider.Model
	if model == "" {
		model = fallbackModel
	}
	return provider.BaseUrl, provider.ApiKey, model, nil
}
