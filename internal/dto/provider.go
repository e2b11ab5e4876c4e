package dto

// SaveProviderReq 新增或更新模型服务商
type SaveProviderReq struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
	Enabled bool   `json:"enabled"`
}
