package types

// Note task status values
const (
	NoteTaskStatusPending = 0
	NoteTaskStatusRunning = 1
	NoteTaskStatusSuccess = 2
	NoteTaskStatusFailed  = 3
)

// NoteTask 笔记生成任务
type NoteTask struct {
	Id             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskId         string `gorm:"index;size:64" json:"task_id"`
	Title          string `json:"title"`
	VideoPath      string `json:"video_path"`
	VideoUrl       string `json:"video_url"`
	ProviderId     string `gorm:"size:64" json:"provider_id"`
	Model          string `json:"model"`
	Status         int    `json:"status"`
	ProcessPercent uint8  `json:"process_percent"`
	StatusMsg      string `json:"status_msg"`
	FailReason     string `json:"fail_reason"`
	SourceJson     string `gorm:"type:text" json:"-"`
	FrameCount     int    `json:"frame_count"`
	SheetCount     int    `json:"sheet_count"`
	ImageCount     int    `json:"image_count"`
	SegmentCount   int    `json:"segment_count"`
	Markdown       string `gorm:"type:text" json:"markdown"`
	CreateTime     int64  `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime     int64  `gorm:"autoUpdateTime" json:"update_time"`
}

// Provider 大模型服务商配置，持久化于本地库
type Provider struct {
	Id         string `gorm:"primaryKey;size:64" json:"id"`
	Name       string `json:"name"`
	BaseUrl    string `json:"base_url"`
	ApiKey     string `json:"api_key"`
	Model      string `json:"model"`
	Enabled    bool   `json:"enabled"`
	CreateTime int64  `gorm:"autoCreateTime" json:"create_time"`
	UpdateTime int64  `gorm:"autoUpdateTime" json:"update_time"`
}
