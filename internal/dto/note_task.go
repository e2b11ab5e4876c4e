package dto

// CreateNoteTaskReq 创建笔记任务
type CreateNoteTaskReq struct {
	Title      string   `json:"title"`
	VideoPath  string   `json:"video_path"` // 本地文件或已上传文件,与 video_url 二选一
	VideoUrl   string   `json:"video_url"`  // 远程直链,任务执行时下载
	ProviderId string   `json:"provider_id"`
	Model      string   `json:"model"` // 覆盖服务商默认模型,可为空
	Segments   []any    `json:"segments"`
	Tags       []string `json:"tags"`
	Formats    []string `json:"formats"`
	Style      string   `json:"style"`
	Extras     string   `json:"extras"`
	Screenshot bool     `json:"screenshot"` // 允许模型插入 *Screenshot-MM:SS 标记
	Link       bool     `json:"link"`       // 章节标题附带原片时间戳
}

type CreateNoteTaskResData struct {
	TaskId string `json:"task_id"`
}

// GetNoteTaskResData 任务状态与生成结果
type GetNoteTaskResData struct {
	TaskId         string `json:"task_id"`
	Title          string `json:"title"`
	Status         int    `json:"status"`
	ProcessPercent uint8  `json:"process_percent"`
	StatusMsg      string `json:"status_msg"`
	FailReason     string `json:"fail_reason,omitempty"`
	FrameCount     int    `json:"frame_count"`
	SheetCount     int    `json:"sheet_count"`
	ImageCount     int    `json:"image_count"`
	Markdown       string `json:"markdown,omitempty"`
}

// NoteTaskProgressFrame websocket 进度帧
type NoteTaskProgressFrame struct {
	TaskId  string `json:"task_id"`
	Status  int    `json:"status"`
	Percent uint8  `json:"percent"`
	Message string `json:"message"`
}
