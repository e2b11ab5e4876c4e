package dto

// SplitMediaReq 同步切分媒体文件,供外部转写服务处理超长视频
type SplitMediaReq struct {
	VideoPath    string `json:"video_path"`
	ThresholdSec int    `json:"threshold_sec"` // 为空时使用配置的 segment_duration_sec
}

type SplitMediaResData struct {
	Segments []string `json:"segments"`
	Split    bool     `json:"split"` // false 表示未达阈值或切分降级,原样返回输入
}

// MediaInfoResData 探测结果与按当前阈值的分段预估
type MediaInfoResData struct {
	DurationSec       float64 `json:"duration_sec"`
	ThresholdSec      int     `json:"threshold_sec"`
	EstimatedSegments int     `json:"estimated_segments"`
}
