package service

import (
	"os"
	"strings"

	"github.com/Acclerate/BiliNote/config"
	"github.com/Acclerate/BiliNote/internal/dto"
	"github.com/Acclerate/BiliNote/internal/media"
	apperrors "github.com/Acclerate/BiliNote/pkg/errors"
)

// SplitMedia 同步切分媒体,时长未超过阈值时返回单元素的原路径。
// 分段本身是 soft-fail,接口层面只校验入参和文件存在性。
func (s *Service) SplitMedia(req dto.SplitMediaReq) (*dto.SplitMediaResData, error) {
	videoPath := strings.TrimSpace(req.VideoPath)
	if videoPath == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "video_path 不能为空 video_path is required")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoNotFound, "视频文件不存在 Video file not found", err)
	}

	threshold := req.ThresholdSec
	if threshold <= 0 {
		threshold = config.Conf.Media.SegmentDurationSec
	}

	segments := media.SplitByDuration(videoPath, "", threshold)
	return &dto.SplitMediaResData{
		Segments: segments,
		Split:    len(segments) > 1,
	}, nil
}

// MediaInfo 探测媒体时长并按阈值预估分段数,不触发实际切分。
func (s *Service) MediaInfo(videoPath string, thresholdSec int) (*dto.MediaInfoResData, error) {
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "video_path 不能为空 video_path is required")
	}
	if _, err := os.Stat(videoPath); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVideoNotFound, "视频文件不存在 Video file not found", err)
	}

	duration, err := media.Duration(videoPath)
	if err != nil {
		return nil, err
	}
	if thresholdSec <= 0 {
		thresholdSec = config.Conf.Media.SegmentDurationSec
	}
	return &dto.MediaInfoResData{
		DurationSec:       duration,
		ThresholdSec:      thresholdSec,
		EstimatedSegments: media.PlannedSegments(duration, thresholdSec),
	}, nil
}
