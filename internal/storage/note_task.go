package storage

import (
	"errors"

	"github.com/Acclerate/BiliNote/internal/types"

	"gorm.io/gorm"
)

func SaveNoteTask(task *types.NoteTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert by TaskId: the primary key is the auto-increment Id, so look the
	// row up first and preserve the Id on update.
	var existing types.NoteTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetNoteTask(taskId string) (*types.NoteTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.NoteTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetNoteTaskHistory(limit int) ([]types.NoteTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.NoteTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteNoteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.NoteTask{}).Error
}

// MarkStaleTasks marks all "running" tasks as "failed".
// This should be called on server startup to clean up zombie tasks
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.NoteTask{}).
		Where("status = ?", types.NoteTaskStatusRunning).
		Updates(map[string]interface{}{
			"status":      types.NoteTaskStatusFailed,
			"fail_reason": "服务重启，任务被中断 Task interrupted by server restart",
			"status_msg":  "任务超时/中断 Task Timeout/Interrupted",
		})
	return result.RowsAffected, result.Error
}
