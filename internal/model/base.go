package model

import "time"

// BaseModel 通用时间戳字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// 周次范围
const (
	MinWeek   = 1
	MaxWeek   = 10
	WeekCount = MaxWeek - MinWeek + 1
)

// ValidWeek 判断周次是否在 [MinWeek, MaxWeek]
func ValidWeek(week int) bool {
	return week >= MinWeek && week <= MaxWeek
}
