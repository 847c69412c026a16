package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = pkgerrors.New(pkgerrors.ErrNotFound, "暂无可导出的周进度")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 全部学生：每周一个 Sheet（Week 1 ~ Week 10），行为学生
//   - 单个学生：一个 Sheet，行为周次
type ExportService interface {
	ExportUpdates(ctx context.Context, actor Actor, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportUpdates(ctx context.Context, actor Actor, userID string) (*bytes.Buffer, string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, "", err
	}

	if userID != "" {
		return s.exportUser(ctx, userID)
	}

	updates, err := s.repo.WeeklyUpdate.ListAll(ctx, nil)
	if err != nil {
		s.logger.Error("查询周进度失败", zap.Error(err))
		return nil, "", err
	}
	if len(updates) == 0 {
		return nil, "", ErrExportNoData
	}

	byWeek := make(map[int][]model.WeeklyUpdate, model.WeekCount)
	for _, u := range updates {
		byWeek[u.Week] = append(byWeek[u.Week], u)
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := headerStyle(f)
	if err != nil {
		return nil, "", s.generateFailed(err)
	}

	for w := model.MinWeek; w <= model.MaxWeek; w++ {
		sheet := fmt.Sprintf("Week %d", w)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, "", s.generateFailed(err)
		}
		writeRow(f, sheet, 1, "Username", "Content", "Last Modified")
		f.SetCellStyle(sheet, "A1", "C1", header)
		f.SetColWidth(sheet, "A", "A", 16)
		f.SetColWidth(sheet, "B", "B", 80)
		f.SetColWidth(sheet, "C", "C", 22)

		// ListAll 已按用户名升序
		for i, u := range byWeek[w] {
			writeRow(f, sheet, i+2, usernameOf(&u), u.Content, u.LastModifiedAt.Format(time.DateTime))
		}
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", s.generateFailed(err)
	}
	return buf, fmt.Sprintf("weekly_updates_%s.xlsx", time.Now().Format("20060102")), nil
}

func (s *exportService) exportUser(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, "", err
	}

	updates, err := s.repo.WeeklyUpdate.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询周进度失败", zap.String("user_id", userID), zap.Error(err))
		return nil, "", err
	}
	if len(updates) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	// Sheet 名最长 31 字符
	sheet := user.Username
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", s.generateFailed(err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, "", s.generateFailed(err)
	}

	writeRow(f, sheet, 1, "Week", "Content", "Last Modified")
	f.SetCellStyle(sheet, "A1", "C1", header)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 80)
	f.SetColWidth(sheet, "C", "C", 22)
	for i, u := range updates {
		writeRow(f, sheet, i+2, u.Week, u.Content, u.LastModifiedAt.Format(time.DateTime))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", s.generateFailed(err)
	}
	return buf, fmt.Sprintf("weekly_updates_%s.xlsx", user.Username), nil
}

func (s *exportService) generateFailed(err error) error {
	s.logger.Error("生成 Excel 失败", zap.Error(err))
	return ErrExportGenerateFail
}

// ── 辅助函数 ──

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

func usernameOf(u *model.WeeklyUpdate) string {
	if u.User != nil {
		return u.User.Username
	}
	return u.UserID
}
