package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/dto"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/repository"
)

// DashboardService 管理端提交统计
type DashboardService interface {
	// Stats week 为 0 时不计算单周明细
	Stats(ctx context.Context, actor Actor, week int) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) Stats(ctx context.Context, actor Actor, week int) (*dto.DashboardResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if week != 0 && !model.ValidWeek(week) {
		return nil, ErrWeekOutOfRange
	}

	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}
	admins, err := s.repo.User.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Error("查询管理员列表失败", zap.Error(err))
		return nil, err
	}
	updates, err := s.repo.WeeklyUpdate.ListAll(ctx, nil)
	if err != nil {
		s.logger.Error("查询周进度失败", zap.Error(err))
		return nil, err
	}

	return BuildDashboard(students, len(admins), updates, week), nil
}

// BuildDashboard 根据学生名单与全部提交计算看板数据
// 仅统计学生的提交
func BuildDashboard(students []model.User, adminCount int, updates []model.WeeklyUpdate, week int) *dto.DashboardResponse {
	names := make(map[string]string, len(students))
	for _, u := range students {
		names[u.UserID] = u.Username
	}

	weeksByUser := make(map[string]map[int]bool)
	submitters := make([]int, model.WeekCount+1)
	studentUpdates := 0
	for _, up := range updates {
		if _, ok := names[up.UserID]; !ok {
			continue
		}
		if weeksByUser[up.UserID] == nil {
			weeksByUser[up.UserID] = make(map[int]bool)
		}
		if weeksByUser[up.UserID][up.Week] {
			continue
		}
		weeksByUser[up.UserID][up.Week] = true
		if model.ValidWeek(up.Week) {
			submitters[up.Week]++
		}
		studentUpdates++
	}

	resp := &dto.DashboardResponse{
		TotalUsers:        len(students) + adminCount,
		TotalStudents:     len(students),
		TotalAdmins:       adminCount,
		TotalUpdates:      studentUpdates,
		WeekStats:         make([]dto.WeekStat, 0, model.WeekCount),
		SelectedWeek:      week,
		SelectedWeekNames: []string{},
		NoSubmissions:     []string{},
	}
	for w := model.MinWeek; w <= model.MaxWeek; w++ {
		resp.WeekStats = append(resp.WeekStats, dto.WeekStat{Week: w, Submitters: submitters[w]})
	}

	completed := 0
	for _, u := range students {
		weeks := weeksByUser[u.UserID]
		switch {
		case len(weeks) == 0:
			resp.NoSubmissions = append(resp.NoSubmissions, u.Username)
		case len(weeks) >= model.WeekCount:
			completed++
		}
		if week != 0 && weeks[week] {
			resp.SelectedWeekNames = append(resp.SelectedWeekNames, u.Username)
		}
	}
	sort.Strings(resp.NoSubmissions)
	sort.Strings(resp.SelectedWeekNames)

	if n := len(students); n > 0 {
		resp.CompletedAllPercent = percent(completed, n)
		resp.AvgWeeksPerStudent = round2(float64(studentUpdates) / float64(n))
		if week != 0 {
			resp.SelectedWeekPercent = percent(len(resp.SelectedWeekNames), n)
		}
	}
	return resp
}

func percent(part, total int) float64 {
	return round2(float64(part) * 100 / float64(total))
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
