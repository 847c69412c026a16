package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
	pkgerrors "github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/pkg/errors"
)

// ── 测试辅助 ──

func setupTestSubmissionService() (SubmissionService, *mockRepos) {
	repo, mocks := newMockRepository()
	logger := zap.NewNop()
	audit := NewAuditService(repo, logger)
	svc := NewSubmissionService(repo, NewEditPermissionService(repo, audit, logger), audit, logger)
	return svc, mocks
}

func intPtr(i int) *int { return &i }

// ── AvailableWeeks ──

func TestAvailableWeeks(t *testing.T) {
	tests := []struct {
		name      string
		submitted []int
		allow     bool
		want      []int
	}{
		{"none submitted", nil, false, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"some submitted", []int{1, 3, 10}, false, []int{2, 4, 5, 6, 7, 8, 9}},
		{"all submitted", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, false, []int{}},
		{"edits allowed", []int{1, 2, 3}, true, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AvailableWeeks(tt.submitted, tt.allow); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestSubmissionService_ListAvailableWeeks(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	for _, w := range []int{1, 3} {
		if _, err := svc.SubmitOrUpdate(ctx, student, w, "progress"); err != nil {
			t.Fatalf("提交第 %d 周失败: %v", w, err)
		}
	}

	result, err := svc.ListAvailableWeeks(ctx, student)
	if err != nil {
		t.Fatalf("ListAvailableWeeks 应成功: %v", err)
	}
	if want := []int{2, 4, 5, 6, 7, 8, 9, 10}; !reflect.DeepEqual(result.Weeks, want) {
		t.Errorf("期望 %v，实际 %v", want, result.Weeks)
	}
	if result.AllowEdits || result.AllSubmitted {
		t.Errorf("标志位不符: %+v", result)
	}

	mocks.setAllowEdits(true)
	result, _ = svc.ListAvailableWeeks(ctx, student)
	if len(result.Weeks) != 10 || !result.AllowEdits {
		t.Errorf("编辑权限开启时应返回全部 10 周，实际 %v", result.Weeks)
	}
}

func TestSubmissionService_ListAvailableWeeks_AllSubmitted(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	for w := 1; w <= 10; w++ {
		svc.SubmitOrUpdate(ctx, student, w, "progress")
	}
	result, err := svc.ListAvailableWeeks(ctx, student)
	if err != nil {
		t.Fatalf("ListAvailableWeeks 应成功: %v", err)
	}
	if len(result.Weeks) != 0 || !result.AllSubmitted {
		t.Errorf("全部提交后应无可选周次，实际 %+v", result)
	}
}

func TestSubmissionService_ListAvailableWeeks_AdminForbidden(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)

	if _, err := svc.ListAvailableWeeks(context.Background(), admin); !errors.Is(err, ErrStudentOnly) {
		t.Errorf("期望 ErrStudentOnly，实际: %v", err)
	}
}

// ── SubmitOrUpdate ──

func TestSubmissionService_Submit_LockedWhenEditsOff(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	result, err := svc.SubmitOrUpdate(ctx, student, 2, "first")
	if err != nil {
		t.Fatalf("首次提交应成功: %v", err)
	}
	if !result.Created {
		t.Error("首次提交应为新建")
	}

	_, err = svc.SubmitOrUpdate(ctx, student, 2, "second")
	if !errors.Is(err, ErrWeekLocked) {
		t.Fatalf("编辑权限关闭时重复提交期望 ErrWeekLocked，实际: %v", err)
	}
	if pkgerrors.KindOf(err) != pkgerrors.ErrConflict {
		t.Error("ErrWeekLocked 应为 Conflict 类错误")
	}

	stored, _ := mocks.updates.GetByUserAndWeek(ctx, student.UserID, 2)
	if stored.Content != "first" {
		t.Errorf("内容不应被修改，实际=%q", stored.Content)
	}
}

func TestSubmissionService_Submit_OverwriteWhenEditsOn(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	svc.SubmitOrUpdate(ctx, student, 2, "first")
	mocks.setAllowEdits(true)

	result, err := svc.SubmitOrUpdate(ctx, student, 2, "second")
	if err != nil {
		t.Fatalf("编辑权限开启时覆盖应成功: %v", err)
	}
	if result.Created {
		t.Error("覆盖已有提交时 Created 应为 false")
	}

	stored, _ := mocks.updates.GetByUserAndWeek(ctx, student.UserID, 2)
	if stored.Content != "second" {
		t.Errorf("期望内容=second，实际=%q", stored.Content)
	}
	if n := len(mocks.updates.updates); n != 1 {
		t.Errorf("同一 (学生, 周) 应只有一条记录，实际 %d", n)
	}
}

func TestSubmissionService_Submit_Validation(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	if _, err := svc.SubmitOrUpdate(ctx, student, 0, "x"); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("周次 0 期望 ErrWeekOutOfRange，实际: %v", err)
	}
	if _, err := svc.SubmitOrUpdate(ctx, student, 11, "x"); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("周次 11 期望 ErrWeekOutOfRange，实际: %v", err)
	}
	if _, err := svc.SubmitOrUpdate(ctx, student, 1, "  \n\t "); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("空白内容期望 ErrEmptyContent，实际: %v", err)
	}
	if len(mocks.updates.updates) != 0 {
		t.Error("校验失败不应写入")
	}
}

func TestSubmissionService_Submit_DeletedUser(t *testing.T) {
	svc, _ := setupTestSubmissionService()
	ghost := Actor{UserID: "uid-ghost", Username: "AIE23009", Role: model.RoleStudent}

	if _, err := svc.SubmitOrUpdate(context.Background(), ghost, 1, "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("用户不存在时期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 查询 ──

func TestSubmissionService_ListAll(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	a := mocks.addUser("AIE23002", model.RoleStudent)
	b := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	svc.SubmitOrUpdate(ctx, a, 1, "a1")
	svc.SubmitOrUpdate(ctx, b, 2, "b2")
	svc.SubmitOrUpdate(ctx, b, 1, "b1")

	list, err := svc.ListAll(ctx, admin, nil)
	if err != nil {
		t.Fatalf("ListAll 应成功: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(list))
	}
	if list[0].Username != "AIE23001" || list[0].Week != 1 || list[2].Username != "AIE23002" {
		t.Errorf("应按用户名、周次升序: %+v", list)
	}

	week1, _ := svc.ListAll(ctx, admin, intPtr(1))
	if len(week1) != 2 {
		t.Errorf("按周过滤期望 2 条，实际 %d", len(week1))
	}

	if _, err := svc.ListAll(ctx, b, nil); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("学生调用期望 ErrAdminOnly，实际: %v", err)
	}
}

func TestSubmissionService_ListByUser(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	svc.SubmitOrUpdate(ctx, student, 4, "w4")
	svc.SubmitOrUpdate(ctx, student, 2, "w2")

	list, err := svc.ListByUser(ctx, admin, student.UserID)
	if err != nil {
		t.Fatalf("ListByUser 应成功: %v", err)
	}
	if len(list) != 2 || list[0].Week != 2 || list[0].Username != "AIE23001" {
		t.Errorf("结果不符: %+v", list)
	}

	if _, err := svc.ListByUser(ctx, admin, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── AdminEdit ──

func TestSubmissionService_AdminEdit_IgnoresFlag(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	student := mocks.addUser("AIE23001", model.RoleStudent)
	ctx := context.Background()

	svc.SubmitOrUpdate(ctx, student, 5, "original")

	result, err := svc.AdminEdit(ctx, admin, student.UserID, 5, "corrected")
	if err != nil {
		t.Fatalf("AdminEdit 应成功: %v", err)
	}
	if result.Content != "corrected" {
		t.Errorf("期望内容=corrected，实际=%q", result.Content)
	}

	if _, err := svc.AdminEdit(ctx, admin, student.UserID, 6, "x"); !errors.Is(err, ErrUpdateNotFound) {
		t.Errorf("未提交的周期望 ErrUpdateNotFound，实际: %v", err)
	}
}

// ── 清空 ──

func TestSubmissionService_ClearWeekForAll_ReopensWeek(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	s1 := mocks.addUser("AIE23001", model.RoleStudent)
	s2 := mocks.addUser("AIE23002", model.RoleStudent)
	ctx := context.Background()

	for _, s := range []Actor{s1, s2} {
		svc.SubmitOrUpdate(ctx, s, 3, "w3")
		svc.SubmitOrUpdate(ctx, s, 4, "w4")
	}

	n, err := svc.ClearWeekForAll(ctx, admin, 3)
	if err != nil {
		t.Fatalf("ClearWeekForAll 应成功: %v", err)
	}
	if n != 2 {
		t.Errorf("期望删除 2 条，实际 %d", n)
	}

	for _, s := range []Actor{s1, s2} {
		result, _ := svc.ListAvailableWeeks(ctx, s)
		found := false
		for _, w := range result.Weeks {
			if w == 3 {
				found = true
			}
			if w == 4 {
				t.Errorf("%s 第 4 周不应重新开放", s.Username)
			}
		}
		if !found {
			t.Errorf("%s 第 3 周应重新开放", s.Username)
		}
	}

	if actions := mocks.auditLog.actions(); len(actions) != 1 || actions[0] != model.AuditClearWeekForAll {
		t.Errorf("期望写入 clear_week_for_all 审计，实际: %v", actions)
	}
}

func TestSubmissionService_ClearOperations(t *testing.T) {
	svc, mocks := setupTestSubmissionService()
	admin := mocks.addUser("admin", model.RoleAdmin)
	s1 := mocks.addUser("AIE23001", model.RoleStudent)
	s2 := mocks.addUser("AIE23002", model.RoleStudent)
	ctx := context.Background()

	for w := 1; w <= 3; w++ {
		svc.SubmitOrUpdate(ctx, s1, w, "x")
		svc.SubmitOrUpdate(ctx, s2, w, "x")
	}

	if n, err := svc.ClearWeekForUser(ctx, admin, s1.UserID, 1); err != nil || n != 1 {
		t.Errorf("ClearWeekForUser 期望删除 1 条，实际 n=%d err=%v", n, err)
	}
	// 幂等：再次清空不报错
	if n, err := svc.ClearWeekForUser(ctx, admin, s1.UserID, 1); err != nil || n != 0 {
		t.Errorf("重复清空期望 n=0 且无错误，实际 n=%d err=%v", n, err)
	}
	if n, err := svc.ClearUser(ctx, admin, s1.UserID); err != nil || n != 2 {
		t.Errorf("ClearUser 期望删除 2 条，实际 n=%d err=%v", n, err)
	}
	if n, err := svc.ClearAll(ctx, admin); err != nil || n != 3 {
		t.Errorf("ClearAll 期望删除 3 条，实际 n=%d err=%v", n, err)
	}
	if len(mocks.updates.updates) != 0 {
		t.Error("ClearAll 后不应残留记录")
	}
	if _, err := svc.ClearWeekForAll(ctx, admin, 11); !errors.Is(err, ErrWeekOutOfRange) {
		t.Errorf("期望 ErrWeekOutOfRange，实际: %v", err)
	}
	if _, err := svc.ClearAll(ctx, s1); !errors.Is(err, ErrAdminOnly) {
		t.Errorf("学生调用期望 ErrAdminOnly，实际: %v", err)
	}
	if n := len(mocks.auditLog.logs); n != 4 {
		t.Errorf("期望 4 条审计记录，实际 %d", n)
	}
}
