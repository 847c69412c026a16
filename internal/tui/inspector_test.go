package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

type fakeSource struct {
	users   []model.User
	updates []model.WeeklyUpdate
	err     error
}

func (f *fakeSource) ListUsers(context.Context) ([]model.User, error) { return f.users, f.err }
func (f *fakeSource) ListUpdates(context.Context) ([]model.WeeklyUpdate, error) {
	return f.updates, f.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd 同步执行 Cmd 并把结果回送给模型
func runCmd(t *testing.T, m *Inspector, cmd tea.Cmd) *Inspector {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(*Inspector)
}

func sampleSource() *fakeSource {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	alice := model.User{UserID: "u1", Username: "AIE23001", Role: model.RoleStudent}
	alice.CreatedAt = now
	return &fakeSource{
		users: []model.User{alice},
		updates: []model.WeeklyUpdate{
			{UserID: "u1", Week: 2, Content: "finished\nbackprop notes", LastModifiedAt: now, User: &alice},
		},
	}
}

func TestInspector_ViewUsers(t *testing.T) {
	m := NewInspector(sampleSource())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	next, cmd := m.Update(key("enter"))
	m = runCmd(t, next.(*Inspector), cmd)

	if m.state != stateUsers {
		t.Fatalf("期望进入用户视图，实际 state=%d", m.state)
	}
	if view := m.View(); !strings.Contains(view, "AIE23001") {
		t.Errorf("用户视图应包含用户名，实际:\n%s", view)
	}

	next, _ = m.Update(key("esc"))
	if next.(*Inspector).state != stateMenu {
		t.Error("esc 应返回菜单")
	}
}

func TestInspector_ViewUpdates(t *testing.T) {
	m := NewInspector(sampleSource())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(key("down"))

	next, cmd := m.Update(key("enter"))
	m = runCmd(t, next.(*Inspector), cmd)

	if m.state != stateUpdates {
		t.Fatalf("期望进入周进度视图，实际 state=%d", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "finished backprop notes") {
		t.Errorf("内容中的换行应被压平，实际:\n%s", view)
	}
}

func TestInspector_LoadError(t *testing.T) {
	m := NewInspector(&fakeSource{err: errors.New("db down")})

	next, cmd := m.Update(key("enter"))
	m = runCmd(t, next.(*Inspector), cmd)

	if !strings.Contains(m.View(), "db down") {
		t.Errorf("应显示加载错误，实际:\n%s", m.View())
	}
}

func TestInspector_QuitFromMenu(t *testing.T) {
	m := NewInspector(&fakeSource{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q 应返回退出命令")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("期望 tea.QuitMsg")
	}
}

func TestRenderEmpty(t *testing.T) {
	if !strings.Contains(RenderUsers(nil), "暂无用户") {
		t.Error("空用户列表应有提示")
	}
	if !strings.Contains(RenderUpdates(nil), "暂无提交") {
		t.Error("空提交列表应有提示")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("短字符串不应截断，实际 %q", got)
	}
	if got := truncate(strings.Repeat("周", 10), 5); got != "周周周周…" {
		t.Errorf("截断结果错误: %q", got)
	}
}
