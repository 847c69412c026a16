// Package tui 提供 portalctl inspect 使用的终端检视器。
//
// 基于 bubbletea（Elm 架构）：主菜单选择后异步加载数据，
// 结果以纯文本表格渲染，esc 返回菜单。
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ArekatlaNishanthchowdary/deep-learning-progress-portal/internal/model"
)

// DataSource 检视器读取的数据
type DataSource interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUpdates(ctx context.Context) ([]model.WeeklyUpdate, error)
}

type viewState int

const (
	stateMenu viewState = iota
	stateUsers
	stateUpdates
)

const loadTimeout = 10 * time.Second

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// menuItem 实现 list.Item
type menuItem struct {
	title string
	desc  string
	next  viewState
	quit  bool
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// 数据加载完成
type usersLoadedMsg struct {
	users []model.User
	err   error
}

type updatesLoadedMsg struct {
	updates []model.WeeklyUpdate
	err     error
}

// Inspector 检视器状态
type Inspector struct {
	src   DataSource
	state viewState
	menu  list.Model

	loading bool
	users   []model.User
	updates []model.WeeklyUpdate
	err     error
}

// NewInspector 创建检视器
func NewInspector(src DataSource) *Inspector {
	items := []list.Item{
		menuItem{title: "查看用户", desc: "全部用户及角色", next: stateUsers},
		menuItem{title: "查看周进度", desc: "全部提交（含用户名）", next: stateUpdates},
		menuItem{title: "退出", desc: "离开检视器", quit: true},
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "进度门户数据检视"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	return &Inspector{src: src, state: stateMenu, menu: menu}
}

// Run 启动全屏检视器，退出时返回
func Run(src DataSource) error {
	_, err := tea.NewProgram(NewInspector(src), tea.WithAltScreen()).Run()
	return err
}

// Init 实现 tea.Model
func (m *Inspector) Init() tea.Cmd { return nil }

// Update 实现 tea.Model
func (m *Inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menu.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case usersLoadedMsg:
		m.loading = false
		m.users, m.err = msg.users, msg.err
		return m, nil

	case updatesLoadedMsg:
		m.loading = false
		m.updates, m.err = msg.updates, msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state == stateMenu {
				return m, tea.Quit
			}
		case "esc":
			if m.state != stateMenu {
				m.state = stateMenu
				m.err = nil
				return m, nil
			}
		case "enter":
			if m.state == stateMenu {
				return m.selectItem()
			}
		}
	}

	if m.state != stateMenu {
		return m, nil
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Inspector) selectItem() (tea.Model, tea.Cmd) {
	item, ok := m.menu.SelectedItem().(menuItem)
	if !ok {
		return m, nil
	}
	if item.quit {
		return m, tea.Quit
	}

	m.state = item.next
	m.loading = true
	m.err = nil
	switch item.next {
	case stateUsers:
		return m, m.loadUsers
	case stateUpdates:
		return m, m.loadUpdates
	}
	return m, nil
}

func (m *Inspector) loadUsers() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	users, err := m.src.ListUsers(ctx)
	return usersLoadedMsg{users: users, err: err}
}

func (m *Inspector) loadUpdates() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	updates, err := m.src.ListUpdates(ctx)
	return updatesLoadedMsg{updates: updates, err: err}
}

// View 实现 tea.Model
func (m *Inspector) View() string {
	if m.state == stateMenu {
		return m.menu.View()
	}

	var b strings.Builder
	switch m.state {
	case stateUsers:
		b.WriteString(titleStyle.Render("用户") + "\n\n")
	case stateUpdates:
		b.WriteString(titleStyle.Render("周进度") + "\n\n")
	}

	switch {
	case m.loading:
		b.WriteString("加载中...\n")
	case m.err != nil:
		b.WriteString(errStyle.Render("加载失败: "+m.err.Error()) + "\n")
	case m.state == stateUsers:
		b.WriteString(RenderUsers(m.users))
	case m.state == stateUpdates:
		b.WriteString(RenderUpdates(m.updates))
	}

	b.WriteString("\n" + hintStyle.Render("esc 返回 · ctrl+c 退出"))
	return b.String()
}

// RenderUsers 用户表格，portalctl users 也复用
func RenderUsers(users []model.User) string {
	if len(users) == 0 {
		return "（暂无用户）\n"
	}
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-38s %-16s %-8s %s", "ID", "USERNAME", "ROLE", "CREATED")) + "\n")
	for _, u := range users {
		fmt.Fprintf(&b, "%-38s %-16s %-8s %s\n",
			u.UserID, u.Username, u.Role, u.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

// RenderUpdates 周进度表格，内容过长时截断
func RenderUpdates(updates []model.WeeklyUpdate) string {
	if len(updates) == 0 {
		return "（暂无提交）\n"
	}
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-16s %-4s %-17s %s", "USERNAME", "WEEK", "LAST MODIFIED", "CONTENT")) + "\n")
	for _, u := range updates {
		username := u.UserID
		if u.User != nil {
			username = u.User.Username
		}
		fmt.Fprintf(&b, "%-16s %-4d %-17s %s\n",
			username, u.Week, u.LastModifiedAt.Format("2006-01-02 15:04"), truncate(u.Content, 60))
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
