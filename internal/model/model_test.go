package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, s := range []string{"student", "admin"} {
		r, err := ParseRole(s)
		if err != nil || r.String() != s {
			t.Errorf("ParseRole(%q) = %q, %v", s, r, err)
		}
	}
	for _, s := range []string{"", "Admin", "leader"} {
		if _, err := ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q) 期望返回错误", s)
		}
	}
	if !RoleAdmin.IsAdmin() || RoleStudent.IsAdmin() {
		t.Error("IsAdmin 结果错误")
	}
}

func TestValidWeek(t *testing.T) {
	for w := -1; w <= 12; w++ {
		want := w >= 1 && w <= 10
		if got := ValidWeek(w); got != want {
			t.Errorf("ValidWeek(%d) = %v，期望 %v", w, got, want)
		}
	}
}

func TestScopeKey(t *testing.T) {
	isGroup, other, ok := ParseScopeKey(GroupScopeKey)
	if !ok || !isGroup || other != "" {
		t.Errorf("group 解析错误: %v %q %v", isGroup, other, ok)
	}

	key := PrivateScopeKey("u-2")
	if key != "private:u-2" {
		t.Errorf("期望 private:u-2，实际 %s", key)
	}
	isGroup, other, ok = ParseScopeKey(key)
	if !ok || isGroup || other != "u-2" {
		t.Errorf("private 解析错误: %v %q %v", isGroup, other, ok)
	}

	for _, bad := range []string{"", "private:", "dm:u-2"} {
		if _, _, ok := ParseScopeKey(bad); ok {
			t.Errorf("ParseScopeKey(%q) 期望失败", bad)
		}
	}
}

func TestPrivateMessageInvolves(t *testing.T) {
	m := &PrivateMessage{SenderID: "a", ReceiverID: "b"}
	if !m.Involves("a") || !m.Involves("b") || m.Involves("c") {
		t.Error("Involves 结果错误")
	}
}
