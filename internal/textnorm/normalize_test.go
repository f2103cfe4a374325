package textnorm

import "testing"

func TestFold(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{" 主 机 ", "主机"},
		{"ＡＢＣ１２３", "ABC123"},
		{"型号\t规格", "型号规格"},
		{"主机　前侧", "主机前侧"},
	}
	for _, c := range cases {
		if got := Fold(c.in); got != c.want {
			t.Errorf("Fold(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFoldLoose(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"序号", "序号"},
		{"检验 项目：", "检验项目"},
		{"标准条款（GB）", "标准条款GB"},
	}
	for _, c := range cases {
		if got := FoldLoose(c.in); got != c.want {
			t.Errorf("FoldLoose(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("主机 ", "主　机") {
		t.Fatal("width/space variants should compare equal")
	}
	if Equal("主机", "辅机") {
		t.Fatal("different values should not compare equal")
	}
}
