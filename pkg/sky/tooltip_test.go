package sky

import (
	"strings"
	"testing"
)

func TestNewTooltip(t *testing.T) {
	long := strings.Repeat("星", 60)

	tests := []struct {
		name string
		star Star
		want Tooltip
	}{
		{
			name: "blog",
			star: Star{Level: "亮星", Size: 13, Blog: &Blog{Name: "Alpha", URL: "https://a.example", Description: long}},
			want: Tooltip{Title: "Alpha", Level: "亮星", Size: 13, URL: "https://a.example", RSS: true, Description: strings.Repeat("星", 50) + "..."},
		},
		{
			name: "short description",
			star: Star{Level: "中星", Size: 9, Blog: &Blog{Name: "Beta", Description: "hello"}},
			want: Tooltip{Title: "Beta", Level: "中星", Size: 9, RSS: true, Description: "hello"},
		},
		{
			name: "placeholder",
			star: Star{Level: "微星", Size: 4, Avatar: Avatar{Kind: AvatarText, UserName: "Eva"}},
			want: Tooltip{Title: "Eva", Level: "微星", Size: 4},
		},
		{
			name: "anonymous",
			star: Star{ID: 7, Level: "小星", Size: 6},
			want: Tooltip{Title: "#7", Level: "小星", Size: 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewTooltip(tt.star); got != tt.want {
				t.Errorf("NewTooltip() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"longer than ten", 10, "longer tha..."},
		{"你好世界", 2, "你好..."},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPositionTooltip(t *testing.T) {
	tests := []struct {
		name   string
		anchor Rect
		tip    Size
		screen Size
		wantX  float64
		wantY  float64
	}{
		{"above", Rect{500, 400, 20, 20}, Size{200, 100}, Size{1000, 800}, 500, 290},
		{"clamped right", Rect{950, 400, 20, 20}, Size{200, 100}, Size{1000, 800}, 790, 290},
		{"clamped left", Rect{2, 400, 20, 20}, Size{200, 100}, Size{1000, 800}, 10, 290},
		{"below", Rect{100, 50, 20, 20}, Size{200, 100}, Size{1000, 800}, 100, 80},
		{"right side", Rect{5, 30, 20, 20}, Size{200, 150}, Size{1000, 200}, 35, 30},
		{"left side", Rect{300, 30, 20, 20}, Size{200, 150}, Size{400, 200}, 90, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := PositionTooltip(tt.anchor, tt.tip, tt.screen)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("PositionTooltip() = (%v,%v), want (%v,%v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}
