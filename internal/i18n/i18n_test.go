package i18n

import (
	"testing"

	"golang.org/x/text/language"

	"go.aimuz.me/loudbuzz/trigger"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		lang string
		want language.Tag
	}{
		{"en", language.English},
		{"en-GB", language.English},
		{"zh-CN", language.SimplifiedChinese},
		{"zh-Hans", language.SimplifiedChinese},
		{"", language.English},
		{"not a tag!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := Match(tt.lang); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	tests := []struct {
		lang string
		key  string
		args []any
		want string
	}{
		{"en", trigger.MsgStopped, nil, "Stopped."},
		{"zh-CN", trigger.MsgStopped, nil, "已停止。"},
		{"en", trigger.MsgAcquireFailed, []any{"denied"}, "Error: denied. Please allow microphone access."},
		{"zh-CN", trigger.MsgAcquireFailed, []any{"denied"}, "错误：denied。请允许访问麦克风。"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			if got := Printer(tt.lang).Sprintf(tt.key, tt.args...); got != tt.want {
				t.Errorf("Sprintf = %q, want %q", got, tt.want)
			}
		})
	}
}
