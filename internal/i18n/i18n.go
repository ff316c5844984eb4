// Package i18n holds translations of user-visible status messages.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"go.aimuz.me/loudbuzz/trigger"
)

// Supported lists the languages with a catalog, English first.
var Supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

var matcher = language.NewMatcher(Supported)

func init() {
	zh := map[string]string{
		trigger.MsgUnsupported:   "您的设备不支持振动 API。",
		trigger.MsgRequesting:    "正在请求麦克风权限...",
		trigger.MsgListening:     "已获得麦克风权限，正在监听...",
		trigger.MsgAcquireFailed: "错误：%s。请允许访问麦克风。",
		trigger.MsgStopped:       "已停止。",
	}
	for key, msg := range zh {
		if err := message.SetString(language.SimplifiedChinese, key, msg); err != nil {
			panic(err)
		}
	}
}

// Match returns the best supported language for a BCP 47 tag such as "zh-CN".
// Unknown or malformed tags fall back to English.
func Match(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// Printer returns a message printer for lang.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Match(lang))
}
