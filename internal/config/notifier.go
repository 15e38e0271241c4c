package config

type Notifier struct {
	TelegramToken  string `env:"NOTIFIER_TG_TOKEN" json:"-"`
	TelegramChatID int64  `env:"NOTIFIER_TG_CHAT_ID"`

	MailjetAPIKey    string `env:"NOTIFIER_MJ_API_KEY" json:"-"`
	MailjetAPISecret string `env:"NOTIFIER_MJ_API_SECRET" json:"-"`
	EmailFrom        string `env:"NOTIFIER_EMAIL_FROM"`
	EmailTo          string `env:"NOTIFIER_EMAIL_TO"`
}

func (n Notifier) TelegramEnabled() bool {
	return n.TelegramToken != "" && n.TelegramChatID != 0
}

func (n Notifier) EmailEnabled() bool {
	return n.MailjetAPIKey != "" && n.MailjetAPISecret != "" && n.EmailFrom != "" && n.EmailTo != ""
}
