package config

type TelegramConfig struct {
	BotToken     string `yaml:"bot_token"`
	BotUsername  string `yaml:"bot_username"`
	AdminChatID  int64  `yaml:"admin_chat_id"`
	WebAppURL    string `yaml:"web_app_url"`
	LongPolling  bool   `yaml:"long_polling"`
	NotifyUsers  bool   `yaml:"notify_users"`
	NotifyAdmins bool   `yaml:"notify_admins"`
}

func loadTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		BotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotUsername:  getEnv("TELEGRAM_BOT_USERNAME", "swapcash_bot"),
		AdminChatID:  getEnvAsInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
		WebAppURL:    getEnv("TELEGRAM_WEB_APP_URL", ""),
		LongPolling:  getEnvAsBool("TELEGRAM_LONG_POLLING", true),
		NotifyUsers:  getEnvAsBool("TELEGRAM_NOTIFY_USERS", true),
		NotifyAdmins: getEnvAsBool("TELEGRAM_NOTIFY_ADMINS", true),
	}
}
