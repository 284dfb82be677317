package bootstrap

// AppConfig holds the LittleNest-specific configuration loaded by WAFFLE.
type AppConfig struct {
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	SessionKey    string
	SessionName   string
	SessionDomain string

	// Mail backend: "console" logs instead of sending; "sendgrid" delivers.
	MailBackend    string
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string
	MailSubjectTag string

	SiteName string
	BaseURL  string
}
