package config

// EnvPrefix is passed to envconfig; individual tags carry the full names.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	RazorpayEnvTest = "test"
	RazorpayEnvLive = "live"
)

const (
	EnvDBDSN  = "MITHRA_DB_DSN"
	EnvDBHost = "MITHRA_DB_HOST"
	EnvDBUser = "MITHRA_DB_USER"
	EnvDBName = "MITHRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
