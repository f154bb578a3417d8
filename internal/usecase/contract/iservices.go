package usecasecontract

// IAppLogger defines the logging interface used across usecases and
// infrastructure.
type IAppLogger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// IConfigProvider exposes application configuration values.
type IConfigProvider interface {
	GetSearchResultLimit() int64
	GetPremiumListLimit() int64
	GetAccessTokenExpiryMinutes() int
	GetRefreshTokenExpiryHours() int
}

// IValidator validates user-supplied values before they reach the store.
type IValidator interface {
	ValidateUsername(username string) error
	ValidateEmail(email string) error
	ValidatePhone(phone string) error
}
