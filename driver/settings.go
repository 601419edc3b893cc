package driver

import (
	"github.com/Eventuria/eventstore/common"
	"github.com/Eventuria/eventstore/wire"
)

// Config keys, following the teacher's confXxx/defaultXxx convention
// (e.g. common/logger.go's confLoggerLevel).
const (
	confDefaultUsername   = "eventstore.driver.credentials.username"
	confDefaultPassword   = "eventstore.driver.credentials.password"
	confConnectionName    = "eventstore.driver.connection.name"
	confRetryMax          = "eventstore.driver.retry.max"
	confRetryUnbounded    = "eventstore.driver.retry.unbounded"
)

const (
	defaultRetryMax = 3
)

// Settings bundles the knobs spec.md §6 says the driver consumes:
// default credentials, the client's self-reported connection name, and
// the retry policy applied to NotHandled responses.
type Settings struct {
	DefaultCredentials *wire.Credentials
	ConnectionName     string
	OperationRetry     Retry
}

// SettingsFromConfig derives Settings from a common.Config, applying
// the defaults spec.md §4.4 describes (no default credentials unless
// configured; connection name falls back to "ES-<uuid>" at handshake
// time when left empty here).
func SettingsFromConfig(conf common.Config) Settings {
	username := conf.OptionalString(confDefaultUsername, "")
	password := conf.OptionalString(confDefaultPassword, "")

	var creds *wire.Credentials
	if username != "" {
		creds = wire.NewCredentials(username, password)
	}

	// Clamp retry.max to at least one attempt. AtMost(n) with n <= 1
	// aborts an exchange on its first NotHandled, so zero, negative and
	// one all behave the same way.
	retry := Retry(AtMost(common.Max(1, conf.OptionalInt(confRetryMax, defaultRetryMax))))
	if conf.OptionalBool(confRetryUnbounded, false) {
		retry = KeepRetrying()
	}

	return Settings{
		DefaultCredentials: creds,
		ConnectionName:     conf.OptionalString(confConnectionName, ""),
		OperationRetry:     retry,
	}
}
