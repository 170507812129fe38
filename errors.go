package ddlkit

import (
	"github.com/juju/errors"
)

// ErrConfiguration marks errors caused by rendering a descriptor that is missing a
// required piece of configuration. Callers can complete the descriptor and render again.
const ErrConfiguration = errors.ConstError("ddlkit: configuration error")

// Configuration failures returned by Render.
var (
	ErrNameEmpty        = configError("name is empty")
	ErrTypeEmpty        = configError("type is empty")
	ErrValuesEmpty      = configError("values are empty")
	ErrLengthConflict   = configError("length and precision are both set")
	ErrKeyTypeNotSet    = configError("key type was not set")
	ErrReferencesNotSet = configError("REFERENCES clause was not set")
	ErrNoKeyConfigured  = configError("no key was configured")
	ErrTableNameEmpty   = configError("table name is empty")
	ErrNoColumns        = configError("table has no columns")
	ErrNoAlterSpecs     = configError("no alterations were declared")
	ErrDialectorNotSet  = configError("dialector not set")
)

func configError(msg string) error {
	return errors.WithType(errors.New(msg), ErrConfiguration)
}

// unsupportedError reports a length setting that the column's type family cannot render.
func unsupportedError(setting string, f Family) error {
	return configError(setting + " not supported for " + f.String() + " columns")
}

// IsConfiguration reports whether err was caused by incomplete descriptor configuration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
