package ddlkit

import (
	"strings"

	"github.com/juju/errors"
)

// ReferenceAction is the ON DELETE / ON UPDATE behaviour of a foreign key.
// Input is matched case-insensitively; the canonical form is upper case.
type ReferenceAction string

const (
	Restrict ReferenceAction = "RESTRICT"
	Cascade  ReferenceAction = "CASCADE"
	SetNull  ReferenceAction = "SET NULL"
	NoAction ReferenceAction = "NO ACTION"
)

var referenceActions = []ReferenceAction{Restrict, Cascade, SetNull, NoAction}

// ParseReferenceAction canonicalizes action, failing with a NotValid error for
// anything outside RESTRICT, CASCADE, SET NULL and NO ACTION.
func ParseReferenceAction(action string) (ReferenceAction, error) {
	canonical := ReferenceAction(strings.ToUpper(strings.TrimSpace(action)))
	for _, allowed := range referenceActions {
		if canonical == allowed {
			return allowed, nil
		}
	}
	return "", errors.NotValidf("reference action %q", action)
}
