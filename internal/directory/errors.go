package directory

import (
	"errors"

	"github.com/go-ldap/ldap/v3"
)

// ErrNoSuchObject is returned by DirectoryServer.Delete (and by the
// embedded test directory's Modify) when the target entry does not exist.
// The backend translates it into false for DELETE (§7); GET and PUT see a
// missing entry as a nil result from SearchSingleEntry instead.
var ErrNoSuchObject = errors.New("directory: no such object")

// defunctCodes is the fixed set of LDAP result codes §4.4 designates as
// fatal for a connection. A connection that fails with one of these codes
// is released to the pool as defunct instead of returned healthy.
var defunctCodes = map[uint16]struct{}{
	ldap.LDAPResultOperationsError:    {},
	ldap.LDAPResultProtocolError:      {},
	ldap.LDAPResultBusy:               {},
	ldap.LDAPResultUnavailable:        {},
	ldap.LDAPResultUnwillingToPerform: {},
	ldap.LDAPResultOther:              {},
	ldap.LDAPResultServerDown:         {},
	ldap.LDAPResultLocalError:         {},
	ldap.LDAPResultEncodingError:      {},
	ldap.LDAPResultDecodingError:      {},
	ldap.LDAPResultNoMemory:           {},
	ldap.LDAPResultConnectError:       {},
}

// IsDefunctResultCode reports whether code is in the fixed defunct-code set
// of §4.4. The pool's release decision uses exactly these codes; no wider
// error categorization exists in this package.
func IsDefunctResultCode(code uint16) bool {
	_, ok := defunctCodes[code]
	return ok
}

// resultCodeOf extracts the LDAP result code from an error returned by the
// go-ldap client, or 0 if err does not wrap an *ldap.Error.
func resultCodeOf(err error) (uint16, bool) {
	if err == nil {
		return 0, false
	}
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return ldapErr.ResultCode, true
	}
	return 0, false
}

// classifyConnectionFailure reports whether a borrowed-connection failure
// should mark the connection defunct, per §4.4's "on any borrowed-
// connection failure, the result code is compared against a fixed set of
// defunct codes" rule. It only classifies; the caller (withConnection)
// returns the original error unwrapped.
func classifyConnectionFailure(err error) (defunct bool) {
	code, ok := resultCodeOf(err)
	if !ok {
		// A non-protocol failure (dial error, timeout, context
		// cancellation) means the connection itself is unusable.
		return true
	}
	return IsDefunctResultCode(code)
}

// ResultCode extracts the LDAP result code from err, for callers (such as
// the backend) that need to build a BackendError carrying the code.
func ResultCode(err error) (uint16, bool) {
	return resultCodeOf(err)
}

// IsNoSuchObject reports whether err (as returned by the go-ldap client)
// corresponds to LDAPResultNoSuchObject.
func IsNoSuchObject(err error) bool {
	code, ok := resultCodeOf(err)
	return ok && code == ldap.LDAPResultNoSuchObject
}

// IsEntryAlreadyExists reports whether err corresponds to
// LDAPResultEntryAlreadyExists.
func IsEntryAlreadyExists(err error) bool {
	code, ok := resultCodeOf(err)
	return ok && code == ldap.LDAPResultEntryAlreadyExists
}
