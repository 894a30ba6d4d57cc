package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 389, cfg.DSPort)
	assert.Equal(t, 10, cfg.MaxThreads)
	assert.Equal(t, 5*time.Minute, cfg.MaxIdleTime)
	assert.Equal(t, 30*time.Second, cfg.DialTimeout)
	assert.Equal(t, "simple", cfg.AuthMethod)
	assert.Equal(t, "/etc/krb5.conf", cfg.KerberosConfigPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestValidateRequiresDSHost(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.BaseDN = "dc=example,dc=com"

	assert.Error(t, cfg.Validate())

	cfg.DSHost = "ldap.example.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresBaseDN(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.DSHost = "ldap.example.com"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveMaxThreads(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.DSHost = "ldap.example.com"
	cfg.BaseDN = "dc=example,dc=com"
	cfg.MaxThreads = 0

	assert.Error(t, cfg.Validate())
}

func TestValidateKerberosRequiresRealmAndKeytab(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.DSHost = "ldap.example.com"
	cfg.BaseDN = "dc=example,dc=com"
	cfg.AuthMethod = "kerberos"

	assert.Error(t, cfg.Validate())

	cfg.KerberosRealm = "EXAMPLE.COM"
	assert.Error(t, cfg.Validate())

	cfg.KerberosKeytabPath = "/etc/krb5.keytab"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownAuthMethod(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.DSHost = "ldap.example.com"
	cfg.BaseDN = "dc=example,dc=com"
	cfg.AuthMethod = "oauth"

	assert.Error(t, cfg.Validate())
}

func TestConnectionConfigCarriesKerberosFields(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cfg.DSHost = "ldap.example.com"
	cfg.BaseDN = "dc=example,dc=com"
	cfg.AuthMethod = "kerberos"
	cfg.KerberosRealm = "EXAMPLE.COM"
	cfg.KerberosKeytabPath = "/etc/krb5.keytab"
	require.NoError(t, cfg.Validate())

	cc := cfg.ConnectionConfig()
	assert.Equal(t, "ldap.example.com", cc.Host)
	assert.Equal(t, "EXAMPLE.COM", cc.KerberosRealm)
	assert.Equal(t, "/etc/krb5.keytab", cc.KerberosKeytab)
}
