// Package config implements the A2 server configuration: a struct-tagged
// set of options populated with creasty/defaults before being overridden by
// flags, and validated before the connection pool is built.
package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"

	"github.com/gandhrekunal/scim/internal/directory"
)

// Config holds every option §6 names, plus the A7 Kerberos/A3 HTTP knobs
// the expanded specification adds.
type Config struct {
	DSHost         string        `default:""`
	DSPort         int           `default:"389"`
	DSBindDN       string        `default:""`
	DSBindPassword string        `default:""`
	MaxThreads     int           `default:"10"`
	BaseDN         string        `default:""`
	MaxIdleTime    time.Duration `default:"5m"`
	DialTimeout    time.Duration `default:"30s"`
	UseTLS         bool          `default:"false"`

	AuthMethod         string `default:"simple"`
	KerberosRealm      string `default:""`
	KerberosKeytabPath string `default:""`
	KerberosConfigPath string `default:"/etc/krb5.conf"`

	HTTPAddr string `default:":8080"`
}

// New builds a Config with creasty/defaults applied, mirroring the
// teacher's DefaultConfig/defaults.Set split between a plain struct and a
// pure construction function.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// Validate rejects a non-positive MaxThreads, an empty DSHost, an empty
// BaseDN, and an AuthMethod of "kerberos" without a realm, mirroring the
// teacher's validateConfig pure-function style.
func (c *Config) Validate() error {
	if c.DSHost == "" {
		return fmt.Errorf("config: dsHost must not be empty")
	}
	if c.MaxThreads <= 0 {
		return fmt.Errorf("config: maxThreads must be positive, got %d", c.MaxThreads)
	}
	if c.BaseDN == "" {
		return fmt.Errorf("config: baseDN must not be empty")
	}
	switch c.AuthMethod {
	case "simple":
	case "kerberos":
		if c.KerberosRealm == "" {
			return fmt.Errorf("config: kerberos authentication requires a realm")
		}
		if c.KerberosKeytabPath == "" {
			return fmt.Errorf("config: kerberos authentication requires a keytab path")
		}
	default:
		return fmt.Errorf("config: unrecognized authMethod %q", c.AuthMethod)
	}
	return nil
}

// ConnectionConfig builds the directory package's connection configuration
// from the validated server configuration.
func (c *Config) ConnectionConfig() *directory.ConnectionConfig {
	cc := &directory.ConnectionConfig{
		Host:           c.DSHost,
		Port:           c.DSPort,
		BindDN:         c.DSBindDN,
		BindPassword:   c.DSBindPassword,
		MaxConnections: c.MaxThreads,
		MaxIdleTime:    c.MaxIdleTime,
		Timeout:        c.DialTimeout,
		UseTLS:         c.UseTLS,
	}
	if c.AuthMethod == "kerberos" {
		cc.AuthMethod = directory.AuthMethodKerberos
		cc.KerberosRealm = c.KerberosRealm
		cc.KerberosKeytab = c.KerberosKeytabPath
		cc.KerberosConfig = c.KerberosConfigPath
	}
	return cc
}
