package directory

import (
	"context"
	"fmt"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// performKerberosBind authenticates a connection via GSSAPI/Kerberos,
// adapted from the teacher's performKerberosAuth/createGSSAPIClient to the
// gateway's narrower configuration surface (§4.14): a keytab-based client
// bound against the configured realm, with the service principal derived
// from the configured directory host.
func performKerberosBind(_ context.Context, conn *goldap.Conn, cfg *ConnectionConfig) error {
	if cfg.KerberosConfig == "" {
		return fmt.Errorf("directory: kerberos authentication requires a krb5.conf path")
	}
	if cfg.BindDN == "" || cfg.KerberosKeytab == "" {
		return fmt.Errorf("directory: kerberos authentication requires a principal (BindDN) and keytab path")
	}

	gssapiClient, err := gssapi.NewClientWithKeytab(
		cfg.BindDN, cfg.KerberosRealm, cfg.KerberosKeytab, cfg.KerberosConfig,
		krb5client.DisablePAFXFAST(true),
	)
	if err != nil {
		return fmt.Errorf("directory: failed to create GSSAPI client: %w", err)
	}
	defer func() {
		_ = gssapiClient.DeleteSecContext()
	}()

	spn := fmt.Sprintf("ldap/%s", cfg.Host)
	if err := conn.GSSAPIBind(gssapiClient, spn, ""); err != nil {
		return fmt.Errorf("directory: GSSAPI bind failed: %w", err)
	}
	return nil
}
