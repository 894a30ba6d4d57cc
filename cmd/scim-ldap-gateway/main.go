// Command scim-ldap-gateway serves the SCIM-to-LDAP gateway described by
// this module: flags are parsed into a config.Config, the descriptor
// catalogue and resource mappers are registered, the LDAP connection pool
// and HTTP front end are constructed, and the process serves until SIGINT
// or SIGTERM, at which point the pool is closed exactly once.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gandhrekunal/scim/internal/backend"
	"github.com/gandhrekunal/scim/internal/config"
	"github.com/gandhrekunal/scim/internal/directory"
	"github.com/gandhrekunal/scim/internal/httpapi"
	"github.com/gandhrekunal/scim/internal/logging"
	"github.com/gandhrekunal/scim/internal/mapper"
	"github.com/gandhrekunal/scim/internal/registry"
	"github.com/gandhrekunal/scim/internal/scim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	bindFlags(cfg)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	catalogue := scim.NewCatalogue()
	catalogue.MustRegister(mapper.UserResourceDescriptor())
	catalogue.MustRegister(mapper.GroupResourceDescriptor())

	facade := registry.NewFacade()
	for _, m := range []mapper.ResourceMapper{
		mapper.NewUserMapper(),
		mapper.NewADExtensionMapper(),
		mapper.NewGroupMapper(),
	} {
		if err := facade.Register(m); err != nil {
			return fmt.Errorf("scim-ldap-gateway: registering mapper: %w", err)
		}
	}

	server := directory.NewExternalServer(cfg.ConnectionConfig(), logging.New(logger))
	defer closeOnce(server, &logger)()

	b := backend.NewBackend(catalogue, facade, server, cfg.BaseDN, logging.New(logger))
	handler := httpapi.NewHandler(b, catalogue, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Mux(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("scim-ldap-gateway listening")
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("scim-ldap-gateway: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http server shutdown failed")
		}
	}

	return nil
}

// closeOnce returns a func suitable for defer that closes the server's LDAP
// pool exactly once, logging any error rather than failing the shutdown.
func closeOnce(server *directory.ExternalServer, logger *zerolog.Logger) func() {
	return func() {
		if err := server.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close ldap connection pool")
		}
	}
}

func bindFlags(cfg *config.Config) {
	flag.StringVar(&cfg.DSHost, "ds-host", cfg.DSHost, "directory server hostname")
	flag.IntVar(&cfg.DSPort, "ds-port", cfg.DSPort, "directory server port")
	flag.StringVar(&cfg.DSBindDN, "ds-bind-dn", cfg.DSBindDN, "directory server bind DN")
	flag.StringVar(&cfg.DSBindPassword, "ds-bind-password", cfg.DSBindPassword, "directory server bind password")
	flag.IntVar(&cfg.MaxThreads, "max-threads", cfg.MaxThreads, "maximum concurrent LDAP connections")
	flag.StringVar(&cfg.BaseDN, "base-dn", cfg.BaseDN, "base DN under which new resources are created")
	flag.DurationVar(&cfg.MaxIdleTime, "max-idle-time", cfg.MaxIdleTime, "maximum idle time before an LDAP connection is recycled")
	flag.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "LDAP dial timeout")
	flag.BoolVar(&cfg.UseTLS, "use-tls", cfg.UseTLS, "use TLS when connecting to the directory server")
	flag.StringVar(&cfg.AuthMethod, "auth-method", cfg.AuthMethod, `bind method: "simple" or "kerberos"`)
	flag.StringVar(&cfg.KerberosRealm, "kerberos-realm", cfg.KerberosRealm, "kerberos realm")
	flag.StringVar(&cfg.KerberosKeytabPath, "kerberos-keytab", cfg.KerberosKeytabPath, "path to kerberos keytab")
	flag.StringVar(&cfg.KerberosConfigPath, "kerberos-config", cfg.KerberosConfigPath, "path to krb5.conf")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address to serve the SCIM HTTP API on")
}
