package http

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"

	"github.com/gofiber/fiber/v3"
)

// createListener 在启动 Serve 之前绑定端口，TLS 配置错误同样在此暴露
func createListener(addr string, config fiber.ListenConfig) (net.Listener, error) {
	network := config.ListenerNetwork
	if network == "" {
		network = fiber.NetworkTCP4
	}

	if config.CertFile == "" || config.CertKeyFile == "" {
		return net.Listen(network, addr)
	}

	tlsConfig, err := buildTLSConfig(config)
	if err != nil {
		return nil, err
	}
	return tls.Listen(network, addr, tlsConfig)
}

func buildTLSConfig(config fiber.ListenConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(config.CertFile, config.CertKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if config.TLSMinVersion > 0 {
		tlsConfig.MinVersion = config.TLSMinVersion
	}

	// mTLS
	if config.CertClientFile != "" {
		pem, err := os.ReadFile(config.CertClientFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read client CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificate found in %s", config.CertClientFile)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConfig, nil
}
