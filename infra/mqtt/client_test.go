package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")
	caFile = filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	require.NoError(t, os.WriteFile(caFile, certPEM, 0o600))
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", Username: "u", AuthMethod: "certificate"})
	require.NoError(t, err)
	assert.Empty(t, opts.Username)
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{Broker: "tcp://localhost:1883", TopicPrefix: "site/"}
	cfg.SetDefaults()
	assert.Equal(t, "site", cfg.TopicPrefix)
	assert.True(t, strings.HasPrefix(cfg.ClientID, "powermanager-"))
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 64, cfg.InboxSize)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{Broker: "b", UseTLS: true}.Validate())
	assert.Error(t, Config{Broker: "b", QoS: map[string]byte{"bounds": 3}}.Validate())
	assert.Equal(t, byte(1), cfg.qos("bounds"))
}

func TestLWTConfigured(t *testing.T) {
	mc := newMockClient()
	mc.install(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1})
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	cli.Disconnect()
	assert.Empty(t, mc.messages())
}

func TestPublishRetries(t *testing.T) {
	mc := newMockClient()
	mc.publishErrs = []error{errors.New("net fail"), nil}
	mc.install(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	require.NoError(t, cli.Publish(context.Background(), "t", 1, false, []byte("x")))
	assert.Len(t, mc.messages(), 2)
}

func TestPublishGivesUp(t *testing.T) {
	mc := newMockClient()
	mc.publishErrs = []error{errors.New("net fail"), errors.New("net fail")}
	mc.install(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	err = cli.Publish(context.Background(), "t", 1, false, []byte("x"))
	assert.ErrorContains(t, err, "net fail")
}

func TestResubscribeOnConnect(t *testing.T) {
	mc := newMockClient()
	mc.install(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.NoError(t, cli.Subscribe("a/b", 1, nil))

	mc.opts.OnConnect(mc)
	assert.Equal(t, []string{"a/b", "a/b"}, mc.subscribed)

	require.NoError(t, cli.Unsubscribe("a/b"))
	mc.opts.OnConnect(mc)
	assert.Len(t, mc.subscribed, 2)
}
