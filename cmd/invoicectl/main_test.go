package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "tradeinvoice/internal/jwt_token"
	"tradeinvoice/internal/platform/config"
	"tradeinvoice/pkg/contenthash"
	id "tradeinvoice/pkg/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sampleDoc = `
issuer: issuer-I
recipient: recipient-R
amount: 1000
currency: usd
due_date: 1900000000
description: steel coils
`

func TestHashDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	out, err := execute(t, "", "hash", "--file", path)
	require.NoError(t, err)

	want := contenthash.Sum(contenthash.Document{
		Issuer:      "issuer-I",
		Recipient:   "recipient-R",
		Amount:      1000,
		Currency:    "USD",
		DueDate:     1900000000,
		Description: "steel coils",
	})
	assert.Equal(t, "0x"+hex.EncodeToString(want[:])+"\n", out)
}

func TestHashFromStdinMatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o600))

	fromFile, err := execute(t, "", "hash", "-f", path)
	require.NoError(t, err)
	fromStdin, err := execute(t, sampleDoc, "hash")
	require.NoError(t, err)
	assert.Equal(t, fromFile, fromStdin)
}

func TestHashRaw(t *testing.T) {
	out, err := execute(t, "", "hash", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470\n", out)
}

func TestHashRejectsMalformedYAML(t *testing.T) {
	_, err := execute(t, "amount: [", "hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse document")
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	out, err := execute(t, "", "token", "--sub", "oracle-O", "--ttl", "5m")
	require.NoError(t, err)

	cfg := config.Default()
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	claims, err := tokens.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, id.Identity("oracle-O"), claims.Identity())
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenRequiresSubject(t *testing.T) {
	_, err := execute(t, "", "token")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "invoicectl dev (none)\n", out)
}
