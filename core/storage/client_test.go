package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"Plain", Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "facility-matcher"}},
		{"HTTP Scheme", Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTPS Scheme", Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true, Region: "us-east-1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestNewTransport(t *testing.T) {
	tr := newTransport(5 * time.Second)
	assert.Equal(t, 5*time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 5*time.Second, tr.ResponseHeaderTimeout)
}

func TestCleanKey(t *testing.T) {
	key, err := cleanKey("/uploads//mfl.csv")
	assert.NoError(t, err)
	assert.Equal(t, "uploads/mfl.csv", key)

	_, err = cleanKey("")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
	_, err = cleanKey("uploads/../x")
	assert.ErrorIs(t, err, ErrInvalidObjectKey)
}
