package db

import (
	"net/url"
	"testing"

	"github.com/fittrack/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		sslmode string
	}{
		{
			name:    "plain",
			cfg:     config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", DBName: "fitness"},
			sslmode: "disable",
		},
		{
			name:    "tls",
			cfg:     config.DatabaseConfig{Host: "db.example.com", Port: 6543, User: "fit", Password: "p@ss word", DBName: "fitness", UseSSL: true},
			sslmode: "require",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(DSN(tc.cfg))
			require.NoError(t, err)

			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, tc.cfg.Host, u.Hostname())
			assert.Equal(t, "/"+tc.cfg.DBName, u.Path)
			assert.Equal(t, tc.cfg.User, u.User.Username())
			password, ok := u.User.Password()
			assert.True(t, ok)
			assert.Equal(t, tc.cfg.Password, password)
			assert.Equal(t, tc.sslmode, u.Query().Get("sslmode"))
		})
	}
}
