package postgres

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		query  url.Values
		expect string
	}{
		{
			name:   "defaults",
			cfg:    Config{Host: "db", Port: 5432, User: "pos", Password: "pw", DBName: "posibel"},
			query:  url.Values{"sslmode": {"disable"}},
			expect: "db:5432",
		},
		{
			name:   "schema and ssl",
			cfg:    Config{Host: "::1", Port: 6432, User: "pos", Password: "p@ss", DBName: "posibel", Schema: "tenant", SSLMode: "require"},
			query:  url.Values{"sslmode": {"require"}, "search_path": {"tenant"}},
			expect: "[::1]:6432",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(tc.cfg.DSN())
			require.NoError(t, err)
			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, tc.expect, u.Host)
			assert.Equal(t, "/"+tc.cfg.DBName, u.Path)
			assert.Equal(t, tc.query, u.Query())

			pw, _ := u.User.Password()
			assert.Equal(t, tc.cfg.Password, pw)
		})
	}
}

func TestRedactDSN(t *testing.T) {
	dsn := Config{Host: "db", Port: 5432, User: "pos", Password: "s3cret", DBName: "posibel"}.DSN()
	got := redactDSN(dsn)
	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "pos:")

	assert.Equal(t, "<unparseable dsn>", redactDSN("postgres://%zz"))
}
