package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "server command line keeps only the owned flag",
			args:    []string{"-a", ":8080", "-m", "offline-test", "-env", "prod.env", "-s", "local"},
			allowed: []string{"-env", "--env"},
			want:    []string{"-env", "prod.env"},
		},
		{
			name:    "equals form",
			args:    []string{"--store=s3", "--env=prod.env", "--mode=live"},
			allowed: []string{"-env", "--env"},
			want:    []string{"--env=prod.env"},
		},
		{
			name:    "value starting with a dash is not consumed",
			args:    []string{"-c", "-m", "live"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-c", "one.json", "-a", ":1", "--config=two.json"},
			allowed: []string{"-c", "--config"},
			want:    []string{"-c", "one.json", "--config=two.json"},
		},
		{
			name:    "nothing owned",
			args:    []string{"-a", ":8080", "positional"},
			allowed: []string{"-c", "--config"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"truthchain"}, args...)
}

func TestStringFlag_MixedFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"any alias", []string{"-m", "live", "--ledger", "db.sqlite"}, "db.sqlite"},
		{"short alias among bool-like flags", []string{"-grpc", "-l", "db.sqlite", "-a", ":8080"}, "db.sqlite"},
		{"last alias wins", []string{"-l", "a.sqlite", "-env", "x.env", "--ledger=b.sqlite"}, "b.sqlite"},
		{"missing value", []string{"-a", ":8080", "-l"}, ""},
		{"absent", []string{"-a", ":8080"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)
			assert.Equal(t, tt.want, stringFlag("ledger", "l", "ledger"))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	setArgs(t, "-env", "prod.env", "-config", "/etc/truthchain.json", "-m", "live")
	assert.Equal(t, "/etc/truthchain.json", JsonConfigFlags())
	assert.Equal(t, "prod.env", EnvFileFlag())
}

func TestEnvFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"separate value", []string{"-a", ":8080", "-env", "/etc/truthchain.env"}, "/etc/truthchain.env"},
		{"equals form", []string{"--env=local.env", "-c", "conf.json"}, "local.env"},
		{"next token is a flag", []string{"-env", "-c", "conf.json"}, ""},
		{"config only", []string{"-c", "conf.json"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)
			assert.Equal(t, tt.want, EnvFileFlag())
		})
	}
}
