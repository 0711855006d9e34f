package confkit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowfeed/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("CONF_DIR", "rendered")

	tests := []struct {
		name string
		base string
		file string
		want string
	}{
		{"absolute wins", "/etc/snowfeed", "/opt/override/snowball.yaml", "/opt/override/snowball.yaml"},
		{"relative joins base", "/etc/snowfeed", "snowball.yaml", "/etc/snowfeed/snowball.yaml"},
		{"env var expanded", "/etc/snowfeed", "${CONF_DIR}/snowball.yaml", "/etc/snowfeed/rendered/snowball.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confkit.ResolvePath(tt.base, tt.file))
		})
	}
}

func TestSectionHydrate(t *testing.T) {
	type payload struct{ Token string }

	t.Run("no file stays empty", func(t *testing.T) {
		section := &confkit.Section[payload]{}
		err := section.Hydrate("/etc/snowfeed", func(string) (*payload, error) {
			t.Fatal("loader must not run without a file")
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, section.Value)
	})

	t.Run("loads and keeps resolved path", func(t *testing.T) {
		section := &confkit.Section[payload]{File: "snowball.yaml"}
		err := section.Hydrate("/etc/snowfeed", func(path string) (*payload, error) {
			assert.Equal(t, "/etc/snowfeed/snowball.yaml", path)
			return &payload{Token: "abc"}, nil
		})
		require.NoError(t, err)
		require.NotNil(t, section.Value)
		assert.Equal(t, "abc", section.Value.Token)
		assert.Equal(t, "/etc/snowfeed/snowball.yaml", section.File)
	})

	t.Run("loader failure propagates", func(t *testing.T) {
		section := &confkit.Section[payload]{File: "snowball.yaml"}
		boom := errors.New("yaml: unmarshal")
		err := section.Hydrate("/etc/snowfeed", func(string) (*payload, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, boom)
		assert.Nil(t, section.Value)
		assert.Equal(t, "snowball.yaml", section.File, "a failed hydrate leaves the section untouched")
	})
}
